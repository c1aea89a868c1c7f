// Command client is a line-oriented websocket client for manual play.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/network"
)

const usage = `commands:
  create <impostor|duel> <name>   join <code> <name>   leave
  start   task <name>   sabotage <system>   meeting   vote <playerId>
  choose <celebrityId>   ask <category>   guess <celebrityId>   quit`

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

// parse turns one input line into a message id and payload.
func parse(line string) (uint16, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("empty command")
	}
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	rest := strings.Join(fields[min(2, len(fields)):], " ")

	switch fields[0] {
	case "create":
		return network.MsgTypeCreateRoom, network.CreateRoomRequest{Variant: arg(1), PlayerName: rest}, nil
	case "join":
		return network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: arg(1), PlayerName: rest}, nil
	case "leave":
		return network.MsgTypeLeaveRoom, struct{}{}, nil
	case "start":
		return network.MsgTypeStartGame, network.ActionRequest{}, nil
	case "task":
		return network.MsgTypeCompleteTask, network.ActionRequest{Task: arg(1)}, nil
	case "sabotage":
		return network.MsgTypeSabotage, network.ActionRequest{System: arg(1)}, nil
	case "meeting":
		return network.MsgTypeCallMeeting, network.ActionRequest{}, nil
	case "vote":
		return network.MsgTypeVote, network.ActionRequest{TargetID: arg(1)}, nil
	case "choose":
		return network.MsgTypeChooseCelebrity, network.ActionRequest{CelebrityID: arg(1)}, nil
	case "ask":
		return network.MsgTypeAskQuestion, network.ActionRequest{Category: arg(1)}, nil
	case "guess":
		return network.MsgTypeMakeGuess, network.ActionRequest{CelebrityID: arg(1)}, nil
	default:
		return 0, nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	heartbeat := flag.Duration("heartbeat", 20*time.Second, "heartbeat interval")
	flag.Parse()

	if err := logger.Init("info", true); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	logger.Log.Infof("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				logger.Log.Infof("Read error: %v", err)
				return
			}
			packet, err := network.Decode(message)
			if err != nil {
				logger.Log.Warnf("Received invalid packet of size %d", len(message))
				continue
			}
			logger.Log.Infof("<- %s: %s", network.MsgName(packet.MsgID), packet.Data)
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	ticker := time.NewTicker(*heartbeat)
	defer ticker.Stop()

	fmt.Println(usage)
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := send(c, network.MsgTypeHeartbeat, nil); err != nil {
				logger.Log.Errorf("Write error: %v", err)
				return
			}
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "quit" {
				closeConn(c, done)
				return
			}
			msgID, payload, err := parse(line)
			if err != nil {
				fmt.Println(err)
				fmt.Println(usage)
				continue
			}
			if err := send(c, msgID, payload); err != nil {
				logger.Log.Errorf("Write error: %v", err)
				return
			}
			logger.Log.Infof("-> %s", network.MsgName(msgID))
		case <-interrupt:
			logger.Log.Info("Interrupt received, closing connection.")
			closeConn(c, done)
			return
		}
	}
}

func closeConn(c *websocket.Conn, done <-chan struct{}) {
	err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		logger.Log.Warnf("Write close error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}
