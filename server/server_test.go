package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/partyserver/config"
	"github.com/wfunc/partyserver/network"
	"github.com/wfunc/partyserver/persistence"
	"github.com/wfunc/partyserver/room"
	"github.com/wfunc/partyserver/session"
	"github.com/wfunc/partyserver/state"
)

// captureConn records every packet sent to it.
type captureConn struct {
	mu      sync.Mutex
	packets []network.Packet
	sendErr error
}

func (c *captureConn) Send(msgID uint16, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.packets = append(c.packets, network.Packet{MsgID: msgID, Data: append([]byte(nil), data...)})
	return nil
}

func (c *captureConn) Close() error                         { return nil }
func (c *captureConn) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (c *captureConn) SetHeartbeat(time.Duration)           {}
func (c *captureConn) ReadPacket() (*network.Packet, error) { return nil, io.EOF }

func (c *captureConn) all(msgID uint16) []network.Packet {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []network.Packet
	for _, p := range c.packets {
		if p.MsgID == msgID {
			out = append(out, p)
		}
	}
	return out
}

func (c *captureConn) lastError(t *testing.T) network.ErrorResponse {
	t.Helper()
	errs := c.all(network.MsgTypeServerError)
	require.NotEmpty(t, errs, "expected a serverError")
	var resp network.ErrorResponse
	require.NoError(t, json.Unmarshal(errs[len(errs)-1].Data, &resp))
	return resp
}

type client struct {
	sess *session.Session
	conn *captureConn
}

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Heartbeat: 30 * time.Second, WriteTimeout: time.Second},
		Monitor: config.MonitorConfig{Namespace: "test", SampleInterval: time.Second},
		Game:    config.GameConfig{CodeLength: 5, ImpostorMinPlayers: 4},
	}
}

func newTestServer(t *testing.T) *GameServer {
	t.Helper()
	s := NewGameServer(testConfig(), persistence.NewMemoryArchive())
	t.Cleanup(s.roomManager.CloseAll)
	return s
}

func (s *GameServer) connect() *client {
	conn := &captureConn{}
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	return &client{sess: sess, conn: conn}
}

func (s *GameServer) send(t *testing.T, c *client, msgID uint16, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	s.handlePacket(c.sess, &network.Packet{MsgID: msgID, Data: data})
}

func (s *GameServer) createRoom(t *testing.T, c *client, variant, name string) string {
	t.Helper()
	s.send(t, c, network.MsgTypeCreateRoom, network.CreateRoomRequest{Variant: variant, PlayerName: name})
	created := c.conn.all(network.MsgTypeRoomCreated)
	require.NotEmpty(t, created)
	var resp network.RoomCreatedResponse
	require.NoError(t, json.Unmarshal(created[len(created)-1].Data, &resp))
	return resp.Code
}

func snapshot(t *testing.T, s *GameServer, code string) (room.Snapshot, []state.Player) {
	t.Helper()
	r, ok := s.roomManager.GetRoom(code)
	require.True(t, ok, "room %s should exist", code)
	var snap room.Snapshot
	var players []state.Player
	require.NoError(t, r.Do(func(r *room.Room) error {
		snap = r.Snapshot()
		players = r.GetRoster().View(true)
		return nil
	}))
	return snap, players
}

func TestEndToEnd_FourPlayersStartImpostorGame(t *testing.T) {
	s := newTestServer(t)
	host := s.connect()
	code := s.createRoom(t, host, "impostor", "Host")
	assert.Regexp(t, "^[A-Z]{5}$", code)

	players := []*client{host}
	for i := 0; i < 3; i++ {
		c := s.connect()
		s.send(t, c, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: code, PlayerName: "player"})
		assert.Empty(t, c.conn.all(network.MsgTypeServerError))
		players = append(players, c)
	}

	s.send(t, host, network.MsgTypeStartGame, network.ActionRequest{Code: code})

	snap, roster := snapshot(t, s, code)
	assert.Equal(t, state.PhaseInProgress, snap.Phase)
	require.Len(t, roster, 4)
	var crew, impostors int
	for _, p := range roster {
		switch p.Role {
		case state.RoleCrewmate:
			crew++
		case state.RoleImpostor:
			impostors++
		}
	}
	assert.Equal(t, 3, crew)
	assert.Equal(t, 1, impostors)

	for _, p := range players {
		assert.Len(t, p.conn.all(network.MsgTypeGameStarted), 1)
	}
}

func TestCreateRoom_RequiresPlayerName(t *testing.T) {
	s := newTestServer(t)
	c := s.connect()

	for i := 0; i < 50; i++ {
		s.send(t, c, network.MsgTypeCreateRoom, network.CreateRoomRequest{Variant: "impostor"})
	}

	assert.Zero(t, s.roomManager.Count())
	assert.Empty(t, c.conn.all(network.MsgTypeRoomCreated))
	assert.Len(t, c.conn.all(network.MsgTypeServerError), 50)
	assert.Equal(t, state.KindInvalidParameters, c.conn.lastError(t).Code)
	_, bound := s.index.RoomOf(c.sess.GetID())
	assert.False(t, bound)

	s.disconnect(c.sess)
	assert.Zero(t, s.roomManager.Count())
}

func TestCreateRoom_FailedReplyRemovesRoom(t *testing.T) {
	s := newTestServer(t)
	c := s.connect()
	c.conn.sendErr = errors.New("connection lost")

	s.send(t, c, network.MsgTypeCreateRoom, network.CreateRoomRequest{Variant: "duel", PlayerName: "Ann"})

	assert.Zero(t, s.roomManager.Count())
	_, bound := s.index.RoomOf(c.sess.GetID())
	assert.False(t, bound)
}

func TestStartGame_ErrorsGoToRequesterOnly(t *testing.T) {
	s := newTestServer(t)
	a, b := s.connect(), s.connect()
	code := s.createRoom(t, a, "impostor", "Ann")
	s.send(t, b, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: code, PlayerName: "Bob"})

	// no code given: the bound room is used
	s.send(t, a, network.MsgTypeStartGame, nil)

	assert.Equal(t, state.KindInsufficientPlayers, a.conn.lastError(t).Code)
	assert.Empty(t, b.conn.all(network.MsgTypeServerError))
	snap, _ := snapshot(t, s, code)
	assert.Equal(t, state.PhaseLobby, snap.Phase)
}

func TestJoinRoom_Errors(t *testing.T) {
	s := newTestServer(t)
	c := s.connect()

	s.send(t, c, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: "ABCDE"})
	assert.Equal(t, state.KindInvalidParameters, c.conn.lastError(t).Code)

	s.send(t, c, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: "ABCDE", PlayerName: "Ann"})
	assert.Equal(t, state.KindRoomNotFound, c.conn.lastError(t).Code)

	s.handlePacket(c.sess, &network.Packet{MsgID: network.MsgTypeJoinRoom, Data: []byte("{not json")})
	assert.Equal(t, state.KindInvalidParameters, c.conn.lastError(t).Code)

	s.send(t, c, network.MsgTypeCreateRoom, network.CreateRoomRequest{Variant: "chess"})
	assert.Equal(t, state.KindInvalidParameters, c.conn.lastError(t).Code)
}

func TestJoinRoom_DuelIsCappedAtTwo(t *testing.T) {
	s := newTestServer(t)
	a, b, c := s.connect(), s.connect(), s.connect()
	code := s.createRoom(t, a, "duel", "Ann")

	s.send(t, b, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: strings.ToLower(code), PlayerName: "Bob"})
	s.send(t, c, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: code, PlayerName: "Cid"})

	assert.Equal(t, state.KindRoomFull, c.conn.lastError(t).Code)
	snap, _ := snapshot(t, s, code)
	assert.Len(t, snap.Players, 2)
	assert.Equal(t, state.PhaseSelecting, snap.Phase)
	_, bound := s.index.RoomOf(c.sess.GetID())
	assert.False(t, bound)
}

func TestJoinRoom_MovesBetweenRooms(t *testing.T) {
	s := newTestServer(t)
	a, b := s.connect(), s.connect()
	first := s.createRoom(t, a, "impostor", "Ann")
	s.send(t, b, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: first, PlayerName: "Bob"})
	second := s.createRoom(t, b, "duel", "Bob")

	code, _ := s.index.RoomOf(b.sess.GetID())
	assert.Equal(t, second, code)

	snap, _ := snapshot(t, s, first)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, a.sess.GetID(), snap.Players[0].ID)
	assert.NotEmpty(t, a.conn.all(network.MsgTypePlayerLeft))
}

func TestLeaveRoom(t *testing.T) {
	s := newTestServer(t)
	a, b := s.connect(), s.connect()
	code := s.createRoom(t, a, "impostor", "Ann")
	s.send(t, b, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: code, PlayerName: "Bob"})

	s.send(t, b, network.MsgTypeLeaveRoom, nil)
	snap, _ := snapshot(t, s, code)
	assert.Len(t, snap.Players, 1)

	s.send(t, b, network.MsgTypeLeaveRoom, nil)
	assert.Equal(t, state.KindPlayerNotInRoom, b.conn.lastError(t).Code)

	s.send(t, a, network.MsgTypeLeaveRoom, nil)
	_, exists := s.roomManager.GetRoom(code)
	assert.False(t, exists, "an emptied room is deleted")
}

func TestDisconnect_LastPlayerDeletesRoom(t *testing.T) {
	s := newTestServer(t)
	a, b := s.connect(), s.connect()
	code := s.createRoom(t, a, "duel", "Ann")
	s.send(t, b, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: code, PlayerName: "Bob"})

	s.disconnect(a.sess)
	snap, _ := snapshot(t, s, code)
	assert.Len(t, snap.Players, 1)
	assert.Equal(t, state.PhaseLobby, snap.Phase)

	s.disconnect(b.sess)
	_, exists := s.roomManager.GetRoom(code)
	assert.False(t, exists)
	_, bound := s.index.RoomOf(b.sess.GetID())
	assert.False(t, bound)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/"+code, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDisconnect_UnbindsEvenWithoutRoom(t *testing.T) {
	s := newTestServer(t)
	c := s.connect()
	s.index.Bind(c.sess.GetID(), "GHOST")

	s.disconnect(c.sess)

	_, bound := s.index.RoomOf(c.sess.GetID())
	assert.False(t, bound)
}

func TestGameAction_Errors(t *testing.T) {
	s := newTestServer(t)
	c := s.connect()

	s.send(t, c, network.MsgTypeVote, network.ActionRequest{TargetID: "x"})
	assert.Equal(t, state.KindPlayerNotInRoom, c.conn.lastError(t).Code)

	s.send(t, c, network.MsgTypeVote, network.ActionRequest{Code: "ZZZZZ", TargetID: "x"})
	assert.Equal(t, state.KindRoomNotFound, c.conn.lastError(t).Code)

	s.send(t, c, 999, nil)
	assert.Equal(t, state.KindUnsupportedAction, c.conn.lastError(t).Code)

	code := s.createRoom(t, c, "duel", "Ann")
	s.send(t, c, network.MsgTypeCallMeeting, network.ActionRequest{Code: code})
	assert.Equal(t, state.KindUnsupportedAction, c.conn.lastError(t).Code)
}

func TestGameAction_DuelRound(t *testing.T) {
	s := newTestServer(t)
	a, b := s.connect(), s.connect()
	code := s.createRoom(t, a, "duel", "Ann")
	s.send(t, b, network.MsgTypeJoinRoom, network.JoinRoomRequest{Code: code, PlayerName: "Bob"})

	pool := state.DefaultPool()
	s.send(t, a, network.MsgTypeChooseCelebrity, network.ActionRequest{CelebrityID: pool[0].ID})
	s.send(t, b, network.MsgTypeChooseCelebrity, network.ActionRequest{CelebrityID: pool[1].ID})
	require.Len(t, b.conn.all(network.MsgTypeOpponentChosen), 1)

	s.send(t, b, network.MsgTypeAskQuestion, network.ActionRequest{Category: pool[0].Category})
	assert.Equal(t, state.KindNotYourTurn, b.conn.lastError(t).Code)

	s.send(t, a, network.MsgTypeMakeGuess, network.ActionRequest{CelebrityID: pool[1].ID})
	for _, c := range []*client{a, b} {
		assert.Len(t, c.conn.all(network.MsgTypeGuessResult), 1)
		assert.Len(t, c.conn.all(network.MsgTypeGameEnded), 1)
	}
	snap, _ := snapshot(t, s, code)
	assert.Equal(t, state.PhaseEnded, snap.Phase)
}

func TestErrorResponse_HidesInternalErrors(t *testing.T) {
	resp := errorResponse(io.ErrUnexpectedEOF)
	assert.Equal(t, state.KindServerError, resp.Code)
	assert.Equal(t, state.ErrServer.Message, resp.Message)

	resp = errorResponse(state.ErrRoomFull)
	assert.Equal(t, network.ErrorResponse{Code: state.KindRoomFull, Message: "Room is full"}, resp)
}

func TestHTTP_HealthAndRoom(t *testing.T) {
	s := newTestServer(t)
	c := s.connect()
	code := s.createRoom(t, c, "impostor", "Ann")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rooms":1`)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/"+strings.ToLower(code), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snap room.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, code, snap.Code)
	require.Len(t, snap.Players, 1)
	assert.Empty(t, snap.Players[0].Role, "roles are never exposed")
}

func TestWebSocket_RoundTrip(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	body, err := json.Marshal(network.CreateRoomRequest{Variant: "impostor", PlayerName: "Ann"})
	require.NoError(t, err)
	packet, err := network.Encode(network.MsgTypeCreateRoom, body)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, packet))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	reply, err := network.Decode(data)
	require.NoError(t, err)
	assert.EqualValues(t, network.MsgTypeRoomCreated, reply.MsgID)

	assert.Eventually(t, func() bool { return s.roomManager.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.sessionManager.Count())

	conn.Close()
	assert.Eventually(t, func() bool {
		return s.roomManager.Count() == 0 && s.sessionManager.Count() == 0
	}, 5*time.Second, 20*time.Millisecond)
}
