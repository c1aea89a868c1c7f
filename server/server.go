package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wfunc/partyserver/broadcast"
	"github.com/wfunc/partyserver/config"
	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/monitor"
	"github.com/wfunc/partyserver/network"
	"github.com/wfunc/partyserver/persistence"
	"github.com/wfunc/partyserver/room"
	partyrpc "github.com/wfunc/partyserver/rpc"
	"github.com/wfunc/partyserver/services"
	"github.com/wfunc/partyserver/session"
	"github.com/wfunc/partyserver/state"
	"github.com/wfunc/partyserver/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	index          *session.Index
	broadcaster    broadcast.Broadcaster
	roomService    *services.RoomService
	monitor        *monitor.Monitor
	timers         *timer.TimerManager
	rpcServer      *partyrpc.Server
	healthServer   *partyrpc.HealthServer
	httpServer     *http.Server
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

// NewGameServer wires the game components. Nothing listens until Start.
func NewGameServer(cfg *config.Config, archive persistence.Archive) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		index:          session.NewIndex(),
		monitor:        monitor.NewMonitor(cfg.Monitor.Namespace),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.index, s.sessionManager)

	env := room.Env{
		Broadcaster: s.broadcaster,
		Membership:  s.index,
	}
	if archive != nil {
		env.Recorder = archive
	} else {
		archive = persistence.NewMemoryArchive()
	}
	s.roomManager = room.NewRoomManager(env, room.Options{
		CodeLength: cfg.Game.CodeLength,
		Game:       state.Options{ImpostorMinPlayers: cfg.Game.ImpostorMinPlayers},
	})
	s.roomService = services.NewRoomService(s.roomManager, archive, s.sessionManager.Count)

	return s
}

// Handler is the HTTP surface: websocket upgrade, health and room lookup.
func (s *GameServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods(http.MethodGet)
	return r
}

// Start opens the admin listeners and blocks serving HTTP. A listen failure
// is returned to the caller.
func (s *GameServer) Start() error {
	srv := s.cfg.Server

	if srv.RPCAddress != "" {
		rpcServer, err := partyrpc.NewServer(srv.RPCAddress, s.roomService)
		if err != nil {
			return fmt.Errorf("starting rpc server: %w", err)
		}
		s.rpcServer = rpcServer
		go rpcServer.Start()
	}

	if srv.HealthAddress != "" {
		healthServer, err := partyrpc.NewHealthServer(srv.HealthAddress)
		if err != nil {
			return fmt.Errorf("starting health server: %w", err)
		}
		s.healthServer = healthServer
		go healthServer.Start()
	}

	if s.cfg.Monitor.Address != "" {
		s.monitor.StartServer(s.cfg.Monitor.Address)
	}

	s.timers = timer.NewTimerManager()
	s.timers.Every(s.cfg.Monitor.SampleInterval, s.sampleMetrics)

	s.httpServer = &http.Server{Addr: srv.HTTPAddress, Handler: s.Handler()}
	if s.healthServer != nil {
		s.healthServer.SetServing(true)
	}

	logger.Log.Infof("Game server listening on %s", srv.HTTPAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting work, drops every connection and closes all rooms.
func (s *GameServer) Shutdown(ctx context.Context) {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)

		if s.healthServer != nil {
			s.healthServer.SetServing(false)
		}
		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(ctx); err != nil {
				logger.Log.Warnf("HTTP shutdown: %v", err)
			}
		}
		s.sessionManager.CloseAll()
		if s.rpcServer != nil {
			s.rpcServer.Stop()
		}
		if s.healthServer != nil {
			s.healthServer.Stop()
		}
		if s.timers != nil {
			s.timers.Stop()
		}
		s.monitor.Stop()
		s.roomManager.CloseAll()
	})
}

func (s *GameServer) sampleMetrics() {
	s.monitor.SetActiveRooms(s.roomManager.Count())
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn, s.cfg.Server.WriteTimeout)
	wsConn.SetHeartbeat(s.cfg.Server.Heartbeat)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.disconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.roomManager.Count(),
		"online": s.sessionManager.Count(),
		"uptime": s.monitor.Uptime().Round(time.Second).String(),
	})
}

func (s *GameServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])
	snap, err := s.roomService.GetRoom(code)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, state.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse(err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnf("Writing HTTP response: %v", err)
	}
}
