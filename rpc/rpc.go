// rpc/rpc.go
package rpc

import (
	"context"
	"encoding/gob"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/models"
	"github.com/wfunc/partyserver/room"
	"github.com/wfunc/partyserver/services"
	"github.com/wfunc/partyserver/state"
)

const callTimeout = 5 * time.Second

func init() {
	// Snapshot.Game holds one of these.
	gob.Register(state.ImpostorView{})
	gob.Register(state.DuelView{})
}

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	rpc      *rpc.Server
}

// NewServer listens on addr and registers the RoomService.
func NewServer(addr string, svc *services.RoomService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("RoomService", NewRoomService(svc)); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{listener: listener, rpc: srv}, nil
}

// Addr is the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start begins listening for RPC requests. It returns when the listener closes.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.listener.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// RoomService is the struct that exposes RPC methods.
// Methods follow the net/rpc signature: exported args, pointer reply, error result.
type RoomService struct {
	svc *services.RoomService
}

func NewRoomService(svc *services.RoomService) *RoomService {
	return &RoomService{svc: svc}
}

// ListRoomsArgs filters by variant when Variant is set.
type ListRoomsArgs struct {
	Variant string
}

type ListRoomsReply struct {
	Rooms []services.RoomSummary
}

func (rs *RoomService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	rooms, err := rs.svc.ListRooms(ctx)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		if args.Variant == "" || string(r.Variant) == args.Variant {
			reply.Rooms = append(reply.Rooms, r)
		}
	}
	return nil
}

type GetRoomArgs struct {
	Code string
}

type GetRoomReply struct {
	Room room.Snapshot
}

func (rs *RoomService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	snap, err := rs.svc.GetRoom(args.Code)
	if err != nil {
		return err
	}
	reply.Room = snap
	return nil
}

type GetGameArgs struct {
	ID uint
}

type GetGameReply struct {
	Game *models.GameRecord
}

// GetGame returns one archived game by id.
func (rs *RoomService) GetGame(args *GetGameArgs, reply *GetGameReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	game, err := rs.svc.GetGame(ctx, args.ID)
	if err != nil {
		return err
	}
	reply.Game = game
	return nil
}

type GetStatsArgs struct {
	Variant string
	Recent  int
}

type GetStatsReply struct {
	Stats  services.Stats
	Recent []*models.GameRecord
}

func (rs *RoomService) GetStats(args *GetStatsArgs, reply *GetStatsReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	stats, err := rs.svc.GetStats(ctx, args.Variant)
	if err != nil {
		return err
	}
	reply.Stats = *stats

	if args.Recent > 0 {
		recent, err := rs.svc.RecentGames(ctx, args.Recent)
		if err != nil {
			return err
		}
		reply.Recent = recent
	}
	return nil
}
