// services/room_service.go
package services

import (
	"context"
	"fmt"

	"github.com/wfunc/partyserver/models"
	"github.com/wfunc/partyserver/persistence"
	"github.com/wfunc/partyserver/room"
	"github.com/wfunc/partyserver/state"
)

// Registry is the part of room.Manager the service reads.
type Registry interface {
	Codes() []string
	GetRoom(code string) (*room.Room, bool)
}

// RoomSummary is a one-line view of an active room.
type RoomSummary struct {
	Code    string
	Variant state.Variant
	Phase   state.Phase
	Players int
}

// Stats combines live counters with the archive.
type Stats struct {
	ActiveRooms int
	Online      int
	Archive     *models.GameStats
}

type RoomService struct {
	rooms   Registry
	archive persistence.Archive
	online  func() int
}

// NewRoomService builds the service. online may be nil.
func NewRoomService(rooms Registry, archive persistence.Archive, online func() int) *RoomService {
	if online == nil {
		online = func() int { return 0 }
	}
	return &RoomService{rooms: rooms, archive: archive, online: online}
}

// ListRooms summarizes every active room. Rooms closed while listing are skipped.
func (s *RoomService) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	codes := s.rooms.Codes()
	out := make([]RoomSummary, 0, len(codes))
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap, err := s.GetRoom(code)
		if err != nil {
			continue
		}
		out = append(out, RoomSummary{
			Code:    snap.Code,
			Variant: snap.Variant,
			Phase:   snap.Phase,
			Players: len(snap.Players),
		})
	}
	return out, nil
}

// GetRoom 获取房间快照
func (s *RoomService) GetRoom(code string) (room.Snapshot, error) {
	r, ok := s.rooms.GetRoom(code)
	if !ok {
		return room.Snapshot{}, state.ErrRoomNotFound
	}
	var snap room.Snapshot
	err := r.Do(func(r *room.Room) error {
		snap = r.Snapshot()
		return nil
	})
	return snap, err
}

// GetStats 获取统计信息
func (s *RoomService) GetStats(ctx context.Context, variant string) (*Stats, error) {
	if variant != "" && !state.Variant(variant).Valid() {
		return nil, state.InvalidParameters(fmt.Sprintf("Unknown game variant %q", variant))
	}
	archived, err := s.archive.GameStats(ctx, variant)
	if err != nil {
		return nil, fmt.Errorf("reading archive stats: %w", err)
	}
	return &Stats{
		ActiveRooms: len(s.rooms.Codes()),
		Online:      s.online(),
		Archive:     archived,
	}, nil
}

// GetGame 读取一局已归档的对局
func (s *RoomService) GetGame(ctx context.Context, id uint) (*models.GameRecord, error) {
	record, err := s.archive.LoadGameRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", id, err)
	}
	return record, nil
}

// RecentGames returns the newest archived games.
func (s *RoomService) RecentGames(ctx context.Context, limit int) ([]*models.GameRecord, error) {
	return s.archive.RecentGames(ctx, limit)
}
