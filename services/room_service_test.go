package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/partyserver/models"
	"github.com/wfunc/partyserver/persistence"
	"github.com/wfunc/partyserver/room"
	"github.com/wfunc/partyserver/session"
	"github.com/wfunc/partyserver/state"
)

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, uint16, []byte) error         { return nil }
func (nopBroadcaster) BroadcastExcept(string, string, uint16, []byte) error { return nil }
func (nopBroadcaster) SendTo(string, uint16, []byte) error                  { return nil }

func newService(t *testing.T) (*RoomService, *room.Manager, *persistence.MemoryArchive) {
	t.Helper()
	manager := room.NewRoomManager(room.Env{
		Broadcaster: nopBroadcaster{},
		Membership:  session.NewIndex(),
	}, room.Options{})
	t.Cleanup(manager.CloseAll)
	archive := persistence.NewMemoryArchive()
	return NewRoomService(manager, archive, func() int { return 7 }), manager, archive
}

func TestRoomService_ListAndGet(t *testing.T) {
	svc, manager, _ := newService(t)

	r, err := manager.CreateRoom(state.VariantDuel)
	require.NoError(t, err)
	require.NoError(t, r.Do(func(r *room.Room) error { return r.Join("p1", "Ann") }))
	_, err = manager.CreateRoom(state.VariantImpostor)
	require.NoError(t, err)

	rooms, err := svc.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	snap, err := svc.GetRoom(r.Code)
	require.NoError(t, err)
	assert.Equal(t, state.VariantDuel, snap.Variant)
	assert.Equal(t, state.PhaseLobby, snap.Phase)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Ann", snap.Players[0].Name)

	_, err = svc.GetRoom("NOPE")
	assert.ErrorIs(t, err, state.ErrRoomNotFound)
}

func TestRoomService_Stats(t *testing.T) {
	svc, manager, archive := newService(t)
	ctx := context.Background()

	_, err := manager.CreateRoom(state.VariantImpostor)
	require.NoError(t, err)
	require.NoError(t, archive.SaveGameRecord(ctx, &models.GameRecord{Variant: "duel", Reason: state.ReasonCorrectGuess}))

	stats, err := svc.GetStats(ctx, "duel")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveRooms)
	assert.Equal(t, 7, stats.Online)
	assert.EqualValues(t, 1, stats.Archive.TotalGames)

	_, err = svc.GetStats(ctx, "chess")
	assert.ErrorIs(t, err, state.ErrInvalidParameters)

	recent, err := svc.RecentGames(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	game, err := svc.GetGame(ctx, recent[0].ID)
	require.NoError(t, err)
	assert.Equal(t, state.ReasonCorrectGuess, game.Reason)

	_, err = svc.GetGame(ctx, 42)
	assert.ErrorIs(t, err, persistence.ErrRecordNotFound)
}
