package room

import (
	"context"

	"github.com/wfunc/partyserver/models"
)

// Broadcaster defines the interface for broadcasting messages to a room.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(code string, msgID uint16, data []byte) error
	BroadcastExcept(code, exceptID string, msgID uint16, data []byte) error
	SendTo(connID string, msgID uint16, data []byte) error
}

// Membership is the part of the session index a room keeps in sync with its roster.
type Membership interface {
	Bind(connID, code string) string
	UnbindFrom(connID, code string) bool
}

// Recorder archives finished games.
type Recorder interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
}
