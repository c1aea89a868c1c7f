// broadcast/broadcast.go
package broadcast

import (
	"errors"
	"fmt"

	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/network"
	"github.com/wfunc/partyserver/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(code string, msgID uint16, data []byte) error
	BroadcastExcept(code, exceptID string, msgID uint16, data []byte) error
	SendTo(connID string, msgID uint16, data []byte) error
}

// RoomBroadcaster delivers to the connections the session index has bound
// to a room code.
type RoomBroadcaster struct {
	index          *session.Index
	sessionManager *session.Manager
}

func NewRoomBroadcaster(index *session.Index, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		index:          index,
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom sends to every member of the room, the sender included.
func (b *RoomBroadcaster) BroadcastToRoom(code string, msgID uint16, data []byte) error {
	return b.fanOut(code, "", msgID, data)
}

// BroadcastExcept sends to every member of the room except exceptID.
func (b *RoomBroadcaster) BroadcastExcept(code, exceptID string, msgID uint16, data []byte) error {
	return b.fanOut(code, exceptID, msgID, data)
}

func (b *RoomBroadcaster) SendTo(connID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(connID)
	if !exists {
		return fmt.Errorf("send %s to %s: %w", network.MsgName(msgID), connID, ErrSessionNotFound)
	}
	return s.Send(msgID, data)
}

// fanOut never stops at a failed recipient; failures are logged and joined.
func (b *RoomBroadcaster) fanOut(code, exceptID string, msgID uint16, data []byte) error {
	var errs []error
	for _, id := range b.index.Members(code) {
		if id == exceptID {
			continue
		}
		if err := b.SendTo(id, msgID, data); err != nil {
			logger.Log.Warnf("Broadcast %s to %s in room %s failed: %v", network.MsgName(msgID), id, code, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
