// state/interfaces.go
package state

// RoomContext is the view of a room that a game state machine mutates and
// notifies through. It breaks the import cycle between room and state.
type RoomContext interface {
	GetID() string
	GetRoster() *Roster
	GetRand() Rand
	Broadcast(msgID uint16, payload any) error
	SendTo(playerID string, msgID uint16, payload any) error
	SendExcept(playerID string, msgID uint16, payload any) error
	EndGame(outcome Outcome)
}

// Game is one variant's phase automaton. All methods run on the owning
// room's goroutine.
type Game interface {
	Variant() Variant
	Phase() Phase
	// Capacity is the roster cap; zero means unbounded.
	Capacity() int
	OnJoin(room RoomContext, p *Player)
	OnLeave(room RoomContext, p *Player)
	HandleAction(room RoomContext, playerID string, action Action) error
	// View is the variant's public state for room snapshots.
	View() any
}

// Action is a decoded client request aimed at the room's game.
type Action interface {
	ActionName() string
}
