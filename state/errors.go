package state

import "errors"

// Error kinds reported back to the originating connection.
const (
	KindRoomNotFound        = "RoomNotFound"
	KindRoomFull            = "RoomFull"
	KindPlayerNotInRoom     = "PlayerNotInRoom"
	KindInsufficientPlayers = "InsufficientPlayers"
	KindInvalidParameters   = "InvalidParameters"
	KindInvalidPhase        = "InvalidPhase"
	KindNotYourTurn         = "NotYourTurn"
	KindUnsupportedAction   = "UnsupportedAction"
	KindServerError         = "ServerError"
)

// Error is a game-level failure with a stable kind and a human readable
// message. Two Errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrRoomNotFound        = &Error{Kind: KindRoomNotFound, Message: "Room not found"}
	ErrRoomFull            = &Error{Kind: KindRoomFull, Message: "Room is full"}
	ErrPlayerNotInRoom     = &Error{Kind: KindPlayerNotInRoom, Message: "Player is not in this room"}
	ErrInsufficientPlayers = &Error{Kind: KindInsufficientPlayers, Message: "Not enough players to start"}
	ErrInvalidParameters   = &Error{Kind: KindInvalidParameters, Message: "Invalid parameters"}
	ErrInvalidPhase        = &Error{Kind: KindInvalidPhase, Message: "Action not allowed in the current phase"}
	ErrNotYourTurn         = &Error{Kind: KindNotYourTurn, Message: "It is not your turn"}
	ErrUnsupportedAction   = &Error{Kind: KindUnsupportedAction, Message: "Action not supported by this game"}
	ErrServer              = &Error{Kind: KindServerError, Message: "Internal server error"}
)

// InvalidParameters builds an InvalidParameters error with a specific message.
func InvalidParameters(msg string) error {
	return &Error{Kind: KindInvalidParameters, Message: msg}
}

// KindOf returns the kind of a game error, or KindServerError for anything else.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}
