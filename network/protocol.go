package network

// Inbound message ids.
const (
	MsgTypeHeartbeat = 1

	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeLeaveRoom  = 103

	MsgTypeStartGame    = 201
	MsgTypeCompleteTask = 202
	MsgTypeSabotage     = 203
	MsgTypeCallMeeting  = 204
	MsgTypeVote         = 205

	MsgTypeChooseCelebrity = 211
	MsgTypeAskQuestion     = 212
	MsgTypeMakeGuess       = 213
)

// Outbound message ids.
const (
	MsgTypeRoomCreated       = 301
	MsgTypeRoomUpdate        = 302
	MsgTypePlayerJoined      = 303
	MsgTypePlayerLeft        = 304
	MsgTypeGameStarted       = 305
	MsgTypeTaskCompleted     = 306
	MsgTypeSabotageTriggered = 307
	MsgTypeMeetingCalled     = 308
	MsgTypeVoteCast          = 309
	MsgTypePlayerEjected     = 310
	MsgTypeGameEnded         = 311
	MsgTypeOpponentChosen    = 312
	MsgTypeQuestionAnswered  = 313
	MsgTypeCardsEliminated   = 314
	MsgTypeTurnChanged       = 315
	MsgTypeGuessResult       = 316

	MsgTypeServerError = 399
)

var msgNames = map[uint16]string{
	MsgTypeHeartbeat:         "heartbeat",
	MsgTypeCreateRoom:        "createRoom",
	MsgTypeJoinRoom:          "joinRoom",
	MsgTypeLeaveRoom:         "leaveRoom",
	MsgTypeStartGame:         "startGame",
	MsgTypeCompleteTask:      "completeTask",
	MsgTypeSabotage:          "sabotage",
	MsgTypeCallMeeting:       "callMeeting",
	MsgTypeVote:              "vote",
	MsgTypeChooseCelebrity:   "chooseCelebrity",
	MsgTypeAskQuestion:       "askQuestion",
	MsgTypeMakeGuess:         "makeGuess",
	MsgTypeRoomCreated:       "roomCreated",
	MsgTypeRoomUpdate:        "roomUpdate",
	MsgTypePlayerJoined:      "playerJoined",
	MsgTypePlayerLeft:        "playerLeft",
	MsgTypeGameStarted:       "gameStarted",
	MsgTypeTaskCompleted:     "taskCompleted",
	MsgTypeSabotageTriggered: "sabotageTriggered",
	MsgTypeMeetingCalled:     "meetingCalled",
	MsgTypeVoteCast:          "voteCast",
	MsgTypePlayerEjected:     "playerEjected",
	MsgTypeGameEnded:         "gameEnded",
	MsgTypeOpponentChosen:    "opponentChosen",
	MsgTypeQuestionAnswered:  "questionAnswered",
	MsgTypeCardsEliminated:   "cardsEliminated",
	MsgTypeTurnChanged:       "turnChanged",
	MsgTypeGuessResult:       "guessResult",
	MsgTypeServerError:       "serverError",
}

// MsgName returns the protocol event name for a message id.
func MsgName(msgID uint16) string {
	if name, ok := msgNames[msgID]; ok {
		return name
	}
	return "unknown"
}

// CreateRoomRequest is the createRoom payload.
type CreateRoomRequest struct {
	Variant    string `json:"variant"`
	PlayerName string `json:"playerName"`
}

// JoinRoomRequest is the joinRoom payload.
type JoinRoomRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

// RoomCreatedResponse answers createRoom.
type RoomCreatedResponse struct {
	Code string `json:"code"`
}

// ErrorResponse is the serverError payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionRequest is the union of every game action payload. Fields that do not
// apply to a message id are ignored.
type ActionRequest struct {
	Code        string `json:"code"`
	Task        string `json:"task,omitempty"`
	System      string `json:"system,omitempty"`
	TargetID    string `json:"targetId,omitempty"`
	CelebrityID string `json:"celebrityId,omitempty"`
	Category    string `json:"category,omitempty"`
}
