package state

import "github.com/wfunc/partyserver/resolver"

// Outbound payloads. Field names follow the client protocol.

type GameStartedPayload struct {
	Code    string      `json:"code"`
	Variant Variant     `json:"variant"`
	Players []Player    `json:"players,omitempty"`
	Pool    []Celebrity `json:"pool,omitempty"`
}

type TaskCompletedPayload struct {
	PlayerID string `json:"playerId"`
	Task     string `json:"task"`
}

type SabotagePayload struct {
	System string `json:"system"`
}

type MeetingCalledPayload struct {
	CallerID   string `json:"callerId"`
	CallerName string `json:"callerName"`
}

type VoteCastPayload struct {
	VoterID string `json:"voterId"`
	Votes   int    `json:"votes"`
	Needed  int    `json:"needed"`
}

type PlayerEjectedPayload struct {
	PlayerID    string            `json:"playerId"`
	Name        string            `json:"name"`
	Votes       int               `json:"votes"`
	WasImpostor bool              `json:"wasImpostor"`
	Ballots     []resolver.Ballot `json:"ballots"`
}

type OpponentChosenPayload struct {
	PlayerID string `json:"playerId"`
}

type QuestionAnsweredPayload struct {
	Category string `json:"category"`
	Answer   bool   `json:"answer"`
}

type CardsEliminatedPayload struct {
	Category      string   `json:"category"`
	CelebrityIDs  []string `json:"celebrityIds"`
	EliminatedIDs []string `json:"eliminatedIds"`
}

type TurnChangedPayload struct {
	PlayerID string `json:"playerId"`
}

type GuessResultPayload struct {
	PlayerID    string `json:"playerId"`
	CelebrityID string `json:"celebrityId"`
	Correct     bool   `json:"correct"`
}
