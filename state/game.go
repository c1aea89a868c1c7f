package state

import "fmt"

// Variant selects which rule set governs a room.
type Variant string

const (
	VariantImpostor Variant = "impostor"
	VariantDuel     Variant = "duel"
)

func (v Variant) Valid() bool {
	return v == VariantImpostor || v == VariantDuel
}

// DefaultImpostorMinPlayers is the smallest roster that can start an impostor game.
const DefaultImpostorMinPlayers = 4

// Options tune newly created games.
type Options struct {
	ImpostorMinPlayers int
	Pool               []Celebrity
}

// NewGame builds the state machine for variant.
func NewGame(variant Variant, opts Options) (Game, error) {
	switch variant {
	case VariantImpostor:
		minPlayers := opts.ImpostorMinPlayers
		if minPlayers <= 0 {
			minPlayers = DefaultImpostorMinPlayers
		}
		return NewImpostorGame(minPlayers), nil
	case VariantDuel:
		pool := opts.Pool
		if len(pool) == 0 {
			pool = DefaultPool()
		}
		return NewDuelGame(pool), nil
	default:
		return nil, InvalidParameters(fmt.Sprintf("Unknown game variant %q", variant))
	}
}

// Outcome describes how a game finished.
type Outcome struct {
	Winner    string            `json:"winner"`
	WinnerIDs []string          `json:"winnerIds"`
	Reason    string            `json:"reason"`
	Reveal    map[string]string `json:"reveal,omitempty"`
}
