package state

import (
	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/network"
	"github.com/wfunc/partyserver/resolver"
)

const (
	duelCapacity = 2

	ReasonCorrectGuess = "correctGuess"
)

// DuelGame is the two-player deduction variant. Each player hides a
// celebrity from the shared pool; players alternate asking category
// questions and guessing the opponent's pick.
type DuelGame struct {
	machine     StateMachine
	pool        []Celebrity
	chosen      map[string]string // playerID -> celebrityID
	eliminated  []string
	currentTurn string
}

func NewDuelGame(pool []Celebrity) *DuelGame {
	g := &DuelGame{
		machine: NewBaseStateMachine(PhaseLobby),
		pool:    pool,
		chosen:  make(map[string]string),
	}
	g.machine.AddTransition(PhaseLobby, PhaseSelecting, nil)
	g.machine.AddTransition(PhaseSelecting, PhaseQuestioning, func() bool { return len(g.chosen) == duelCapacity })
	g.machine.AddTransition(PhaseQuestioning, PhaseEnded, nil)
	g.machine.AddTransition(PhaseSelecting, PhaseLobby, nil)
	g.machine.AddTransition(PhaseQuestioning, PhaseLobby, nil)
	g.machine.AddTransition(PhaseEnded, PhaseLobby, nil)
	return g
}

func (g *DuelGame) Variant() Variant { return VariantDuel }
func (g *DuelGame) Phase() Phase     { return g.machine.GetCurrentState() }
func (g *DuelGame) Capacity() int    { return duelCapacity }

func (g *DuelGame) Pool() []Celebrity { return g.pool }

// Chosen returns the hidden pick of playerID.
func (g *DuelGame) Chosen(playerID string) (string, bool) {
	id, ok := g.chosen[playerID]
	return id, ok
}

func (g *DuelGame) Eliminated() []string { return g.eliminated }
func (g *DuelGame) CurrentTurn() string  { return g.currentTurn }

// DuelView never reveals the hidden picks, only who has chosen.
type DuelView struct {
	Phase         Phase           `json:"phase"`
	Chosen        map[string]bool `json:"chosen"`
	EliminatedIDs []string        `json:"eliminatedIds"`
	CurrentTurn   string          `json:"currentTurn,omitempty"`
}

func (g *DuelGame) View() any {
	chosen := make(map[string]bool, len(g.chosen))
	for id := range g.chosen {
		chosen[id] = true
	}
	eliminated := make([]string, len(g.eliminated))
	copy(eliminated, g.eliminated)
	return DuelView{
		Phase:         g.Phase(),
		Chosen:        chosen,
		EliminatedIDs: eliminated,
		CurrentTurn:   g.currentTurn,
	}
}

func (g *DuelGame) OnJoin(room RoomContext, p *Player) {
	if room.GetRoster().Len() != duelCapacity || g.Phase() != PhaseLobby {
		return
	}
	if err := g.machine.ChangeState(PhaseSelecting); err != nil {
		return
	}
	room.Broadcast(network.MsgTypeGameStarted, GameStartedPayload{
		Code:    room.GetID(),
		Variant: VariantDuel,
		Players: room.GetRoster().View(false),
		Pool:    g.pool,
	})
}

// OnLeave puts the survivor back in the lobby so a new opponent can join.
func (g *DuelGame) OnLeave(room RoomContext, p *Player) {
	if g.Phase() == PhaseLobby {
		return
	}
	logger.Log.Infof("Player %s left duel in room %s, back to lobby", p.ID, room.GetID())
	g.reset()
	_ = g.machine.ChangeState(PhaseLobby)
}

func (g *DuelGame) HandleAction(room RoomContext, playerID string, action Action) error {
	switch a := action.(type) {
	case ChooseCelebrity:
		return g.choose(room, playerID, a.CelebrityID)
	case AskQuestion:
		return g.ask(room, playerID, a.Category)
	case MakeGuess:
		return g.guess(room, playerID, a.CelebrityID)
	default:
		return ErrUnsupportedAction
	}
}

func (g *DuelGame) choose(room RoomContext, playerID, celebrityID string) error {
	if g.Phase() != PhaseSelecting {
		return ErrInvalidPhase
	}
	if _, ok := findCelebrity(g.pool, celebrityID); !ok {
		return InvalidParameters("Unknown celebrity")
	}

	g.chosen[playerID] = celebrityID
	room.SendExcept(playerID, network.MsgTypeOpponentChosen, OpponentChosenPayload{PlayerID: playerID})

	if err := g.machine.ChangeState(PhaseQuestioning); err != nil {
		// waiting for the opponent
		return nil
	}
	g.currentTurn = room.GetRoster().At(0).ID
	room.Broadcast(network.MsgTypeTurnChanged, TurnChangedPayload{PlayerID: g.currentTurn})
	return nil
}

func (g *DuelGame) ask(room RoomContext, playerID, category string) error {
	if err := g.checkTurn(playerID); err != nil {
		return err
	}
	if category == "" {
		return InvalidParameters("Missing category")
	}

	opponent := g.opponent(room, playerID)
	hidden, _ := findCelebrity(g.pool, g.chosen[opponent])
	answer := resolver.Answer(hidden.Category, category)
	room.SendTo(playerID, network.MsgTypeQuestionAnswered, QuestionAnsweredPayload{Category: category, Answer: answer})

	if !answer {
		ids := resolver.Eliminate(g.pool, category)
		g.eliminate(ids)
		eliminated := make([]string, len(g.eliminated))
		copy(eliminated, g.eliminated)
		room.Broadcast(network.MsgTypeCardsEliminated, CardsEliminatedPayload{
			Category:      category,
			CelebrityIDs:  ids,
			EliminatedIDs: eliminated,
		})
	}

	g.passTurn(room)
	return nil
}

func (g *DuelGame) guess(room RoomContext, playerID, celebrityID string) error {
	if err := g.checkTurn(playerID); err != nil {
		return err
	}
	if _, ok := findCelebrity(g.pool, celebrityID); !ok {
		return InvalidParameters("Unknown celebrity")
	}

	opponent := g.opponent(room, playerID)
	correct := resolver.Guess(celebrityID, g.chosen[opponent])
	room.Broadcast(network.MsgTypeGuessResult, GuessResultPayload{
		PlayerID:    playerID,
		CelebrityID: celebrityID,
		Correct:     correct,
	})

	if !correct {
		g.passTurn(room)
		return nil
	}

	if err := g.machine.ChangeState(PhaseEnded); err != nil {
		return err
	}
	reveal := make(map[string]string, len(g.chosen))
	for id, c := range g.chosen {
		reveal[id] = c
	}
	g.reset()
	room.EndGame(Outcome{
		Winner:    playerID,
		WinnerIDs: []string{playerID},
		Reason:    ReasonCorrectGuess,
		Reveal:    reveal,
	})
	return nil
}

func (g *DuelGame) checkTurn(playerID string) error {
	if g.Phase() != PhaseQuestioning {
		return ErrInvalidPhase
	}
	if playerID != g.currentTurn {
		return ErrNotYourTurn
	}
	return nil
}

func (g *DuelGame) opponent(room RoomContext, playerID string) string {
	for _, id := range room.GetRoster().IDs() {
		if id != playerID {
			return id
		}
	}
	return ""
}

func (g *DuelGame) passTurn(room RoomContext) {
	g.currentTurn = resolver.NextTurn(room.GetRoster().IDs(), g.currentTurn)
	room.Broadcast(network.MsgTypeTurnChanged, TurnChangedPayload{PlayerID: g.currentTurn})
}

func (g *DuelGame) eliminate(ids []string) {
	for _, id := range ids {
		seen := false
		for _, e := range g.eliminated {
			if e == id {
				seen = true
				break
			}
		}
		if !seen {
			g.eliminated = append(g.eliminated, id)
		}
	}
}

func (g *DuelGame) reset() {
	g.chosen = make(map[string]string)
	g.eliminated = nil
	g.currentTurn = ""
}
