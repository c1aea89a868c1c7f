package state

import (
	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/network"
	"github.com/wfunc/partyserver/resolver"
)

const (
	WinnerCrewmates = "crewmates"

	ReasonImpostorEjected = "impostorEjected"
	ReasonImpostorLeft    = "impostorLeft"
)

// ImpostorGame is the impostor-elimination variant: one hidden impostor,
// tasks, sabotage and meetings that end in a vote.
type ImpostorGame struct {
	machine    StateMachine
	minPlayers int
	impostorID string
	ballots    *resolver.Ballots
}

func NewImpostorGame(minPlayers int) *ImpostorGame {
	g := &ImpostorGame{
		machine:    NewBaseStateMachine(PhaseLobby),
		minPlayers: minPlayers,
		ballots:    resolver.NewBallots(),
	}
	g.machine.AddTransition(PhaseLobby, PhaseInProgress, nil)
	g.machine.AddTransition(PhaseEnded, PhaseInProgress, nil)
	g.machine.AddTransition(PhaseInProgress, PhaseVoting, nil)
	g.machine.AddTransition(PhaseVoting, PhaseInProgress, nil)
	g.machine.AddTransition(PhaseVoting, PhaseEnded, nil)
	g.machine.AddTransition(PhaseInProgress, PhaseEnded, nil)
	return g
}

func (g *ImpostorGame) Variant() Variant { return VariantImpostor }
func (g *ImpostorGame) Phase() Phase     { return g.machine.GetCurrentState() }
func (g *ImpostorGame) Capacity() int    { return 0 }

// ImpostorID is empty until a game has started.
func (g *ImpostorGame) ImpostorID() string { return g.impostorID }

// Ballots exposes the current voting round.
func (g *ImpostorGame) Ballots() *resolver.Ballots { return g.ballots }

// ImpostorView is the public part of the impostor game state.
type ImpostorView struct {
	Phase Phase `json:"phase"`
	Votes int   `json:"votes"`
}

func (g *ImpostorGame) View() any {
	return ImpostorView{Phase: g.Phase(), Votes: g.ballots.Len()}
}

func (g *ImpostorGame) OnJoin(room RoomContext, p *Player) {
	p.Role = RoleCrewmate
}

func (g *ImpostorGame) OnLeave(room RoomContext, p *Player) {
	if !g.machine.In(PhaseInProgress, PhaseVoting) {
		return
	}

	if p.ID == g.impostorID {
		logger.Log.Infof("Impostor %s left room %s, crewmates win", p.ID, room.GetID())
		g.ballots.Clear()
		_ = g.machine.ChangeState(PhaseEnded)
		room.EndGame(Outcome{
			Winner:    WinnerCrewmates,
			WinnerIDs: room.GetRoster().IDs(),
			Reason:    ReasonImpostorLeft,
			Reveal:    map[string]string{"impostorId": g.impostorID},
		})
		return
	}

	if g.Phase() == PhaseVoting {
		g.ballots.Remove(p.ID)
		g.ballots.RemoveTarget(p.ID)
		g.resolveIfQuorum(room)
	}
}

func (g *ImpostorGame) HandleAction(room RoomContext, playerID string, action Action) error {
	switch a := action.(type) {
	case StartGame:
		return g.start(room)
	case CallMeeting:
		return g.callMeeting(room, playerID)
	case CompleteTask:
		return g.completeTask(room, playerID, a.Task)
	case Sabotage:
		return g.sabotage(room, playerID, a.System)
	case CastVote:
		return g.vote(room, playerID, a.TargetID)
	default:
		return ErrUnsupportedAction
	}
}

func (g *ImpostorGame) start(room RoomContext) error {
	if !g.machine.In(PhaseLobby, PhaseEnded) {
		return ErrInvalidPhase
	}
	roster := room.GetRoster()
	if roster.Len() < g.minPlayers {
		return ErrInsufficientPlayers
	}

	for _, p := range roster.Players() {
		p.Role = RoleCrewmate
	}
	impostor := roster.At(room.GetRand().Intn(roster.Len()))
	impostor.Role = RoleImpostor
	g.impostorID = impostor.ID
	g.ballots.Clear()

	if err := g.machine.ChangeState(PhaseInProgress); err != nil {
		return err
	}

	logger.Log.Infof("Game started in room %s with %d players", room.GetID(), roster.Len())
	room.Broadcast(network.MsgTypeGameStarted, GameStartedPayload{
		Code:    room.GetID(),
		Variant: VariantImpostor,
		Players: roster.View(true),
	})
	return nil
}

func (g *ImpostorGame) callMeeting(room RoomContext, callerID string) error {
	if g.Phase() != PhaseInProgress {
		return ErrInvalidPhase
	}
	if err := g.machine.ChangeState(PhaseVoting); err != nil {
		return err
	}
	g.ballots.Clear()

	caller, _ := room.GetRoster().Get(callerID)
	room.Broadcast(network.MsgTypeMeetingCalled, MeetingCalledPayload{
		CallerID:   caller.ID,
		CallerName: caller.Name,
	})
	return nil
}

func (g *ImpostorGame) completeTask(room RoomContext, playerID, task string) error {
	if g.Phase() != PhaseInProgress {
		return ErrInvalidPhase
	}
	room.Broadcast(network.MsgTypeTaskCompleted, TaskCompletedPayload{PlayerID: playerID, Task: task})
	return nil
}

// sabotage from anyone but the impostor is dropped without an error.
func (g *ImpostorGame) sabotage(room RoomContext, playerID, system string) error {
	if playerID != g.impostorID {
		return nil
	}
	if g.Phase() != PhaseInProgress {
		return ErrInvalidPhase
	}
	room.Broadcast(network.MsgTypeSabotageTriggered, SabotagePayload{System: system})
	return nil
}

func (g *ImpostorGame) vote(room RoomContext, voterID, targetID string) error {
	if g.Phase() != PhaseVoting {
		return ErrInvalidPhase
	}
	roster := room.GetRoster()
	if targetID == "" || !roster.Has(targetID) {
		return InvalidParameters("Unknown vote target")
	}

	g.ballots.Cast(voterID, targetID)
	room.Broadcast(network.MsgTypeVoteCast, VoteCastPayload{
		VoterID: voterID,
		Votes:   g.ballots.Len(),
		Needed:  roster.Len(),
	})
	g.resolveIfQuorum(room)
	return nil
}

func (g *ImpostorGame) resolveIfQuorum(room RoomContext) {
	roster := room.GetRoster()
	if !resolver.QuorumReached(g.ballots.Len(), roster.Len()) {
		return
	}

	ballots := g.ballots.List()
	target, count, ok := resolver.Tally(ballots)
	g.ballots.Clear()
	if !ok {
		return
	}

	// Ejection is advisory: the player stays on the roster.
	ejected, _ := roster.Get(target)
	wasImpostor := target == g.impostorID
	room.Broadcast(network.MsgTypePlayerEjected, PlayerEjectedPayload{
		PlayerID:    ejected.ID,
		Name:        ejected.Name,
		Votes:       count,
		WasImpostor: wasImpostor,
		Ballots:     ballots,
	})

	if !wasImpostor {
		_ = g.machine.ChangeState(PhaseInProgress)
		return
	}

	logger.Log.Infof("Impostor %s ejected in room %s", target, room.GetID())
	_ = g.machine.ChangeState(PhaseEnded)
	winners := make([]string, 0, roster.Len())
	for _, p := range roster.Players() {
		if p.Role == RoleCrewmate {
			winners = append(winners, p.ID)
		}
	}
	room.EndGame(Outcome{
		Winner:    WinnerCrewmates,
		WinnerIDs: winners,
		Reason:    ReasonImpostorEjected,
		Reveal:    map[string]string{"impostorId": g.impostorID},
	})
}
