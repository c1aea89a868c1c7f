package state

import (
	"errors"
)

// Phase 游戏阶段
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseInProgress  Phase = "inProgress"
	PhaseVoting      Phase = "voting"
	PhaseSelecting   Phase = "selecting"
	PhaseQuestioning Phase = "questioning"
	PhaseEnded       Phase = "ended"
)

// 状态机接口
type StateMachine interface {
	ChangeState(to Phase) error
	GetCurrentState() Phase
	AddTransition(from Phase, to Phase, condition func() bool)
	In(phases ...Phase) bool
}

var _ StateMachine = (*BaseStateMachine)(nil)

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// BaseStateMachine tracks the current phase of a game. Only registered edges
// may be taken. It is not synchronized: a machine belongs to exactly one room
// and is only touched from that room's goroutine.
type BaseStateMachine struct {
	currentState Phase
	transitions  map[Phase]map[Phase]func() bool // fromState -> toState -> condition
}

func NewBaseStateMachine(initial Phase) *BaseStateMachine {
	return &BaseStateMachine{
		currentState: initial,
		transitions:  make(map[Phase]map[Phase]func() bool),
	}
}

func (sm *BaseStateMachine) ChangeState(to Phase) error {
	conditions, exists := sm.transitions[sm.currentState]
	if !exists {
		return ErrTransitionNotAllowed
	}
	condition, exists := conditions[to]
	if !exists {
		return ErrTransitionNotAllowed
	}
	if condition != nil && !condition() {
		return ErrTransitionNotAllowed
	}

	sm.currentState = to
	return nil
}

func (sm *BaseStateMachine) GetCurrentState() Phase {
	return sm.currentState
}

// AddTransition registers the edge from -> to. A nil condition always passes.
func (sm *BaseStateMachine) AddTransition(from Phase, to Phase, condition func() bool) {
	if _, exists := sm.transitions[from]; !exists {
		sm.transitions[from] = make(map[Phase]func() bool)
	}
	sm.transitions[from][to] = condition
}

// In reports whether the current phase is one of phases.
func (sm *BaseStateMachine) In(phases ...Phase) bool {
	for _, p := range phases {
		if sm.currentState == p {
			return true
		}
	}
	return false
}
