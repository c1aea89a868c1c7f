package state

import (
	"testing"
)

func TestStateMachine_InitialState(t *testing.T) {
	sm := NewBaseStateMachine(PhaseLobby)

	if sm.GetCurrentState() != PhaseLobby {
		t.Errorf("Expected initial state lobby, got %s", sm.GetCurrentState())
	}
}

func TestStateMachine_UnregisteredEdge(t *testing.T) {
	sm := NewBaseStateMachine(PhaseLobby)

	if err := sm.ChangeState(PhaseEnded); err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if sm.GetCurrentState() != PhaseLobby {
		t.Errorf("State should remain lobby, got %s", sm.GetCurrentState())
	}
}

func TestStateMachine_AddAndUseTransition(t *testing.T) {
	sm := NewBaseStateMachine(PhaseLobby)

	sm.AddTransition(PhaseLobby, PhaseInProgress, func() bool { return true })
	sm.AddTransition(PhaseInProgress, PhaseVoting, func() bool { return false })

	// --- Test valid transition ---
	if err := sm.ChangeState(PhaseInProgress); err != nil {
		t.Errorf("Expected transition from lobby to inProgress to be allowed, but got error: %v", err)
	}
	if sm.GetCurrentState() != PhaseInProgress {
		t.Errorf("Expected current state to be inProgress, but got %s", sm.GetCurrentState())
	}

	// --- Test blocked transition ---
	if err := sm.ChangeState(PhaseVoting); err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if sm.GetCurrentState() != PhaseInProgress {
		t.Errorf("Expected current state to remain inProgress after a blocked transition, but got %s", sm.GetCurrentState())
	}
	if !sm.In(PhaseLobby, PhaseInProgress) || sm.In(PhaseVoting) {
		t.Error("In reported the wrong phase membership")
	}
}

func TestRoster_JoinOrder(t *testing.T) {
	r := NewRoster()
	for _, id := range []string{"a", "b", "c"} {
		if !r.Add(&Player{ID: id, Name: id}) {
			t.Fatalf("Add(%s) failed", id)
		}
	}
	if r.Add(&Player{ID: "b"}) {
		t.Error("duplicate id should be rejected")
	}

	r.Remove("b")
	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Errorf("unexpected order %v", ids)
	}
	if r.At(1).ID != "c" {
		t.Errorf("At(1) = %s, want c", r.At(1).ID)
	}
}

func TestNewGame_UnknownVariant(t *testing.T) {
	_, err := NewGame("chess", Options{})
	if KindOf(err) != KindInvalidParameters {
		t.Errorf("expected InvalidParameters, got %v", err)
	}
}
