package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type card struct {
	id, category string
}

func (c card) GetID() string       { return c.id }
func (c card) GetCategory() string { return c.category }

func TestTally_StrictMajority(t *testing.T) {
	b := NewBallots()
	b.Cast("A", "X")
	b.Cast("B", "X")
	b.Cast("C", "Y")

	target, count, ok := Tally(b.List())
	require.True(t, ok)
	assert.Equal(t, "X", target)
	assert.Equal(t, 2, count)
}

func TestTally_TieGoesToFirstSeenTarget(t *testing.T) {
	for i := 0; i < 50; i++ {
		b := NewBallots()
		b.Cast("A", "X")
		b.Cast("B", "Y")

		target, count, ok := Tally(b.List())
		require.True(t, ok)
		assert.Equal(t, "X", target)
		assert.Equal(t, 1, count)
	}
}

func TestTally_OverwriteKeepsVoterSlot(t *testing.T) {
	b := NewBallots()
	b.Cast("A", "X")
	b.Cast("B", "Y")
	b.Cast("A", "Z")

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []Ballot{{"A", "Z"}, {"B", "Y"}}, b.List())

	target, _, _ := Tally(b.List())
	assert.Equal(t, "Z", target)
}

func TestTally_Empty(t *testing.T) {
	_, _, ok := Tally(nil)
	assert.False(t, ok)
}

func TestBallots_RemoveTarget(t *testing.T) {
	b := NewBallots()
	b.Cast("A", "X")
	b.Cast("B", "Y")
	b.Cast("C", "X")

	voters := b.RemoveTarget("X")
	assert.Equal(t, []string{"A", "C"}, voters)
	assert.Equal(t, []Ballot{{"B", "Y"}}, b.List())

	assert.True(t, b.Remove("B"))
	assert.False(t, b.Remove("B"))
	assert.Zero(t, b.Len())
}

func TestQuorumReached(t *testing.T) {
	assert.False(t, QuorumReached(0, 0))
	assert.False(t, QuorumReached(2, 3))
	assert.True(t, QuorumReached(3, 3))
	// a player leaving mid-vote lowers the threshold
	assert.True(t, QuorumReached(3, 2))
}

func TestNextTurn(t *testing.T) {
	order := []string{"p1", "p2"}
	assert.Equal(t, "p2", NextTurn(order, "p1"))
	assert.Equal(t, "p1", NextTurn(order, "p2"))
	assert.Equal(t, "p1", NextTurn(order, "gone"))
	assert.Equal(t, "", NextTurn(nil, "p1"))
}

func TestEliminateAndAnswer(t *testing.T) {
	pool := []card{{"1", "actor"}, {"2", "athlete"}, {"3", "actor"}}

	assert.Equal(t, []string{"1", "3"}, Eliminate(pool, "actor"))
	assert.Empty(t, Eliminate(pool, "scientist"))

	assert.True(t, Answer("actor", "actor"))
	assert.False(t, Answer("actor", "athlete"))

	assert.True(t, Guess("3", "3"))
	assert.False(t, Guess("1", "3"))
	assert.False(t, Guess("", ""))
}

func TestTally_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		voters := rapid.IntRange(1, 12).Draw(t, "voters")
		targets := rapid.IntRange(1, 4).Draw(t, "targets")

		b := NewBallots()
		counts := make(map[string]int)
		for i := 0; i < voters; i++ {
			target := fmt.Sprintf("T%d", rapid.IntRange(0, targets-1).Draw(t, "target"))
			b.Cast(fmt.Sprintf("V%d", i), target)
			counts[target]++
		}

		winner, count, ok := Tally(b.List())
		if !ok {
			t.Fatal("expected a winner")
		}
		for _, c := range counts {
			if c > count {
				t.Fatalf("winner %s has %d votes but another target has %d", winner, count, c)
			}
		}
		again, _, _ := Tally(b.List())
		if again != winner {
			t.Fatalf("tally not deterministic: %s then %s", winner, again)
		}
	})
}
