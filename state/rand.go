package state

import "math/rand/v2"

// Rand is the random source used for room codes and impostor selection.
// Implementations must be safe for concurrent use.
type Rand interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.IntN(n)
}

// DefaultRand draws from the runtime's goroutine-safe generator.
var DefaultRand Rand = globalRand{}
