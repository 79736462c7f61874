package engine

import (
	"math/rand"
	"time"
)

// NewRand returns a PRNG seeded from the current time, suitable for the
// production entry point. Tests should use NewSeededRand instead so a
// deal's shuffle is reproducible.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededRand returns a PRNG with a caller-chosen seed, for deterministic
// tests of dealing and shuffling.
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
