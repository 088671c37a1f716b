package game

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source injected into every component that draws answers,
// picks attack targets, or falls back to a random word.
type Rand interface {
	IntN(n int) int
}

// lockedRand is a PCG source safe for concurrent use across rooms.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a seeded, concurrency-safe Rand.
func NewRand(seed uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
