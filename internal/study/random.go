package study

import (
	"math/rand/v2"
	"sync"
)

// Random is the source of randomness used for sampling and shuffling
type Random interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// globalRandom uses the runtime-seeded top-level generator, which is safe for concurrent use
type globalRandom struct{}

func (globalRandom) IntN(n int) int                     { return rand.IntN(n) }
func (globalRandom) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// NewGlobalRandom returns a Random backed by the top-level generator
func NewGlobalRandom() Random {
	return globalRandom{}
}

// lockedRandom serializes access to a seeded generator
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRandom returns a reproducible Random for the given seed
func NewSeededRandom(seed uint64) Random {
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
