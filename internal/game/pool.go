package game

import (
	"math/rand/v2"

	"github.com/playperu/tambola/internal/tambola"
)

// pool holds the numbers not yet called. Draws swap-remove a uniformly
// chosen element, so every draw is O(1) no matter how many were called.
type pool struct {
	remaining []int
	rng       *rand.Rand
}

func newPool(rng *rand.Rand) *pool {
	remaining := make([]int, tambola.MaxNumber)
	for i := range remaining {
		remaining[i] = i + 1
	}
	return &pool{remaining: remaining, rng: rng}
}

func (p *pool) draw() (int, bool) {
	if len(p.remaining) == 0 {
		return 0, false
	}
	i := p.rng.IntN(len(p.remaining))
	n := p.remaining[i]
	last := len(p.remaining) - 1
	p.remaining[i] = p.remaining[last]
	p.remaining = p.remaining[:last]
	return n, true
}

func (p *pool) len() int { return len(p.remaining) }
