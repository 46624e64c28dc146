// Package games holds the chance-based games played for strawberries.
package games

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the subset of *rand.Rand used by the games.
type Rand interface {
	Intn(n int) int
}

// Draw picks an index with probability proportional to its weight.
// Non-positive weights are never chosen. It returns -1 if no weight is positive.
func Draw(rng Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}

	roll := rng.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return -1
}

// lockedRand makes a *rand.Rand safe for concurrent handlers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// NewRand returns a goroutine-safe source. A zero seed uses the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}
