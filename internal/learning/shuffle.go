package learning

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffler produces uniform random permutations. It is safe for concurrent
// use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler creates a shuffler. A zero seed seeds from the clock.
func NewShuffler(seed int64) *Shuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Shuffler{rng: rand.New(rand.NewSource(seed))}
}

// Shuffle permutes n elements in place with Fisher-Yates; swap exchanges
// elements i and j.
func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := n - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		swap(i, j)
	}
}

// Intn returns a uniform int in [0, n). n must be positive.
func (s *Shuffler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// ShuffleSlice returns a shuffled copy of items.
func ShuffleSlice[T any](s *Shuffler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	s.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
