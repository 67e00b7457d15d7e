package dispatch

import (
	"math/rand"
	"sync"
	"time"

	"github.com/zen-systems/askflow/pkg/provider"
)

// OrderPolicy decides the order in which candidate kinds are attempted.
// Ordering is a load-balancing preference only; it never changes which
// response a successful dispatch returns.
type OrderPolicy interface {
	Order(kinds []provider.Kind) []provider.Kind
}

// ShuffleOrder permutes the candidates uniformly at random.
type ShuffleOrder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffleOrder creates a time-seeded shuffle policy.
func NewShuffleOrder() *ShuffleOrder {
	return &ShuffleOrder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Order returns a shuffled copy of kinds.
func (s *ShuffleOrder) Order(kinds []provider.Kind) []provider.Kind {
	out := make([]provider.Kind, len(kinds))
	copy(out, kinds)

	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	s.mu.Unlock()
	return out
}

// FixedOrder attempts kinds in the listed order. Candidates not listed are
// appended afterwards in their given order. Intended for tests.
type FixedOrder []provider.Kind

// Order returns kinds reordered to match the fixed sequence.
func (f FixedOrder) Order(kinds []provider.Kind) []provider.Kind {
	present := make(map[provider.Kind]bool, len(kinds))
	for _, k := range kinds {
		present[k] = true
	}

	out := make([]provider.Kind, 0, len(kinds))
	listed := make(map[provider.Kind]bool, len(f))
	for _, k := range f {
		if present[k] {
			out = append(out, k)
			listed[k] = true
		}
	}
	for _, k := range kinds {
		if !listed[k] {
			out = append(out, k)
		}
	}
	return out
}
