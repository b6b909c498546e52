// Package refgen generates payee references: merchant-side idempotency tokens
// that must be unique per gateway request. Wall-clock ticks are not unique
// enough — two requests in the same tick collide — so references combine a
// monotonic sequence with a random component.
package refgen

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
)

// Generator produces a unique payee reference per call.
type Generator interface {
	Next() string
}

// Unique is the default Generator. Each reference is
// "<sequence><12 random hex chars>", alphanumeric as the gateway requires.
// A bloom filter tracks references issued by this process; on a (possible)
// repeat the reference is regenerated rather than risked.
type Unique struct {
	mu   sync.Mutex
	seq  uint64
	seen *bloom.BloomFilter
}

// NewUnique creates a Unique generator sized for one million references at a
// 0.1% false-positive rate. False positives only cost a regeneration.
func NewUnique() *Unique {
	return &Unique{
		seen: bloom.NewWithEstimates(1_000_000, 0.001),
	}
}

// Next returns the next reference.
func (g *Unique) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		g.seq++
		random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		ref := fmt.Sprintf("%d%s", g.seq, random)
		if !g.seen.TestOrAdd([]byte(ref)) {
			return ref
		}
	}
}

// Static is a Generator returning a fixed reference, for tests.
type Static string

func (s Static) Next() string { return string(s) }
