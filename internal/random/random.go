// Package random provides the non-cryptographic random helpers used across
// go-webhelpers: bounded integers, GUID-like identifiers, random slice
// elements and in-place shuffling.
package random

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// Generator produces pseudo-random values from a math/rand/v2 source.
// It is safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// New returns a deterministic Generator seeded with the given PCG seeds.
// Use it in tests or wherever reproducible output matters.
func New(seed1, seed2 uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

var (
	defaultGen  *Generator
	defaultOnce sync.Once
)

// Default returns the process-wide Generator, seeded from the runtime's
// random source on first use.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGen = New(rand.Uint64(), rand.Uint64())
	})
	return defaultGen
}

// Float64 returns a value in [0, 1).
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (g *Generator) IntN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// IntFromInterval returns a random integer between min and max, both
// inclusive. The bounds are not reordered; callers pass min <= max.
func (g *Generator) IntFromInterval(min, max int) int {
	return int(math.Floor(g.Float64()*float64(max-min+1) + float64(min)))
}

// GUID returns a random identifier in the familiar 8-4-4-4-12 hex layout.
// The version and variant bits are left random, so the result looks like an
// RFC 4122 UUID without claiming to be one.
func (g *Generator) GUID() string {
	var id uuid.UUID
	g.mu.Lock()
	for i := 0; i < len(id); i += 2 {
		v := g.rng.IntN(0x10000)
		id[i] = byte(v >> 8)
		id[i+1] = byte(v)
	}
	g.mu.Unlock()
	return id.String()
}

// Element returns a random element of s. The boolean is false for an
// empty or nil slice.
func Element[T any](g *Generator, s []T) (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	return s[g.IntFromInterval(0, len(s)-1)], true
}

// Shuffle permutes s in place with a Fisher-Yates walk from the back and
// returns it.
func Shuffle[T any](g *Generator, s []T) []T {
	for current := len(s); current != 0; {
		idx := int(math.Floor(g.Float64() * float64(current)))
		current--
		s[current], s[idx] = s[idx], s[current]
	}
	return s
}
