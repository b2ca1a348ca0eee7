// Package randsrc defines the random source collaborator injected into
// the sampling interpreter (spec.md §5: "The random source is the only
// external effect"). Deterministic runs seed it before evaluation.
package randsrc

import "math/rand"

// Source provides the two primitive draws the interpreter needs: a
// uniform integer in an inclusive range, and a uniform float in [0, 1).
type Source interface {
	IntRange(lo, hi int64) int64
	Float() float64
}

// mathRand wraps math/rand.Rand as a Source.
type mathRand struct {
	r *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed int64) Source {
	return &mathRand{r: rand.New(rand.NewSource(seed))}
}

func (m *mathRand) IntRange(lo, hi int64) int64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo + 1
	return lo + m.r.Int63n(span)
}

func (m *mathRand) Float() float64 {
	return m.r.Float64()
}
