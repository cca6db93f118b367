package sampler

import (
	"math/rand/v2"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// Weighted implements cumulative-weight sampling over an ordered variant
// list.
//
// The algorithm:
//  1. A single variant is returned unconditionally (its weight is ignored).
//  2. Otherwise draw r = rand() * totalWeight, where totalWeight is the sum
//     of the weights as configured (drift from 1.0 is tolerated).
//  3. Walk the list accumulating a running sum and return the first variant
//     whose cumulative sum satisfies r <= cumulative. Exact boundary values
//     therefore resolve to the earlier variant in iteration order.
//  4. If floating-point error leaves no variant satisfying the test, the
//     last variant is returned.
type Weighted struct {
	rand types.RandSource
}

var _ types.Sampler = (*Weighted)(nil)

// Option configures a Weighted sampler.
type Option func(*Weighted)

// WithRand sets the random source used for draws.
//
// Parameters:
//   - r: Function returning values in [0, 1)
//
// Returns:
//   - Option: Functional option for NewWeighted
//
// Example:
//
//	s := sampler.NewWeighted(sampler.WithRand(func() float64 { return 0.5 }))
func WithRand(r types.RandSource) Option {
	return func(w *Weighted) {
		w.rand = r
	}
}

// NewWeighted creates a new weighted sampler.
//
// Without options the sampler draws from math/rand/v2's shared generator.
//
// Returns:
//   - *Weighted: Initialized weighted sampler
func NewWeighted(opts ...Option) *Weighted {
	w := &Weighted{rand: rand.Float64}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Sample returns the name of exactly one variant.
//
// The caller guarantees variants is non-empty; see types.Sampler.
//
// Parameters:
//   - variants: Ordered, non-empty variant list
//
// Returns:
//   - string: The chosen variant name
func (w *Weighted) Sample(variants []types.Variant) string {
	if len(variants) == 1 {
		return variants[0].Name
	}

	var totalWeight float64
	for _, v := range variants {
		totalWeight += v.Weight
	}

	r := w.rand() * totalWeight

	var cumulative float64
	for _, v := range variants {
		cumulative += v.Weight
		if r <= cumulative {
			return v.Name
		}
	}

	// Floating-point drift can leave r marginally above the final cumulative
	// sum; the last variant absorbs it.
	return variants[len(variants)-1].Name
}
