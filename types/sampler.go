package types

// RandSource produces a value in [0, 1).
//
// The sampler draws from a RandSource so tests can inject deterministic
// values, and so server-side deployments can substitute a hashed source for
// sticky per-visitor bucketing.
type RandSource func() float64

// Sampler picks one variant from an experiment's ordered variant list.
//
// Implementations must:
//   - Always return a variant name when len(variants) > 0 (no error paths)
//   - Tolerate weight drift (weights are not assumed to sum to exactly 1.0)
//   - Be stateless apart from their random source
//
// The resolver guarantees variants is non-empty before calling Sample; an
// experiment with zero variants fails resolution with ErrNoVariants first.
type Sampler interface {
	// Sample returns the name of exactly one variant.
	//
	// Parameters:
	//   - variants: Ordered, non-empty variant list
	//
	// Returns:
	//   - string: The chosen variant name
	Sample(variants []Variant) string
}
