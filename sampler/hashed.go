package sampler

import (
	"github.com/zeebo/xxh3"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// float53 is the divisor mapping a 53-bit integer onto [0, 1).
const float53 = 1 << 53

// HashedRand returns a deterministic random source derived from the
// (experiment, visitor) pair.
//
// Every replica that sees the same pair produces the same draw, so stateless
// server-side deployments sample the same variant for a visitor without any
// shared state. The seed allows reshuffling the whole population (e.g. per
// deployment environment); pass 0 for the default shuffle.
//
// Parameters:
//   - experimentID: Experiment the draw belongs to
//   - visitorKey: Canonical visitor key (Identity.Key())
//   - seed: Population shuffle seed (0 for default)
//
// Returns:
//   - types.RandSource: Source returning one fixed value in [0, 1)
//
// Example:
//
//	r := sampler.HashedRand(exp.ID, identity.Key(), 0)
//	s := sampler.NewWeighted(sampler.WithRand(r))
func HashedRand(experimentID, visitorKey string, seed uint64) types.RandSource {
	// NUL-join the inputs so ("ab","c") and ("a","bc") hash differently.
	h := xxh3.HashStringSeed(experimentID+"\x00"+visitorKey, seed)
	v := float64(h>>11) / float53

	return func() float64 {
		return v
	}
}
