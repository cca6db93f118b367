package types

import (
	"context"
	"time"
)

// CacheTier is one client-side cache of variant names.
//
// The engine keeps two redundant tiers: a cookie-style tier keyed by the raw
// experiment id with a 30-day TTL, and a durable tier keyed by
// "exp-<experimentID>" with no expiry. Both store only the bare variant name,
// never the full Assignment record.
//
// Implementations must be safe for concurrent use.
type CacheTier interface {
	// Get returns the cached variant name for key.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: Cache key
	//
	// Returns:
	//   - string: Cached variant name ("" on miss)
	//   - bool: true on hit, false on miss or expiry
	//   - error: Storage error (a miss is not an error)
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a variant name under key.
	//
	// A ttl of zero means no expiry. Tiers with storage-level expiry
	// semantics (e.g. a bucket-wide TTL) may ignore the per-entry ttl.
	Set(ctx context.Context, key, variant string, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
