package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/DenisMSouza/abtest-sub000/internal/kvutil"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// DefaultKVBucket is the bucket name used when none is configured.
const DefaultKVBucket = "abtest-assignments"

// NATSKV is a durable cache tier backed by a NATS JetStream KeyValue bucket.
//
// Assignments written here survive process restarts and are visible to every
// replica connected to the same JetStream domain. Per-entry TTLs are not
// supported by JetStream KV, so Set ignores its ttl argument; bucket-level
// TTL can be configured on the bucket itself.
type NATSKV struct {
	kv jetstream.KeyValue
}

var _ types.CacheTier = (*NATSKV)(nil)

// NewNATSKV creates or opens the backing KV bucket and returns the tier.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: Bucket name (DefaultKVBucket when empty)
//   - ttl: Bucket-level entry lifetime, zero for unlimited
//
// Returns:
//   - *NATSKV: Initialized durable tier
//   - error: Bucket creation/open failure
func NewNATSKV(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*NATSKV, error) {
	if bucket == "" {
		bucket = DefaultKVBucket
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "durable A/B assignment cache",
		TTL:         ttl,
		Storage:     jetstream.FileStorage,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure assignment bucket: %w", err)
	}

	return &NATSKV{kv: kv}, nil
}

// NewNATSKVFromBucket wraps an already opened KV bucket. Useful in tests and
// when the caller manages bucket lifecycle itself.
func NewNATSKVFromBucket(kv jetstream.KeyValue) *NATSKV {
	return &NATSKV{kv: kv}
}

// Get returns the stored variant for key.
//
// Parameters:
//   - ctx: Context for the KV lookup
//   - key: Cache key
//
// Returns:
//   - string: Stored variant name, empty on miss
//   - bool: Whether the key was present
//   - error: KV failure other than a missing key
func (n *NATSKV) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := n.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}

	return string(entry.Value()), true, nil
}

// Set stores variant under key. The ttl argument is ignored; see the type
// documentation.
func (n *NATSKV) Set(ctx context.Context, key, variant string, _ time.Duration) error {
	if _, err := n.kv.Put(ctx, key, []byte(variant)); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}

	return nil
}

// Delete removes key from the bucket. Deleting an absent key is a no-op.
func (n *NATSKV) Delete(ctx context.Context, key string) error {
	if err := n.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}

	return nil
}
