package cache

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/DenisMSouza/abtest-sub000/types"
)

type memoryEntry struct {
	variant   string
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process cache tier.
//
// Entries expire lazily: an expired entry is removed on the Get that
// observes it. Safe for concurrent use.
type Memory struct {
	entries *xsync.Map[string, memoryEntry]
	clock   func() time.Time
}

var _ types.CacheTier = (*Memory)(nil)

// MemoryOption configures a Memory tier.
type MemoryOption func(*Memory)

// WithClock overrides the time source, used by tests to control expiry.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.clock = clock
	}
}

// NewMemory creates an empty in-process cache tier.
//
// Returns:
//   - *Memory: Initialized tier
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: xsync.NewMap[string, memoryEntry](),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Get returns the cached variant for key.
//
// Parameters:
//   - ctx: Unused, present to satisfy types.CacheTier
//   - key: Cache key
//
// Returns:
//   - string: Cached variant name, empty on miss
//   - bool: Whether the key was present and unexpired
//   - error: Always nil for this tier
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := m.entries.Load(key)
	if !ok {
		return "", false, nil
	}

	if !entry.expiresAt.IsZero() && m.clock().After(entry.expiresAt) {
		m.entries.Delete(key)
		return "", false, nil
	}

	return entry.variant, true, nil
}

// Set stores variant under key.
//
// Parameters:
//   - ctx: Unused, present to satisfy types.CacheTier
//   - key: Cache key
//   - variant: Variant name to store
//   - ttl: Entry lifetime; zero means the entry never expires
//
// Returns:
//   - error: Always nil for this tier
func (m *Memory) Set(_ context.Context, key, variant string, ttl time.Duration) error {
	entry := memoryEntry{variant: variant}
	if ttl > 0 {
		entry.expiresAt = m.clock().Add(ttl)
	}
	m.entries.Store(key, entry)

	return nil
}

// Delete removes key from the tier. Deleting an absent key is a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

// Len returns the number of stored entries, including any not yet lazily
// expired.
func (m *Memory) Len() int {
	return m.entries.Size()
}
