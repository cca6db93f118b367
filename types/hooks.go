package types

import "context"

// Hooks defines callbacks for Manager lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking the state machine. This is the engine's subscription
// surface: callers observe state transitions and resolutions through hooks
// instead of polling, independent of any rendering layer.
//
// Hook execution behavior:
//   - Hooks run concurrently with the caller and may overlap each other
//   - Hook errors are logged but never fail the resolution
//
// Implementations should complete quickly and be idempotent.
type Hooks struct {
	// OnResolved is called after every successful resolution, including
	// fallback substitutions.
	OnResolved func(ctx context.Context, experimentID string, res Resolution) error

	// OnStateChanged is called on every state machine transition.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnError is called when a resolution fails terminally (no fallback).
	OnError func(ctx context.Context, err error) error
}
