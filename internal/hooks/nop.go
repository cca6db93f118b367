// Package hooks provides default hook implementations.
package hooks

import (
	"context"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnResolved:     h.OnResolved,
		OnStateChanged: h.OnStateChanged,
		OnError:        h.OnError,
	}
}

// OnResolved is a no-op implementation.
func (h *NopHooks) OnResolved(_ context.Context, _ string, _ types.Resolution) error {
	return nil
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ context.Context, _, _ types.State) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
