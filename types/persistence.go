package types

import "context"

// PersistenceClient wraps the backend assignment store.
//
// Implementations perform bounded-timeout HTTP calls and no local caching;
// caching is the resolver's responsibility. A timeout or non-success status
// surfaces as an error wrapping ErrNetwork.
type PersistenceClient interface {
	// ReadAssignment returns the zero-or-one Assignment persisted for the
	// given (experiment, identity) pair.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//   - experimentID: Experiment to look up
	//   - identity: Visitor identity (must be present)
	//
	// Returns:
	//   - *Assignment: The persisted record, or nil when none exists
	//   - error: Wraps ErrNetwork on timeout or non-success status
	ReadAssignment(ctx context.Context, experimentID string, identity Identity) (*Assignment, error)

	// WriteAssignment persists a new assignment for the identity.
	//
	// Idempotent from the caller's perspective: if an Assignment already
	// exists for the pair the backend acknowledges with a no-op and this
	// method returns nil.
	WriteAssignment(ctx context.Context, experimentID string, identity Identity, variant string) error

	// TrackSuccess reports a success/conversion event for the experiment.
	TrackSuccess(ctx context.Context, experimentID string, event SuccessEvent) error
}
