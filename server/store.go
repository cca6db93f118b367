package server

import (
	"context"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// Store persists experiments, assignments, and success events.
type Store interface {
	// PutExperiment creates or replaces an experiment definition.
	PutExperiment(ctx context.Context, exp types.Experiment) error

	// GetExperiment returns the definition for id, or
	// types.ErrExperimentNotFound.
	GetExperiment(ctx context.Context, id string) (*types.Experiment, error)

	// GetAssignment returns the assignment for (experimentID, visitorID),
	// or nil when none exists.
	GetAssignment(ctx context.Context, experimentID, visitorID string) (*types.Assignment, error)

	// CreateAssignment inserts an assignment unless one already exists for
	// the (experimentID, visitorID) pair. The insert is atomic against
	// concurrent writers; exactly one record can ever win.
	//
	// Returns:
	//   - types.Assignment: The stored record (the winner's, on conflict)
	//   - bool: true when this call created the record
	//   - error: Storage failure
	CreateAssignment(ctx context.Context, experimentID, visitorID, variation string) (types.Assignment, bool, error)

	// RecordSuccess stores a success event for an experiment.
	RecordSuccess(ctx context.Context, experimentID string, event types.SuccessEvent) error

	// Close releases the underlying storage.
	Close() error
}
