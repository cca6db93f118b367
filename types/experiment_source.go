package types

import "context"

// ExperimentSource provides experiment descriptors.
//
// Implementations can back onto various stores:
//   - HTTP: the backend's public descriptor endpoint
//   - NATS KV: a watched bucket of descriptors, updated live
//   - Static: fixed descriptors for tests and embedding
type ExperimentSource interface {
	// GetExperiment returns the descriptor for the given experiment id.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - *Experiment: The descriptor
	//   - error: ErrExperimentNotFound when the id is unknown
	GetExperiment(ctx context.Context, id string) (*Experiment, error)
}
