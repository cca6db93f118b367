package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// Static serves experiment definitions from an in-memory map.
//
// Definitions can be replaced at runtime with Put; lookups and updates are
// safe for concurrent use.
type Static struct {
	mu          sync.RWMutex
	experiments map[string]types.Experiment
}

var _ types.ExperimentSource = (*Static)(nil)

// NewStatic creates a static source preloaded with the given experiments.
//
// Parameters:
//   - experiments: Initial definitions, may be empty
//
// Returns:
//   - *Static: Initialized source
func NewStatic(experiments ...types.Experiment) *Static {
	s := &Static{experiments: make(map[string]types.Experiment, len(experiments))}
	for _, exp := range experiments {
		s.experiments[exp.ID] = exp
	}

	return s
}

// GetExperiment returns the definition for id.
//
// Returns:
//   - *types.Experiment: A copy of the stored definition
//   - error: types.ErrExperimentNotFound when id is unknown
func (s *Static) GetExperiment(_ context.Context, id string) (*types.Experiment, error) {
	s.mu.RLock()
	exp, ok := s.experiments[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("experiment %s: %w", id, types.ErrExperimentNotFound)
	}

	return &exp, nil
}

// Put stores or replaces a definition.
func (s *Static) Put(exp types.Experiment) {
	s.mu.Lock()
	s.experiments[exp.ID] = exp
	s.mu.Unlock()
}

// Remove deletes a definition. Removing an unknown id is a no-op.
func (s *Static) Remove(id string) {
	s.mu.Lock()
	delete(s.experiments, id)
	s.mu.Unlock()
}
