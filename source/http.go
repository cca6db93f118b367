package source

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/DenisMSouza/abtest-sub000/client"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// DefaultMemoizeTTL is how long a fetched definition is served from memory
// before the backend is asked again.
const DefaultMemoizeTTL = 30 * time.Second

type memoized struct {
	exp       types.Experiment
	fetchedAt time.Time
}

// HTTP fetches experiment definitions from the backend and memoizes them
// briefly so hot experiments do not hit the backend on every resolution.
//
// Not-found answers are not memoized; an experiment created moments later
// becomes visible on the next lookup.
type HTTP struct {
	client *client.Client
	ttl    time.Duration
	cache  *xsync.Map[string, memoized]
	clock  func() time.Time
}

var _ types.ExperimentSource = (*HTTP)(nil)

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithMemoizeTTL overrides how long definitions are served from memory.
// A zero ttl disables memoization.
func WithMemoizeTTL(ttl time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.ttl = ttl
	}
}

// WithHTTPClock overrides the time source, used by tests to control expiry.
func WithHTTPClock(clock func() time.Time) HTTPOption {
	return func(h *HTTP) {
		h.clock = clock
	}
}

// NewHTTP creates an HTTP-backed experiment source.
//
// Parameters:
//   - c: Backend client used for fetches
//   - opts: Optional configuration
//
// Returns:
//   - *HTTP: Initialized source
func NewHTTP(c *client.Client, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client: c,
		ttl:    DefaultMemoizeTTL,
		cache:  xsync.NewMap[string, memoized](),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// GetExperiment returns the definition for id, serving from memory when a
// fresh copy exists.
//
// Returns:
//   - *types.Experiment: The definition
//   - error: types.ErrExperimentNotFound or a types.ErrNetwork failure
func (h *HTTP) GetExperiment(ctx context.Context, id string) (*types.Experiment, error) {
	if h.ttl > 0 {
		if m, ok := h.cache.Load(id); ok && h.clock().Sub(m.fetchedAt) < h.ttl {
			exp := m.exp
			return &exp, nil
		}
	}

	exp, err := h.client.GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}

	if h.ttl > 0 {
		h.cache.Store(id, memoized{exp: *exp, fetchedAt: h.clock()})
	}

	return exp, nil
}

// Invalidate drops the memoized copy of id, forcing the next lookup to hit
// the backend.
func (h *HTTP) Invalidate(id string) {
	h.cache.Delete(id)
}
