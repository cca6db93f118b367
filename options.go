package abtest

import (
	"time"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// Option configures a Manager or Resolver with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional engine configuration.
type engineOptions struct {
	logger      types.Logger
	metrics     types.MetricsCollector
	hooks       *types.Hooks
	sampler     types.Sampler
	rand        types.RandSource
	cookieTier  types.CacheTier
	durableTier types.CacheTier
	persistence types.PersistenceClient
	identity    types.Identity
	clock       func() time.Time
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
//
// Example:
//
//	mgr, err := abtest.NewManager(cfg, &exp, abtest.WithLogger(myLogger))
func WithLogger(logger types.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "abtest")
//	mgr, err := abtest.NewManager(cfg, &exp, abtest.WithMetrics(collector))
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewManager
//
// Example:
//
//	hooks := &abtest.Hooks{
//	    OnResolved: func(ctx context.Context, experimentID string, res abtest.Resolution) error {
//	        return recordExposure(experimentID, res)
//	    },
//	}
//	mgr, err := abtest.NewManager(cfg, &exp, abtest.WithHooks(hooks))
func WithHooks(hooks *types.Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = hooks
	}
}

// WithSampler replaces the default cumulative-weight sampler.
//
// Parameters:
//   - sampler: Sampler implementation
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
func WithSampler(sampler types.Sampler) Option {
	return func(o *engineOptions) {
		o.sampler = sampler
	}
}

// WithRand sets the random source for the default sampler. Ignored when
// WithSampler is also supplied.
//
// Parameters:
//   - rand: Function returning values in [0, 1)
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
func WithRand(rand types.RandSource) Option {
	return func(o *engineOptions) {
		o.rand = rand
	}
}

// WithCookieTier sets the cookie-style cache tier, consulted first.
//
// Parameters:
//   - tier: CacheTier implementation
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
func WithCookieTier(tier types.CacheTier) Option {
	return func(o *engineOptions) {
		o.cookieTier = tier
	}
}

// WithDurableTier sets the durable cache tier, consulted after the cookie
// tier.
//
// Parameters:
//   - tier: CacheTier implementation (e.g. cache.NATSKV)
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
func WithDurableTier(tier types.CacheTier) Option {
	return func(o *engineOptions) {
		o.durableTier = tier
	}
}

// WithPersistence sets the backend persistence client.
//
// Parameters:
//   - p: PersistenceClient implementation (e.g. client.Client)
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
//
// Example:
//
//	c := client.New(cfg.BaseURL, client.WithTimeout(cfg.RequestTimeout))
//	mgr, err := abtest.NewManager(cfg, &exp, abtest.WithPersistence(c))
func WithPersistence(p types.PersistenceClient) Option {
	return func(o *engineOptions) {
		o.persistence = p
	}
}

// WithIdentity sets the initial visitor identity. An absent identity causes
// the Manager to mint an anonymous session ID on first resolution.
//
// Parameters:
//   - identity: Visitor identity
//
// Returns:
//   - Option: Functional option for NewManager
func WithIdentity(identity types.Identity) Option {
	return func(o *engineOptions) {
		o.identity = identity
	}
}

// WithClock overrides the time source used for activity evaluation and
// cookie TTLs. Used by tests.
//
// Parameters:
//   - clock: Function returning the current time
//
// Returns:
//   - Option: Functional option for NewManager and NewResolver
func WithClock(clock func() time.Time) Option {
	return func(o *engineOptions) {
		o.clock = clock
	}
}
