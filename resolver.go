package abtest

import (
	"context"
	"fmt"
	"time"

	"github.com/DenisMSouza/abtest-sub000/cache"
	"github.com/DenisMSouza/abtest-sub000/client"
	"github.com/DenisMSouza/abtest-sub000/internal/logger"
	"github.com/DenisMSouza/abtest-sub000/internal/logging"
	"github.com/DenisMSouza/abtest-sub000/internal/metrics"
	"github.com/DenisMSouza/abtest-sub000/sampler"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// durableKeyPrefix namespaces durable-tier keys so assignment entries never
// collide with other users of a shared bucket.
const durableKeyPrefix = "exp-"

// Resolver determines the variant for one (experiment, identity) pair.
//
// It consults its sources in fixed precedence order: activity override,
// cookie tier, durable tier, backend record, fresh sample. Whichever source
// wins, the variant is mirrored into both cache tiers so the next resolution
// short-circuits locally.
//
// Resolver is stateless across calls and safe for concurrent use; all
// per-visitor state lives in the cache tiers and the backend.
type Resolver struct {
	cookie      types.CacheTier
	durable     types.CacheTier
	persistence types.PersistenceClient
	sampler     types.Sampler
	logger      types.Logger
	metrics     types.MetricsCollector

	cookieTTL       time.Duration
	fallbackVariant string
	noFallback      bool
	clock           func() time.Time
}

func applyOptions(opts []Option) *engineOptions {
	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// newResolver builds a resolver from validated config and collected options.
func newResolver(cfg *Config, o *engineOptions) *Resolver {
	r := &Resolver{
		cookie:          o.cookieTier,
		durable:         o.durableTier,
		persistence:     o.persistence,
		sampler:         o.sampler,
		logger:          o.logger,
		metrics:         o.metrics,
		cookieTTL:       cfg.CookieTTL,
		fallbackVariant: cfg.FallbackVariant,
		noFallback:      cfg.NoFallback,
		clock:           o.clock,
	}

	if r.logger == nil {
		if cfg.Debug {
			r.logger = logging.NewSlogDefault()
		} else {
			r.logger = logger.NewNop()
		}
	}
	if r.metrics == nil {
		r.metrics = metrics.NewNop()
	}
	if r.sampler == nil {
		if o.rand != nil {
			r.sampler = sampler.NewWeighted(sampler.WithRand(o.rand))
		} else {
			r.sampler = sampler.NewWeighted()
		}
	}
	if r.cookie == nil {
		r.cookie = cache.NewMemory()
	}
	if r.persistence == nil && cfg.BaseURL != "" {
		r.persistence = client.New(cfg.BaseURL,
			client.WithTimeout(cfg.RequestTimeout),
			client.WithLogger(r.logger),
			client.WithMetrics(r.metrics),
		)
	}
	if r.clock == nil {
		r.clock = time.Now
	}

	return r
}

// NewResolver creates a stateless assignment resolver.
//
// Parameters:
//   - cfg: Engine configuration; missing values are defaulted in place
//   - opts: Optional dependencies
//
// Returns:
//   - *Resolver: Initialized resolver
//   - error: Configuration validation failure
func NewResolver(cfg *Config, opts ...Option) (*Resolver, error) {
	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return newResolver(cfg, applyOptions(opts)), nil
}

// Resolve determines the variant for the given experiment and identity.
//
// Precedence, strictly in order:
//  1. Inactive experiment: the baseline (or configured fallback) is adopted
//     with source SourceGenerated and written to both cache tiers. The
//     backend is never contacted for inactive experiments.
//  2. Cookie tier hit: adopt with source SourceCookie.
//  3. Durable tier hit: adopt with source SourceLocalCache.
//  4. Backend record (identity present): adopt with source SourceBackend.
//     No record: sample, persist, adopt with source SourceGenerated.
//  5. No identity and no cached value: sample and adopt with source
//     SourceGenerated without contacting the backend.
//
// On a cache hit with a present identity, the variant is written through to
// the backend when no record exists yet. When the backend already holds a
// different variant for this identity (e.g. assigned on another device),
// the backend record wins and replaces the cached value.
//
// Parameters:
//   - ctx: Context for cancellation and backend deadlines
//   - exp: Experiment definition
//   - identity: Visitor identity, may be absent
//
// Returns:
//   - types.Resolution: Adopted variant and its source
//   - error: ErrExperimentRequired, ErrNoVariants, ErrNoBaseline, or a
//     backend failure wrapping ErrNetwork
func (r *Resolver) Resolve(ctx context.Context, exp *types.Experiment, identity types.Identity) (types.Resolution, error) {
	start := time.Now()

	if exp == nil {
		return types.Resolution{}, ErrExperimentRequired
	}
	if len(exp.Variants) == 0 {
		return types.Resolution{}, fmt.Errorf("experiment %s: %w", exp.ID, ErrNoVariants)
	}

	// 1. Activity window.
	active, reason := EvaluateActivity(exp, r.clock())
	if !active {
		return r.resolveInactive(ctx, exp, reason, start)
	}

	// 2. Cookie tier.
	if res, ok := r.resolveFromTier(ctx, exp, identity, r.cookie, "cookie", exp.ID, types.SourceCookie); ok {
		return r.finish(res, start), nil
	}

	// 3. Durable tier.
	if r.durable != nil {
		if res, ok := r.resolveFromTier(ctx, exp, identity, r.durable, "durable", durableKeyPrefix+exp.ID, types.SourceLocalCache); ok {
			return r.finish(res, start), nil
		}
	}

	// 4. Backend record, then fresh sample persisted to the backend.
	if identity.Present() && r.persistence != nil {
		record, err := r.persistence.ReadAssignment(ctx, exp.ID, identity)
		if err != nil {
			return types.Resolution{}, err
		}
		if record != nil {
			r.mirror(ctx, exp.ID, record.Variation)
			return r.finish(types.Resolution{Variant: record.Variation, Source: types.SourceBackend}, start), nil
		}

		variant := r.sample(exp)
		r.mirror(ctx, exp.ID, variant)
		if err := r.persistence.WriteAssignment(ctx, exp.ID, identity, variant); err != nil {
			return types.Resolution{}, err
		}

		return r.finish(types.Resolution{Variant: variant, Source: types.SourceGenerated}, start), nil
	}

	// 5. Anonymous, client-only: nothing to persist without an identity.
	variant := r.sample(exp)
	r.mirror(ctx, exp.ID, variant)

	return r.finish(types.Resolution{Variant: variant, Source: types.SourceGenerated}, start), nil
}

// resolveInactive serves the baseline override for an experiment outside its
// activity window.
func (r *Resolver) resolveInactive(ctx context.Context, exp *types.Experiment, reason error, start time.Time) (types.Resolution, error) {
	r.logger.Debug("experiment inactive, serving override", "experiment", exp.ID, "reason", reason)

	variant := r.fallbackVariant
	if baseline, ok := exp.Baseline(); ok {
		variant = baseline.Name
	} else if r.noFallback {
		return types.Resolution{}, fmt.Errorf("experiment %s inactive (%v): %w", exp.ID, reason, ErrNoBaseline)
	}

	r.mirror(ctx, exp.ID, variant)

	return r.finish(types.Resolution{Variant: variant, Source: types.SourceGenerated}, start), nil
}

// resolveFromTier attempts one cache tier. On a hit it reconciles with the
// backend, mirrors the adopted variant into both tiers, and reports success.
func (r *Resolver) resolveFromTier(
	ctx context.Context,
	exp *types.Experiment,
	identity types.Identity,
	tier types.CacheTier,
	tierName, key string,
	source types.Source,
) (types.Resolution, bool) {
	variant, hit, err := tier.Get(ctx, key)
	if err != nil {
		// A broken tier degrades to a miss.
		r.logger.Warn("cache tier lookup failed", "tier", tierName, "experiment", exp.ID, "error", err)
		r.metrics.RecordCacheLookup(tierName, false)

		return types.Resolution{}, false
	}
	r.metrics.RecordCacheLookup(tierName, hit)
	if !hit {
		return types.Resolution{}, false
	}

	adopted, adoptedSource := r.writeThrough(ctx, exp, identity, variant, source)
	r.mirror(ctx, exp.ID, adopted)

	return types.Resolution{Variant: adopted, Source: adoptedSource}, true
}

// writeThrough persists a cache-sourced variant for an identified visitor
// under the read-then-write rule: only write when no record exists yet.
//
// When the backend already holds a different variant for this identity, the
// backend record wins; the cached value is replaced rather than pushed.
// Write-through failures are logged, never propagated: the visitor already
// has a consistent local variant to see.
func (r *Resolver) writeThrough(
	ctx context.Context,
	exp *types.Experiment,
	identity types.Identity,
	variant string,
	source types.Source,
) (string, types.Source) {
	if !identity.Present() || r.persistence == nil {
		return variant, source
	}

	record, err := r.persistence.ReadAssignment(ctx, exp.ID, identity)
	if err != nil {
		r.logger.Warn("write-through read failed", "experiment", exp.ID, "error", err)
		return variant, source
	}

	if record == nil {
		if err := r.persistence.WriteAssignment(ctx, exp.ID, identity, variant); err != nil {
			r.logger.Warn("write-through write failed", "experiment", exp.ID, "error", err)
		}

		return variant, source
	}

	if record.Variation != variant {
		r.logger.Info("backend assignment differs from cached variant, adopting backend record",
			"experiment", exp.ID, "cached", variant, "backend", record.Variation)

		return record.Variation, types.SourceBackend
	}

	return variant, source
}

func (r *Resolver) sample(exp *types.Experiment) string {
	variant := r.sampler.Sample(exp.Variants)
	r.metrics.RecordSampleDraw(exp.ID, variant)
	r.logger.Debug("sampled fresh variant", "experiment", exp.ID, "variant", variant)

	return variant
}

// mirror writes the adopted variant into both cache tiers. Tier failures are
// logged and ignored; redundancy, not durability, is the point of the tiers.
func (r *Resolver) mirror(ctx context.Context, experimentID, variant string) {
	if r.cookie != nil {
		if err := r.cookie.Set(ctx, experimentID, variant, r.cookieTTL); err != nil {
			r.logger.Warn("cookie tier write failed", "experiment", experimentID, "error", err)
		}
	}
	if r.durable != nil {
		if err := r.durable.Set(ctx, durableKeyPrefix+experimentID, variant, 0); err != nil {
			r.logger.Warn("durable tier write failed", "experiment", experimentID, "error", err)
		}
	}
}

func (r *Resolver) finish(res types.Resolution, start time.Time) types.Resolution {
	r.metrics.RecordResolution(res.Source, time.Since(start).Seconds())
	return res
}
