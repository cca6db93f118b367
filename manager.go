package abtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/DenisMSouza/abtest-sub000/internal/hooks"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// Manager drives the assignment lifecycle for one experiment slot.
//
// It wraps a Resolver with a small state machine:
//
//	Init → Loading → {Resolved, Errored}
//
// Resolution is caller-driven: Resolve runs one pass synchronously and
// updates the machine. The machine re-resolves automatically when the
// experiment changes or when the visitor identity transitions from absent to
// present (the login case), so an anonymous cache-only assignment gets
// migrated into the backend record under the now-known identity.
//
// Concurrent Resolve calls are permitted: each pass is stamped with an epoch
// and a pass whose epoch is stale by completion time is discarded rather than
// applied (last-transition-wins). Results of discarded passes never overwrite
// newer state.
//
// When resolution fails and a fallback variant is configured, the failure is
// absorbed: the machine lands in Resolved serving the fallback with source
// SourceFallback, and the underlying error remains inspectable via Err.
type Manager struct {
	cfg      Config
	resolver *Resolver
	logger   types.Logger
	metrics  types.MetricsCollector
	hooks    *types.Hooks

	persistence types.PersistenceClient

	epoch atomic.Uint64

	mu         sync.Mutex
	state      types.State
	experiment *types.Experiment
	identity   types.Identity
	current    types.Resolution
	lastErr    error
}

// NewManager creates an assignment manager for one experiment.
//
// Parameters:
//   - cfg: Engine configuration; missing values are defaulted in place
//   - exp: Experiment definition, may be nil and supplied later via SetExperiment
//   - opts: Optional dependencies
//
// Returns:
//   - *Manager: Initialized manager in state Init
//   - error: Configuration validation failure
//
// Example:
//
//	cfg := abtest.DefaultConfig()
//	cfg.BaseURL = "http://abtest:8080"
//	mgr, err := abtest.NewManager(&cfg, &exp, abtest.WithIdentity(abtest.UserIdentity("user-42")))
func NewManager(cfg *Config, exp *types.Experiment, opts ...Option) (*Manager, error) {
	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	resolver := newResolver(cfg, o)

	hooksInstance := o.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	m := &Manager{
		cfg:         *cfg,
		resolver:    resolver,
		logger:      resolver.logger,
		metrics:     resolver.metrics,
		hooks:       hooksInstance,
		persistence: resolver.persistence,
		state:       types.StateInit,
		experiment:  exp,
		identity:    o.identity,
	}

	return m, nil
}

// Resolve runs one resolution pass and advances the state machine.
//
// The pass runs synchronously on the caller's goroutine; suspension happens
// only inside backend calls. On failure with a configured fallback, the
// fallback variant is substituted and no error is returned.
//
// Parameters:
//   - ctx: Context for cancellation and backend deadlines
//
// Returns:
//   - types.Resolution: The adopted variant and source
//   - error: Terminal resolution failure (only when NoFallback is set, or
//     when no experiment has been supplied)
func (m *Manager) Resolve(ctx context.Context) (types.Resolution, error) {
	epoch := m.epoch.Add(1)

	m.mu.Lock()
	exp := m.experiment
	identity := m.identity
	if exp == nil {
		m.mu.Unlock()
		return types.Resolution{}, ErrExperimentRequired
	}
	m.transitionLocked(ctx, types.StateLoading)
	m.mu.Unlock()

	res, err := m.resolver.Resolve(ctx, exp, identity)

	m.mu.Lock()
	defer m.mu.Unlock()

	// A newer pass or a reset superseded this one; its result is discarded.
	if m.epoch.Load() != epoch {
		m.metrics.RecordStaleResolution()
		m.logger.Debug("discarding stale resolution", "experiment", exp.ID, "epoch", epoch)

		return m.current, m.lastErr
	}

	if err != nil {
		return m.completeErrorLocked(ctx, exp, err)
	}

	m.current = res
	m.lastErr = nil
	m.transitionLocked(ctx, types.StateResolved)
	m.fireOnResolved(ctx, exp.ID, res)

	return res, nil
}

// completeErrorLocked lands a failed pass: fallback substitution when
// configured, terminal Errored state otherwise. Caller holds m.mu.
func (m *Manager) completeErrorLocked(ctx context.Context, exp *types.Experiment, err error) (types.Resolution, error) {
	m.lastErr = err

	if !m.cfg.NoFallback {
		m.logger.Warn("resolution failed, serving fallback variant",
			"experiment", exp.ID, "fallback", m.cfg.FallbackVariant, "error", err)

		m.current = types.Resolution{Variant: m.cfg.FallbackVariant, Source: types.SourceFallback}
		m.metrics.RecordFallback()
		m.transitionLocked(ctx, types.StateResolved)
		m.fireOnResolved(ctx, exp.ID, m.current)

		return m.current, nil
	}

	m.current = types.Resolution{}
	m.transitionLocked(ctx, types.StateErrored)

	if m.hooks.OnError != nil {
		hook := m.hooks.OnError
		go func() {
			if hookErr := hook(context.WithoutCancel(ctx), err); hookErr != nil {
				m.logger.Warn("error hook failed", "error", hookErr)
			}
		}()
	}

	return types.Resolution{}, err
}

// SetIdentity replaces the visitor identity.
//
// When the identity transitions from absent to present after a resolution
// has already happened, the machine immediately re-resolves so the locally
// cached assignment is persisted under the new identity.
//
// Parameters:
//   - ctx: Context for the re-resolution, if one is triggered
//   - identity: New visitor identity
//
// Returns:
//   - error: Terminal failure of the triggered re-resolution
func (m *Manager) SetIdentity(ctx context.Context, identity types.Identity) error {
	m.mu.Lock()
	wasPresent := m.identity.Present()
	m.identity = identity
	needsResolve := !wasPresent && identity.Present() && m.state != types.StateInit
	m.mu.Unlock()

	if !needsResolve {
		return nil
	}

	_, err := m.Resolve(ctx)

	return err
}

// SetExperiment replaces the experiment definition.
//
// The machine resets to Init, discarding any in-flight pass, then resolves
// the new experiment when one is supplied. A nil experiment is a pure
// teardown.
//
// Parameters:
//   - ctx: Context for the re-resolution
//   - exp: New experiment definition, nil to tear down
//
// Returns:
//   - error: Terminal failure of the triggered re-resolution
func (m *Manager) SetExperiment(ctx context.Context, exp *types.Experiment) error {
	m.reset(ctx, exp)

	if exp == nil {
		return nil
	}

	_, err := m.Resolve(ctx)

	return err
}

// Reset tears the machine down to Init, keeping the experiment and identity.
// Any in-flight resolution result is discarded on arrival.
func (m *Manager) Reset(ctx context.Context) {
	m.mu.Lock()
	exp := m.experiment
	m.mu.Unlock()

	m.reset(ctx, exp)
}

func (m *Manager) reset(ctx context.Context, exp *types.Experiment) {
	m.epoch.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.experiment = exp
	m.current = types.Resolution{}
	m.lastErr = nil
	m.transitionLocked(ctx, types.StateInit)
}

// TrackSuccess reports a success/conversion event for the current experiment.
//
// Parameters:
//   - ctx: Context for the backend call
//   - event: Success event payload
//
// Returns:
//   - error: Missing experiment or backend, or a failure wrapping ErrNetwork
func (m *Manager) TrackSuccess(ctx context.Context, event types.SuccessEvent) error {
	m.mu.Lock()
	exp := m.experiment
	m.mu.Unlock()

	if exp == nil {
		return ErrExperimentRequired
	}
	if m.persistence == nil {
		return fmt.Errorf("success tracking requires a backend: %w", ErrInvalidConfig)
	}

	return m.persistence.TrackSuccess(ctx, exp.ID, event)
}

// State returns the machine's current state.
func (m *Manager) State() types.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Current returns the latest resolution. Zero value until the first
// successful pass.
func (m *Manager) Current() types.Resolution {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

// Variant returns the currently served variant name, empty before the first
// successful pass.
func (m *Manager) Variant() string {
	return m.Current().Variant
}

// Err returns the most recent resolution error. Non-nil while serving a
// fallback variant, nil after a clean pass.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastErr
}

// Identity returns the current visitor identity.
func (m *Manager) Identity() types.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.identity
}

// transitionLocked advances the state machine and triggers hooks. Caller
// holds m.mu.
func (m *Manager) transitionLocked(ctx context.Context, to types.State) {
	from := m.state
	if from == to {
		return
	}

	if !isValidTransition(from, to) {
		m.logger.Error("invalid state transition attempted",
			"from", from.String(),
			"to", to.String(),
		)

		return
	}

	m.state = to
	m.logger.Debug("state transition", "from", from.String(), "to", to.String())
	m.metrics.RecordStateTransition(from, to)

	if m.hooks.OnStateChanged != nil {
		hook := m.hooks.OnStateChanged
		// Run hook in background to avoid blocking the state machine.
		go func() {
			if err := hook(context.WithoutCancel(ctx), from, to); err != nil {
				m.logger.Warn("state change hook error", "from", from, "to", to, "error", err)
			}
		}()
	}
}

func (m *Manager) fireOnResolved(ctx context.Context, experimentID string, res types.Resolution) {
	if m.hooks.OnResolved == nil {
		return
	}

	hook := m.hooks.OnResolved
	go func() {
		if err := hook(context.WithoutCancel(ctx), experimentID, res); err != nil {
			m.logger.Warn("resolved hook error", "experiment", experimentID, "error", err)
		}
	}()
}

// isValidTransition validates that a state transition is allowed.
//
// Returns:
//   - bool: true if transition is valid, false otherwise
func isValidTransition(from, to types.State) bool {
	validTransitions := map[types.State][]types.State{
		types.StateInit:     {types.StateLoading},
		types.StateLoading:  {types.StateResolved, types.StateErrored, types.StateLoading, types.StateInit},
		types.StateResolved: {types.StateLoading, types.StateInit},
		types.StateErrored:  {types.StateLoading, types.StateInit},
	}

	for _, allowed := range validTransitions[from] {
		if to == allowed {
			return true
		}
	}

	return false
}
