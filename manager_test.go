package abtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DenisMSouza/abtest-sub000/types"
)

func newTestManager(t *testing.T, p types.PersistenceClient, opts ...Option) *Manager {
	t.Helper()

	cfg := TestConfig()
	all := append([]Option{WithPersistence(p)}, opts...)
	m, err := NewManager(&cfg, twoVariantExperiment(), all...)
	require.NoError(t, err)

	return m
}

func TestManager_ResolveLifecycle(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	m := newTestManager(t, p, WithIdentity(types.UserIdentity("user-42")))

	require.Equal(t, types.StateInit, m.State())
	require.Empty(t, m.Variant())

	res, err := m.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, types.StateResolved, m.State())
	require.Equal(t, res, m.Current())
	require.Equal(t, res.Variant, m.Variant())
	require.NoError(t, m.Err())
	require.Equal(t, 1, p.assignmentCount())
}

func TestManager_RequiresExperiment(t *testing.T) {
	cfg := TestConfig()
	m, err := NewManager(&cfg, nil)
	require.NoError(t, err)

	_, err = m.Resolve(context.Background())
	require.ErrorIs(t, err, ErrExperimentRequired)
	require.Equal(t, types.StateInit, m.State())
}

func TestManager_FallbackOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	p.failReads = ErrNetwork
	m := newTestManager(t, p, WithIdentity(types.UserIdentity("user-42")))

	res, err := m.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "control", res.Variant)
	require.Equal(t, types.SourceFallback, res.Source)
	require.Equal(t, types.StateResolved, m.State())

	// The underlying failure stays inspectable.
	require.ErrorIs(t, m.Err(), ErrNetwork)
}

func TestManager_NoFallbackSurfacesError(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	p.failReads = ErrNetwork

	cfg := TestConfig()
	cfg.NoFallback = true
	cfg.FallbackVariant = ""
	m, err := NewManager(&cfg, twoVariantExperiment(),
		WithPersistence(p), WithIdentity(types.UserIdentity("user-42")))
	require.NoError(t, err)

	_, err = m.Resolve(ctx)
	require.ErrorIs(t, err, ErrNetwork)
	require.Equal(t, types.StateErrored, m.State())
	require.Empty(t, m.Variant())
}

func TestManager_SetIdentityTriggersMigration(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	m := newTestManager(t, p)

	// Anonymous first pass: client-only.
	anon, err := m.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, p.assignmentCount())

	// Login: the machine re-resolves and persists the cached variant.
	require.NoError(t, m.SetIdentity(ctx, types.UserIdentity("user-42")))
	require.Equal(t, types.StateResolved, m.State())
	require.Equal(t, anon.Variant, m.Variant())
	require.Equal(t, 1, p.assignmentCount())
}

func TestManager_SetIdentityBeforeResolveDoesNotResolve(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	m := newTestManager(t, p)

	require.NoError(t, m.SetIdentity(ctx, types.UserIdentity("user-42")))
	require.Equal(t, types.StateInit, m.State())
	require.Equal(t, 0, p.reads)
}

func TestManager_SetIdentityPresentToPresentDoesNotResolve(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	m := newTestManager(t, p, WithIdentity(types.UserIdentity("user-42")))

	_, err := m.Resolve(ctx)
	require.NoError(t, err)
	readsAfterResolve := p.reads

	// Only the absent-to-present transition re-resolves.
	require.NoError(t, m.SetIdentity(ctx, types.UserIdentity("user-43")))
	require.Equal(t, readsAfterResolve, p.reads)
	require.Equal(t, "user-43", m.Identity().UserID)
}

func TestManager_SetExperimentResolvesNewExperiment(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	m := newTestManager(t, p, WithIdentity(types.UserIdentity("user-42")))

	_, err := m.Resolve(ctx)
	require.NoError(t, err)

	next := &types.Experiment{
		ID:       "pricing-page",
		Variants: []types.Variant{{Name: "monthly", Weight: 1, IsBaseline: true}},
	}
	require.NoError(t, m.SetExperiment(ctx, next))
	require.Equal(t, types.StateResolved, m.State())
	require.Equal(t, "monthly", m.Variant())
	require.Equal(t, 2, p.assignmentCount())
}

func TestManager_SetExperimentNilTearsDown(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newFakePersistence(), WithIdentity(types.UserIdentity("user-42")))

	_, err := m.Resolve(ctx)
	require.NoError(t, err)

	require.NoError(t, m.SetExperiment(ctx, nil))
	require.Equal(t, types.StateInit, m.State())
	require.Empty(t, m.Variant())

	_, err = m.Resolve(ctx)
	require.ErrorIs(t, err, ErrExperimentRequired)
}

func TestManager_ResetDiscardsState(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newFakePersistence(), WithIdentity(types.UserIdentity("user-42")))

	_, err := m.Resolve(ctx)
	require.NoError(t, err)

	m.Reset(ctx)
	require.Equal(t, types.StateInit, m.State())
	require.Empty(t, m.Variant())
	require.NoError(t, m.Err())

	// The experiment survives a reset; resolution works again.
	res, err := m.Resolve(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, res.Variant)
}

// slowPersistence delays reads so a reset can overtake an in-flight pass.
type slowPersistence struct {
	*fakePersistence
	delay   time.Duration
	release chan struct{}
}

func (s *slowPersistence) ReadAssignment(ctx context.Context, experimentID string, identity types.Identity) (*types.Assignment, error) {
	if s.release != nil {
		<-s.release
	} else {
		time.Sleep(s.delay)
	}

	return s.fakePersistence.ReadAssignment(ctx, experimentID, identity)
}

func TestManager_StaleResolutionDiscarded(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	p := &slowPersistence{fakePersistence: newFakePersistence(), release: release}
	m := newTestManager(t, p, WithIdentity(types.UserIdentity("user-42")))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.Resolve(ctx)
	}()

	// Reset while the pass is blocked inside the backend read, then let the
	// pass complete. Its result must be discarded.
	for m.State() != types.StateLoading {
		time.Sleep(time.Millisecond)
	}
	m.Reset(ctx)
	close(release)
	wg.Wait()

	require.Equal(t, types.StateInit, m.State())
	require.Empty(t, m.Variant())
}

func TestManager_TrackSuccess(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	m := newTestManager(t, p, WithIdentity(types.UserIdentity("user-42")))

	value := 42.5
	require.NoError(t, m.TrackSuccess(ctx, types.SuccessEvent{
		UserID: "user-42",
		Event:  "purchase",
		Value:  &value,
	}))
	require.Len(t, p.events, 1)
	require.Equal(t, "purchase", p.events[0].Event)
}

func TestManager_TrackSuccessWithoutBackend(t *testing.T) {
	cfg := TestConfig()
	m, err := NewManager(&cfg, twoVariantExperiment())
	require.NoError(t, err)

	err = m.TrackSuccess(context.Background(), types.SuccessEvent{Event: "purchase"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_Hooks(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var resolved []types.Resolution
	var transitions []string

	hooks := &types.Hooks{
		OnResolved: func(_ context.Context, _ string, res types.Resolution) error {
			mu.Lock()
			resolved = append(resolved, res)
			mu.Unlock()

			return nil
		},
		OnStateChanged: func(_ context.Context, from, to types.State) error {
			mu.Lock()
			transitions = append(transitions, from.String()+">"+to.String())
			mu.Unlock()

			return nil
		},
	}

	m := newTestManager(t, newFakePersistence(),
		WithIdentity(types.UserIdentity("user-42")), WithHooks(hooks))

	res, err := m.Resolve(ctx)
	require.NoError(t, err)

	// Hooks run asynchronously.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(resolved) == 1 && len(transitions) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, res, resolved[0])
	require.Contains(t, transitions, "Init>Loading")
	require.Contains(t, transitions, "Loading>Resolved")
}

func TestManager_InactivityOverrideNeverContactsBackend(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()

	cfg := TestConfig()
	exp := twoVariantExperiment()
	exp.StartDate = time.Now().Add(time.Hour).Format(time.RFC3339)

	m, err := NewManager(&cfg, exp,
		WithPersistence(p), WithIdentity(types.UserIdentity("user-42")))
	require.NoError(t, err)

	res, err := m.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", res.Variant)
	require.Equal(t, types.SourceGenerated, res.Source)
	require.Equal(t, 0, p.reads)
	require.Equal(t, 0, p.writes)
}
