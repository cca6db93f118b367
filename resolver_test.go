package abtest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DenisMSouza/abtest-sub000/cache"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// fakePersistence is an in-memory PersistenceClient enforcing
// first-write-wins per (experiment, identity), like the real backend.
type fakePersistence struct {
	mu          sync.Mutex
	assignments map[string]types.Assignment
	events      []types.SuccessEvent
	reads       int
	writes      int
	failReads   error
	failWrites  error
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{assignments: make(map[string]types.Assignment)}
}

func storeKey(experimentID string, identity types.Identity) string {
	return experimentID + "|" + identity.Key()
}

func (f *fakePersistence) ReadAssignment(_ context.Context, experimentID string, identity types.Identity) (*types.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads++
	if f.failReads != nil {
		return nil, f.failReads
	}

	a, ok := f.assignments[storeKey(experimentID, identity)]
	if !ok {
		return nil, nil
	}

	return &a, nil
}

func (f *fakePersistence) WriteAssignment(_ context.Context, experimentID string, identity types.Identity, variant string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++
	if f.failWrites != nil {
		return f.failWrites
	}

	key := storeKey(experimentID, identity)
	if _, exists := f.assignments[key]; exists {
		// Duplicate writes are acknowledged, never overwritten.
		return nil
	}
	f.assignments[key] = types.Assignment{
		Experiment: experimentID,
		Variation:  variant,
		Timestamp:  time.Now(),
	}

	return nil
}

func (f *fakePersistence) TrackSuccess(_ context.Context, _ string, event types.SuccessEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)

	return nil
}

func (f *fakePersistence) assignmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.assignments)
}

func twoVariantExperiment() *types.Experiment {
	return &types.Experiment{
		ID:   "checkout-button",
		Name: "Checkout button color",
		Variants: []types.Variant{
			{Name: "A", Weight: 0.5, IsBaseline: true},
			{Name: "B", Weight: 0.5},
		},
	}
}

func newTestResolver(t *testing.T, p types.PersistenceClient, opts ...Option) *Resolver {
	t.Helper()

	cfg := TestConfig()
	all := append([]Option{WithPersistence(p), WithDurableTier(cache.NewMemory())}, opts...)
	r, err := NewResolver(&cfg, all...)
	require.NoError(t, err)

	return r
}

func TestResolver_SamplesAndPersists(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	r := newTestResolver(t, p, WithRand(func() float64 { return 0.99 }))

	res, err := r.Resolve(ctx, twoVariantExperiment(), types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, "B", res.Variant)
	require.Equal(t, types.SourceGenerated, res.Source)
	require.Equal(t, 1, p.assignmentCount())
}

func TestResolver_Idempotence(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	r := newTestResolver(t, p)
	exp := twoVariantExperiment()
	identity := types.UserIdentity("user-42")

	first, err := r.Resolve(ctx, exp, identity)
	require.NoError(t, err)

	// The second pass adopts the cookie tier; the variant never changes.
	second, err := r.Resolve(ctx, exp, identity)
	require.NoError(t, err)
	require.Equal(t, first.Variant, second.Variant)
	require.Equal(t, types.SourceCookie, second.Source)
	require.Equal(t, 1, p.assignmentCount())
}

func TestResolver_DurableTierHit(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	durable := cache.NewMemory()
	r := newTestResolver(t, p, WithDurableTier(durable))
	exp := twoVariantExperiment()

	require.NoError(t, durable.Set(ctx, "exp-checkout-button", "B", 0))

	res, err := r.Resolve(ctx, exp, types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, "B", res.Variant)
	require.Equal(t, types.SourceLocalCache, res.Source)

	// The durable hit was written through to the backend and mirrored into
	// the cookie tier.
	require.Equal(t, 1, p.assignmentCount())

	again, err := r.Resolve(ctx, exp, types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, types.SourceCookie, again.Source)
}

func TestResolver_BackendRecordAdopted(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	require.NoError(t, p.WriteAssignment(ctx, "checkout-button", types.UserIdentity("user-42"), "B"))

	// Sampler would pick A; the persisted record wins.
	r := newTestResolver(t, p, WithRand(func() float64 { return 0.0 }))

	res, err := r.Resolve(ctx, twoVariantExperiment(), types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, "B", res.Variant)
	require.Equal(t, types.SourceBackend, res.Source)
}

func TestResolver_BackendWinsOverCachedVariant(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	// Another device already holds an assignment for this user.
	require.NoError(t, p.WriteAssignment(ctx, "checkout-button", types.UserIdentity("user-42"), "B"))

	cookie := cache.NewMemory()
	require.NoError(t, cookie.Set(ctx, "checkout-button", "A", 0))

	r := newTestResolver(t, p, WithCookieTier(cookie))

	res, err := r.Resolve(ctx, twoVariantExperiment(), types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, "B", res.Variant)
	require.Equal(t, types.SourceBackend, res.Source)

	// The caches were corrected to the backend's record.
	cached, ok, err := cookie.Get(ctx, "checkout-button")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "B", cached)
}

func TestResolver_InactivityOverride(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	r := newTestResolver(t, p)

	exp := twoVariantExperiment()
	exp.StartDate = time.Now().Add(time.Hour).Format(time.RFC3339)

	res, err := r.Resolve(ctx, exp, types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, "A", res.Variant)
	require.Equal(t, types.SourceGenerated, res.Source)

	// The backend is never contacted for an inactive experiment.
	require.Equal(t, 0, p.reads)
	require.Equal(t, 0, p.writes)
}

func TestResolver_InactiveNoBaselineUsesFallback(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(t, newFakePersistence())

	exp := &types.Experiment{
		ID:        "exp",
		StartDate: "2999-01-01",
		Variants: []types.Variant{
			{Name: "A", Weight: 0.5},
			{Name: "B", Weight: 0.5},
		},
	}

	res, err := r.Resolve(ctx, exp, types.Identity{})
	require.NoError(t, err)
	require.Equal(t, "control", res.Variant)
	require.Equal(t, types.SourceGenerated, res.Source)
}

func TestResolver_InactiveNoBaselineNoFallback(t *testing.T) {
	ctx := context.Background()
	cfg := TestConfig()
	cfg.NoFallback = true
	cfg.FallbackVariant = ""
	r, err := NewResolver(&cfg)
	require.NoError(t, err)

	exp := &types.Experiment{
		ID:        "exp",
		StartDate: "2999-01-01",
		Variants:  []types.Variant{{Name: "A", Weight: 1}},
	}

	_, err = r.Resolve(ctx, exp, types.Identity{})
	require.ErrorIs(t, err, ErrNoBaseline)
}

func TestResolver_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(t, newFakePersistence())

	_, err := r.Resolve(ctx, nil, types.Identity{})
	require.ErrorIs(t, err, ErrExperimentRequired)

	_, err = r.Resolve(ctx, &types.Experiment{ID: "empty"}, types.Identity{})
	require.ErrorIs(t, err, ErrNoVariants)
}

func TestResolver_AnonymousNeverContactsBackend(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	r := newTestResolver(t, p)

	res, err := r.Resolve(ctx, twoVariantExperiment(), types.Identity{})
	require.NoError(t, err)
	require.Equal(t, types.SourceGenerated, res.Source)
	require.Equal(t, 0, p.reads)
	require.Equal(t, 0, p.writes)

	// Repeat visits stay client-only but consistent.
	again, err := r.Resolve(ctx, twoVariantExperiment(), types.Identity{})
	require.NoError(t, err)
	require.Equal(t, res.Variant, again.Variant)
	require.Equal(t, types.SourceCookie, again.Source)
}

func TestResolver_AnonymousToIdentifiedMigration(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	r := newTestResolver(t, p)
	exp := twoVariantExperiment()

	anon, err := r.Resolve(ctx, exp, types.Identity{})
	require.NoError(t, err)
	require.Equal(t, 0, p.assignmentCount())

	// The visitor logs in; the cached variant is persisted under the new
	// identity, exactly once.
	identified, err := r.Resolve(ctx, exp, types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, anon.Variant, identified.Variant)
	require.Equal(t, types.SourceCookie, identified.Source)
	require.Equal(t, 1, p.assignmentCount())

	record, err := p.ReadAssignment(ctx, exp.ID, types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, anon.Variant, record.Variation)
}

func TestResolver_BackendReadFailurePropagates(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	p.failReads = ErrNetwork
	r := newTestResolver(t, p)

	_, err := r.Resolve(ctx, twoVariantExperiment(), types.UserIdentity("user-42"))
	require.ErrorIs(t, err, ErrNetwork)
}

func TestResolver_WriteThroughFailureDoesNotPropagate(t *testing.T) {
	ctx := context.Background()
	p := newFakePersistence()
	cookie := cache.NewMemory()
	require.NoError(t, cookie.Set(ctx, "checkout-button", "A", 0))

	p.failReads = errors.New("backend down")
	r := newTestResolver(t, p, WithCookieTier(cookie))

	// The cookie hit already answers the question; the failed write-through
	// is only logged.
	res, err := r.Resolve(ctx, twoVariantExperiment(), types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, "A", res.Variant)
	require.Equal(t, types.SourceCookie, res.Source)
}

func TestResolver_NoBackendConfigured(t *testing.T) {
	ctx := context.Background()
	cfg := TestConfig()
	r, err := NewResolver(&cfg, WithRand(func() float64 { return 0.0 }))
	require.NoError(t, err)

	// Identified visitor, but no backend: behaves like the anonymous path.
	res, err := r.Resolve(ctx, twoVariantExperiment(), types.UserIdentity("user-42"))
	require.NoError(t, err)
	require.Equal(t, "A", res.Variant)
	require.Equal(t, types.SourceGenerated, res.Source)
}
