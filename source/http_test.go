package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DenisMSouza/abtest-sub000/client"
	"github.com/DenisMSouza/abtest-sub000/types"
)

func newExperimentServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/experiments/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(types.Experiment{
			ID:       "checkout-button",
			Variants: []types.Variant{{Name: "A", Weight: 1, IsBaseline: true}},
		})
	}))
}

func TestHTTP_Memoizes(t *testing.T) {
	var hits atomic.Int64
	srv := newExperimentServer(t, &hits)
	defer srv.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h := NewHTTP(client.New(srv.URL), WithHTTPClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		exp, err := h.GetExperiment(ctx, "checkout-button")
		require.NoError(t, err)
		require.Equal(t, "checkout-button", exp.ID)
	}
	require.Equal(t, int64(1), hits.Load())

	// Past the TTL the backend is consulted again.
	now = now.Add(DefaultMemoizeTTL + time.Second)
	_, err := h.GetExperiment(ctx, "checkout-button")
	require.NoError(t, err)
	require.Equal(t, int64(2), hits.Load())
}

func TestHTTP_ZeroTTLDisablesMemoization(t *testing.T) {
	var hits atomic.Int64
	srv := newExperimentServer(t, &hits)
	defer srv.Close()

	h := NewHTTP(client.New(srv.URL), WithMemoizeTTL(0))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.GetExperiment(ctx, "checkout-button")
		require.NoError(t, err)
	}
	require.Equal(t, int64(3), hits.Load())
}

func TestHTTP_NotFoundIsNotMemoized(t *testing.T) {
	var hits atomic.Int64
	srv := newExperimentServer(t, &hits)
	defer srv.Close()

	h := NewHTTP(client.New(srv.URL))
	ctx := context.Background()

	_, err := h.GetExperiment(ctx, "missing")
	require.ErrorIs(t, err, types.ErrExperimentNotFound)

	_, err = h.GetExperiment(ctx, "missing")
	require.ErrorIs(t, err, types.ErrExperimentNotFound)
	require.Equal(t, int64(2), hits.Load())
}

func TestHTTP_Invalidate(t *testing.T) {
	var hits atomic.Int64
	srv := newExperimentServer(t, &hits)
	defer srv.Close()

	h := NewHTTP(client.New(srv.URL))
	ctx := context.Background()

	_, err := h.GetExperiment(ctx, "checkout-button")
	require.NoError(t, err)

	h.Invalidate("checkout-button")

	_, err = h.GetExperiment(ctx, "checkout-button")
	require.NoError(t, err)
	require.Equal(t, int64(2), hits.Load())
}
