package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/DenisMSouza/abtest-sub000/cache"
	abtesttest "github.com/DenisMSouza/abtest-sub000/testing"
)

func TestNATSKV_GetSetDelete(t *testing.T) {
	_, nc := abtesttest.StartEmbeddedNATS(t)
	kv := abtesttest.CreateJetStreamKV(t, nc, "assignments")
	tier := cache.NewNATSKVFromBucket(kv)
	ctx := context.Background()

	_, ok, err := tier.Get(ctx, "exp-checkout-button")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, tier.Set(ctx, "exp-checkout-button", "B", 0))

	variant, ok, err := tier.Get(ctx, "exp-checkout-button")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "B", variant)

	require.NoError(t, tier.Delete(ctx, "exp-checkout-button"))
	require.NoError(t, tier.Delete(ctx, "exp-checkout-button"))

	_, ok, err = tier.Get(ctx, "exp-checkout-button")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNATSKV_SurvivesReconnect(t *testing.T) {
	_, nc := abtesttest.StartEmbeddedNATS(t)
	kv := abtesttest.CreateJetStreamKV(t, nc, "assignments")
	ctx := context.Background()

	require.NoError(t, cache.NewNATSKVFromBucket(kv).Set(ctx, "exp-a", "control", 0))

	// A second tier over the same bucket sees the write; assignments are
	// shared state, not per-process.
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	kv2, err := js.KeyValue(ctx, "assignments")
	require.NoError(t, err)

	variant, ok, err := cache.NewNATSKVFromBucket(kv2).Get(ctx, "exp-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "control", variant)
}

func TestNewNATSKV_CreatesBucket(t *testing.T) {
	_, nc := abtesttest.StartEmbeddedNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	tier, err := cache.NewNATSKV(ctx, js, "", 0)
	require.NoError(t, err)

	require.NoError(t, tier.Set(ctx, "exp-a", "B", 0))

	// Creating again opens the existing bucket rather than failing.
	tier2, err := cache.NewNATSKV(ctx, js, "", 0)
	require.NoError(t, err)

	variant, ok, err := tier2.Get(ctx, "exp-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "B", variant)
}
