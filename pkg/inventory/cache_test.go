package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/stockroom/pkg/observability"
)

func newCachedStore(t *testing.T, redisClient *redis.Client) (*CachedStore, *Store) {
	t.Helper()
	store, _ := newTestStore(t)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	cached, err := NewCachedStore(store, 16, redisClient, time.Minute, logger, nil)
	require.NoError(t, err)
	return cached, store
}

func TestCachedGetReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cached, store := newCachedStore(t, client)
	ctx := context.Background()

	item := createWidget(t, store)

	got, err := cached.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.SKU, got.SKU)

	// the read primed both cache layers
	assert.True(t, mr.Exists(redisKey(item.ID)))
	_, ok := cached.l1.Get(item.ID)
	assert.True(t, ok)

	// second read comes from L1
	got, err = cached.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}

func TestCachedUpdateReplacesValue(t *testing.T) {
	cached, store := newCachedStore(t, nil)
	ctx := context.Background()

	item := createWidget(t, store)
	_, err := cached.Get(ctx, item.ID)
	require.NoError(t, err)

	qty := 9
	_, err = cached.Update(ctx, item.ID, UpdateItemInput{Quantity: &qty}, "manager1")
	require.NoError(t, err)

	got, err := cached.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
}

func TestCachedDeleteEvicts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cached, store := newCachedStore(t, client)
	ctx := context.Background()

	item := createWidget(t, store)
	_, err := cached.Get(ctx, item.ID)
	require.NoError(t, err)

	require.NoError(t, cached.Delete(ctx, item.ID, "admin1"))

	assert.False(t, mr.Exists(redisKey(item.ID)))
	_, ok := cached.l1.Get(item.ID)
	assert.False(t, ok)

	_, err = cached.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedGetRedisDownFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	cached, store := newCachedStore(t, client)
	item := createWidget(t, store)

	got, err := cached.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}
