package fetchcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore("test-redis", client, "scribe:fc:"), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1"), time.Minute))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	_, err = store.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1"), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_DeleteByPrefix(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "u-1|all|1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "u-1|all|2", []byte("b"), time.Minute))
	require.NoError(t, store.Set(ctx, "u-2|all|1", []byte("c"), time.Minute))

	require.NoError(t, store.DeleteByPrefix(ctx, "u-1|"))

	_, err := store.Get(ctx, "u-1|all|1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, "u-2|all|1")
	assert.NoError(t, err)
}

func TestRedisStore_ClearScopedToPrefix(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1"), time.Minute))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.True(t, mr.Exists("unrelated"), "clear must stay inside the key prefix")
}
