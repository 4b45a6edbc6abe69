package fetchcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore("test", 100)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1"), 0))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	_, err = store.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore("test", 100)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1"), 20*time.Millisecond))

	_, err := store.Get(ctx, "k1")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_OverwriteResetsExpiry(t *testing.T) {
	store := NewMemoryStore("test", 100)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("old"), 20*time.Millisecond))
	require.NoError(t, store.Set(ctx, "k1", []byte("new"), time.Minute))

	// The first entry's timer must not evict the fresh value.
	time.Sleep(50 * time.Millisecond)
	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryStore_DeleteByPrefix(t *testing.T) {
	store := NewMemoryStore("test", 100)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "u-1|all|1", []byte("a"), 0))
	require.NoError(t, store.Set(ctx, "u-1|all|2", []byte("b"), 0))
	require.NoError(t, store.Set(ctx, "u-2|all|1", []byte("c"), 0))

	require.NoError(t, store.DeleteByPrefix(ctx, "u-1|"))

	_, err := store.Get(ctx, "u-1|all|1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, "u-1|all|2")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, "u-2|all|1")
	assert.NoError(t, err, "other subjects stay cached")
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore("test", 100)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, store.Clear(ctx))
	assert.Zero(t, store.Size())
}

func TestMemoryStore_EvictsWhenFull(t *testing.T) {
	store := NewMemoryStore("test", 3)
	defer store.Close()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Set(ctx, k, []byte(k), 0))
	}

	assert.LessOrEqual(t, store.Size(), 3)
	got, err := store.Get(ctx, "d")
	require.NoError(t, err, "the newest entry survives eviction")
	assert.Equal(t, []byte("d"), got)
}
