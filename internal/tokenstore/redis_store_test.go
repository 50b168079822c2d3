package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ""), mr
}

func TestRedisStore_SaveAndTake(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	info := sampleInfo(now, time.Minute)

	require.NoError(t, store.Save(ctx, "tok", info))
	assert.True(t, mr.Exists(defaultRedisPrefix+"tok"))
	assert.Equal(t, time.Minute, mr.TTL(defaultRedisPrefix+"tok"))

	got, ok, err := store.Take(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, info.ShiftName, got.ShiftName)
	assert.True(t, info.ExpiresAt.Equal(got.ExpiresAt))
	require.NoError(t, store.Release(ctx, "tok"))

	_, ok, err = store.Take(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_KeysExpireWithTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "tok", sampleInfo(now, time.Minute)))
	mr.FastForward(61 * time.Second)

	_, ok, err := store.Take(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_RestoreUsesRemainingTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	info := sampleInfo(now, time.Minute)

	require.NoError(t, store.Restore(ctx, "tok", info, now.Add(45*time.Second)))
	assert.Equal(t, 15*time.Second, mr.TTL(defaultRedisPrefix+"tok"))

	require.NoError(t, store.Restore(ctx, "gone", info, now.Add(2*time.Minute)))
	assert.False(t, mr.Exists(defaultRedisPrefix+"gone"))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRedisStore_TakeOfMissingTokenLeavesNoLock(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	_, ok, err := store.Take(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(store.lockKey("nope")))
}

func TestRedisStore_HeldTokenWaitsForRestore(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	info := sampleInfo(now, time.Minute)
	require.NoError(t, store.Save(ctx, "tok", info))

	_, ok, err := store.Take(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(store.lockKey("tok")))

	short, cancel := context.WithTimeout(ctx, 60*time.Millisecond)
	defer cancel()
	_, ok, err = store.Take(short, "tok")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	waiter := make(chan bool, 1)
	go func() {
		_, ok, _ := store.Take(ctx, "tok")
		waiter <- ok
	}()
	require.NoError(t, store.Restore(ctx, "tok", info, now.Add(10*time.Second)))

	select {
	case ok := <-waiter:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("waiting take never acquired the restored token")
	}
}
