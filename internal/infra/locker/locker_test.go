package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisLocker) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisLockerWithClient(client, "test:")
}

func TestRedisLocker_Exclusive(t *testing.T) {
	mr, l := setupMiniRedis(t)
	ctx := context.Background()

	lock, err := l.Acquire(ctx, PaymentKey(7), time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:booking:7:payment"))

	_, err = l.Acquire(ctx, PaymentKey(7), time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	// другое бронирование не блокируется
	other, err := l.Acquire(ctx, PaymentKey(8), time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists("test:booking:7:payment"))

	again, err := l.Acquire(ctx, PaymentKey(7), time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestRedisLocker_ExpiredLockIsNotStolenOnRelease(t *testing.T) {
	mr, l := setupMiniRedis(t)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, PaymentKey(1), time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := l.Acquire(ctx, PaymentKey(1), time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	assert.True(t, mr.Exists("test:booking:1:payment"), "stale release must not drop the new owner's lock")

	require.NoError(t, fresh.Release(ctx))
	assert.False(t, mr.Exists("test:booking:1:payment"))
}

func TestRedisLocker_BackendDown(t *testing.T) {
	mr, l := setupMiniRedis(t)
	mr.Close()

	_, err := l.Acquire(context.Background(), PaymentKey(1), time.Minute)
	assert.ErrorIs(t, err, ErrLockBackend)
}

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	lock, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	now = now.Add(2 * time.Minute)
	fresh, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// освобождение истёкшей блокировки не снимает новую
	require.NoError(t, lock.Release(ctx))
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, fresh.Release(ctx))
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.NoError(t, err)
}
