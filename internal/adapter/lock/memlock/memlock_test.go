package memlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/showtime_booking/internal/core/ports"
)

func TestLocker_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	l := New(WithRetryInterval(time.Millisecond))

	first, err := l.TryAcquire(ctx, "seat:A1", 0, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "seat:A1", first.Key())

	_, err = l.TryAcquire(ctx, "seat:A1", 20*time.Millisecond, time.Minute)
	assert.ErrorIs(t, err, ports.ErrLockNotAcquired)

	require.NoError(t, first.Release(ctx))
	require.NoError(t, first.Release(ctx))

	second, err := l.TryAcquire(ctx, "seat:A1", 0, time.Minute)
	require.NoError(t, err)
	held, err := second.Held(ctx)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestLocker_LeaseExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	l := New(WithClock(clock))

	stale, err := l.TryAcquire(ctx, "seat:A1", 0, time.Second)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(2 * time.Second)
	mu.Unlock()

	held, err := stale.Held(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	fresh, err := l.TryAcquire(ctx, "seat:A1", 0, time.Second)
	require.NoError(t, err)

	// the expired owner must not free the new owner's key
	require.NoError(t, stale.Release(ctx))
	held, err = fresh.Held(ctx)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestLocker_WaitsForRelease(t *testing.T) {
	ctx := context.Background()
	l := New(WithRetryInterval(time.Millisecond))

	first, err := l.TryAcquire(ctx, "seat:A1", 0, time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = first.Release(ctx)
	}()

	second, err := l.TryAcquire(ctx, "seat:A1", time.Second, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "seat:A1", second.Key())
}

func TestLocker_ContextCancelled(t *testing.T) {
	l := New(WithRetryInterval(time.Millisecond))

	_, err := l.TryAcquire(context.Background(), "seat:A1", 0, time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.TryAcquire(ctx, "seat:A1", time.Second, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
