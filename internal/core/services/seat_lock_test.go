package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/showtime_booking/internal/adapter/lock/memlock"
	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
	"github.com/srgjo27/showtime_booking/internal/core/ports/mocks"
	"github.com/srgjo27/showtime_booking/internal/core/services"
)

const (
	testWait  = 50 * time.Millisecond
	testLease = time.Minute
)

func newMockLock(t *testing.T, key string) *mocks.Lock {
	l := mocks.NewLock(t)
	l.On("Key").Return(key).Maybe()
	return l
}

func TestCanonicalKeys(t *testing.T) {
	assert.Equal(t, []string{"seat:A1", "seat:A2", "seat:B1"}, services.CanonicalKeys([]string{"seat:B1", "seat:A2", "seat:A1", "seat:A2"}))
	assert.Empty(t, services.CanonicalKeys(nil))
}

func TestSeatLockCoordinator_AcquiresInCanonicalOrder(t *testing.T) {
	locker := mocks.NewLocker(t)
	coordinator := services.NewSeatLockCoordinator(locker, testWait, testLease, nil)
	ctx := context.Background()

	lockA, lockB := newMockLock(t, "a"), newMockLock(t, "b")
	mock.InOrder(
		locker.On("TryAcquire", ctx, "a", testWait, testLease).Return(lockA, nil).Once(),
		locker.On("TryAcquire", ctx, "b", testWait, testLease).Return(lockB, nil).Once(),
	)
	mock.InOrder(
		lockB.On("Release", mock.Anything).Return(nil).Once(),
		lockA.On("Release", mock.Anything).Return(nil).Once(),
	)

	held, err := coordinator.Acquire(ctx, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, held.Keys())

	require.NoError(t, held.Release(ctx))
	require.NoError(t, held.Release(ctx))
}

func TestSeatLockCoordinator_ReleasesPartialSetOnContention(t *testing.T) {
	locker := mocks.NewLocker(t)
	coordinator := services.NewSeatLockCoordinator(locker, testWait, testLease, nil)
	ctx := context.Background()

	lockA := newMockLock(t, "a")
	locker.On("TryAcquire", ctx, "a", testWait, testLease).Return(lockA, nil).Once()
	locker.On("TryAcquire", ctx, "b", testWait, testLease).Return(nil, ports.ErrLockNotAcquired).Once()
	lockA.On("Release", mock.Anything).Return(nil).Once()

	held, err := coordinator.Acquire(ctx, []string{"a", "b", "c"})

	assert.Nil(t, held)
	assert.ErrorIs(t, err, domain.ErrSeatLocked)
	assert.Equal(t, domain.KindSeatLocked, domain.KindOf(err))
}

func TestSeatLockCoordinator_BackendErrorIsInternal(t *testing.T) {
	locker := mocks.NewLocker(t)
	coordinator := services.NewSeatLockCoordinator(locker, testWait, testLease, nil)
	ctx := context.Background()

	locker.On("TryAcquire", ctx, "a", testWait, testLease).Return(nil, errors.New("redis: connection refused")).Once()

	_, err := coordinator.Acquire(ctx, []string{"a"})

	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestSeatLockCoordinator_AbandonedWaitIsSeatLocked(t *testing.T) {
	locker := mocks.NewLocker(t)
	coordinator := services.NewSeatLockCoordinator(locker, testWait, testLease, nil)
	ctx := context.Background()

	lockA := newMockLock(t, "a")
	locker.On("TryAcquire", ctx, "a", testWait, testLease).Return(lockA, nil).Once()
	locker.On("TryAcquire", ctx, "b", testWait, testLease).Return(nil, context.Canceled).Once()
	lockA.On("Release", mock.Anything).Return(nil).Once()

	_, err := coordinator.Acquire(ctx, []string{"b", "a"})

	assert.ErrorIs(t, err, domain.ErrSeatLocked)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.KindSeatLocked, domain.KindOf(err))
}

func TestSeatLockCoordinator_DeadlineDuringWait(t *testing.T) {
	locker := memlock.New(memlock.WithRetryInterval(time.Millisecond))
	coordinator := services.NewSeatLockCoordinator(locker, time.Second, testLease, nil)

	other, err := locker.TryAcquire(context.Background(), "a", 0, testLease)
	require.NoError(t, err)
	defer other.Release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = coordinator.Acquire(ctx, []string{"a"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.KindSeatLocked, domain.KindOf(err))
}

func TestSeatLockCoordinator_WithLocksReleasesOnError(t *testing.T) {
	locker := memlock.New(memlock.WithRetryInterval(time.Millisecond))
	coordinator := services.NewSeatLockCoordinator(locker, testWait, testLease, nil)
	ctx := context.Background()
	boom := errors.New("payment declined")

	err := coordinator.WithLocks(ctx, []string{"a", "b"}, func(ctx context.Context, held *services.ScopedLock) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = coordinator.WithLocks(ctx, []string{"b", "a"}, func(ctx context.Context, held *services.ScopedLock) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestSeatLockCoordinator_WithLocksReleasesOnPanic(t *testing.T) {
	locker := memlock.New(memlock.WithRetryInterval(time.Millisecond))
	coordinator := services.NewSeatLockCoordinator(locker, testWait, testLease, nil)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = coordinator.WithLocks(ctx, []string{"a"}, func(context.Context, *services.ScopedLock) error {
			panic("boom")
		})
	})

	held, err := coordinator.Acquire(ctx, []string{"a"})
	require.NoError(t, err)
	require.NoError(t, held.Release(ctx))
}

func TestScopedLock_Verify(t *testing.T) {
	locker := mocks.NewLocker(t)
	coordinator := services.NewSeatLockCoordinator(locker, testWait, testLease, nil)
	ctx := context.Background()

	lockA := newMockLock(t, "a")
	locker.On("TryAcquire", ctx, "a", testWait, testLease).Return(lockA, nil).Once()
	lockA.On("Held", ctx).Return(true, nil).Once()
	lockA.On("Held", ctx).Return(false, nil).Once()
	lockA.On("Release", mock.Anything).Return(nil).Once()

	held, err := coordinator.Acquire(ctx, []string{"a"})
	require.NoError(t, err)

	assert.NoError(t, held.Verify(ctx))

	err = held.Verify(ctx)
	assert.ErrorIs(t, err, domain.ErrSeatLocked)

	require.NoError(t, held.Release(ctx))
	assert.ErrorIs(t, held.Verify(ctx), domain.ErrSeatLocked)
}

func TestSeatLockCoordinator_SymmetricContentionDoesNotDeadlock(t *testing.T) {
	locker := memlock.New(memlock.WithRetryInterval(time.Millisecond))
	coordinator := services.NewSeatLockCoordinator(locker, time.Second, testLease, nil)
	ctx := context.Background()

	orders := [][]string{{"s1", "s2"}, {"s2", "s1"}}
	var wg sync.WaitGroup
	errs := make([]error, 200)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = coordinator.WithLocks(ctx, orders[i%2], func(context.Context, *services.ScopedLock) error {
				time.Sleep(100 * time.Microsecond)
				return nil
			})
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("lock acquisition deadlocked")
	}

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrSeatLocked)
		}
	}
}
