package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
)

const releaseTimeout = 5 * time.Second

// SeatLockCoordinator grants exclusive access to an exact set of seat keys.
// Keys are always taken in one global order so overlapping requests can
// never wait on each other in a cycle.
type SeatLockCoordinator struct {
	locker      ports.Locker
	waitTimeout time.Duration
	lease       time.Duration
	log         *zap.Logger
}

func NewSeatLockCoordinator(locker ports.Locker, waitTimeout, lease time.Duration, log *zap.Logger) *SeatLockCoordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &SeatLockCoordinator{
		locker:      locker,
		waitTimeout: waitTimeout,
		lease:       lease,
		log:         log,
	}
}

// CanonicalKeys deduplicates keys and sorts them into acquisition order.
func CanonicalKeys(keys []string) []string {
	ordered := lo.Uniq(keys)
	sort.Strings(ordered)
	return ordered
}

// Acquire takes every key or none. When a key cannot be had within the wait
// timeout the keys already taken are given back and domain.ErrSeatLocked is
// returned.
func (c *SeatLockCoordinator) Acquire(ctx context.Context, keys []string) (*ScopedLock, error) {
	scoped := &ScopedLock{log: c.log}

	for _, key := range CanonicalKeys(keys) {
		lock, err := c.locker.TryAcquire(ctx, key, c.waitTimeout, c.lease)
		if err != nil {
			_ = scoped.Release(ctx)
			if errors.Is(err, ports.ErrLockNotAcquired) {
				c.log.Info("seat lock contended", zap.String("key", key), zap.Duration("wait_timeout", c.waitTimeout))
				return nil, fmt.Errorf("%w: %s", domain.ErrSeatLocked, key)
			}
			// The caller gave up while waiting; that is contention, not a backend fault.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.log.Info("seat lock wait abandoned", zap.String("key", key), zap.Error(err))
				return nil, fmt.Errorf("%w: %s: %w", domain.ErrSeatLocked, key, err)
			}
			return nil, fmt.Errorf("acquire seat lock %s: %w", key, err)
		}
		scoped.locks = append(scoped.locks, lock)
	}

	return scoped, nil
}

// WithLocks runs fn while holding every key and releases them on all exit
// paths, panics included.
func (c *SeatLockCoordinator) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context, held *ScopedLock) error) error {
	held, err := c.Acquire(ctx, keys)
	if err != nil {
		return err
	}
	defer func() {
		_ = held.Release(ctx)
	}()

	return fn(ctx, held)
}

// ScopedLock is the set of locks granted by one Acquire call.
type ScopedLock struct {
	mu       sync.Mutex
	locks    []ports.Lock
	released bool
	log      *zap.Logger
}

func (s *ScopedLock) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Map(s.locks, func(l ports.Lock, _ int) string { return l.Key() })
}

// Verify fails with domain.ErrSeatLocked if any lease has run out, meaning
// another request may already own the seat.
func (s *ScopedLock) Verify(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return fmt.Errorf("%w: locks already released", domain.ErrSeatLocked)
	}
	for _, l := range s.locks {
		held, err := l.Held(ctx)
		if err != nil {
			return fmt.Errorf("check seat lock %s: %w", l.Key(), err)
		}
		if !held {
			return fmt.Errorf("%w: lease on %s expired", domain.ErrSeatLocked, l.Key())
		}
	}
	return nil
}

// Release is idempotent. It runs on a context detached from the caller's
// cancellation so an aborted request still gives its seats back.
func (s *ScopedLock) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	var errs []error
	for i := len(s.locks) - 1; i >= 0; i-- {
		if err := s.locks[i].Release(ctx); err != nil {
			s.log.Warn("failed to release seat lock", zap.String("key", s.locks[i].Key()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	s.log.Debug("released seat locks", zap.Int("count", len(s.locks)))

	return errors.Join(errs...)
}
