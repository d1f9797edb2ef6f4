// Package memlock is a single-process ports.Locker with the same wait and
// lease behaviour as the Redis backend.
package memlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/showtime_booking/internal/core/ports"
)

const defaultRetryInterval = 10 * time.Millisecond

type entry struct {
	token     string
	expiresAt time.Time
}

type Locker struct {
	mu            sync.Mutex
	entries       map[string]entry
	retryInterval time.Duration
	now           func() time.Time
}

type Option func(*Locker)

func WithRetryInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Locker) {
		l.now = now
	}
}

func New(opts ...Option) *Locker {
	l := &Locker{
		entries:       make(map[string]entry),
		retryInterval: defaultRetryInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Locker) TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (ports.Lock, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		if l.tryLock(key, token, lease) {
			return &lock{locker: l, key: key, token: token}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ports.ErrLockNotAcquired
		}

		timer := time.NewTimer(min(l.retryInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Locker) tryLock(key, token string, lease time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	l.entries[key] = entry{token: token, expiresAt: now.Add(lease)}
	return true
}

func (l *Locker) unlock(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok && e.token == token {
		delete(l.entries, key)
	}
}

func (l *Locker) held(key, token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	return ok && e.token == token && l.now().Before(e.expiresAt)
}

type lock struct {
	locker *Locker
	key    string
	token  string
}

func (k *lock) Key() string {
	return k.key
}

func (k *lock) Release(context.Context) error {
	k.locker.unlock(k.key, k.token)
	return nil
}

func (k *lock) Held(context.Context) (bool, error) {
	return k.locker.held(k.key, k.token), nil
}
