// Package redislock implements ports.Locker on a single Redis node: SET NX PX
// with a random owner token, released by a compare-and-delete script.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/showtime_booking/internal/core/ports"
)

const defaultRetryInterval = 50 * time.Millisecond

// releaseScript deletes the key only while it still carries our token, so an
// owner whose lease has expired cannot free someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	client        redis.Cmdable
	retryInterval time.Duration
	newToken      func() string
}

type Option func(*Locker)

func WithRetryInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

func WithTokenGenerator(fn func() string) Option {
	return func(l *Locker) {
		l.newToken = fn
	}
}

func New(client redis.Cmdable, opts ...Option) *Locker {
	l := &Locker{
		client:        client,
		retryInterval: defaultRetryInterval,
		newToken:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Locker) TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (ports.Lock, error) {
	token := l.newToken()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, lease).Result()
		if err != nil {
			return nil, fmt.Errorf("redis set nx %s: %w", key, err)
		}
		if ok {
			return &lock{client: l.client, key: key, token: token}, nil
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

type lock struct {
	client redis.Cmdable
	key    string
	token  string
}

func (k *lock) Key() string {
	return k.key
}

func (k *lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, k.client, []string{k.key}, k.token).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", k.key, err)
	}
	return nil
}

func (k *lock) Held(ctx context.Context) (bool, error) {
	val, err := k.client.Get(ctx, k.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", k.key, err)
	}
	return val == k.token, nil
}
