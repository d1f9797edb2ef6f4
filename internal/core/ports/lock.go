package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotAcquired is returned when a key is still held by someone else
// once the wait timeout has elapsed.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Lock is one granted key. The backend drops it on its own once the lease
// runs out.
type Lock interface {
	Key() string
	// Release gives the key back. Releasing twice, or after the lease has
	// expired, is not an error.
	Release(ctx context.Context) error
	// Held reports whether this owner still holds the key.
	Held(ctx context.Context) (bool, error)
}

// Locker is a distributed mutual-exclusion primitive keyed by string.
type Locker interface {
	// TryAcquire blocks up to wait for key and grants it for lease.
	TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (Lock, error)
}
