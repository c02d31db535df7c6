package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises work on the same key across processes, e.g.
// two servers solving the same problem into the same snapshot.
type DistributedLocker interface {
	// Lock blocks until the lock is acquired or ctx is done. The returned
	// UnlockFunc must be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
