package ports

import (
	"context"
	"time"
)

// Locker provides a lock shared among all the replicas of the daemon.
type Locker interface {
	// TryLock attempts to acquire the lock identified by key for at most ttl.
	// It returns false without error if the lock is held by someone else.
	TryLock(
		ctx context.Context, key string, ttl time.Duration,
	) (unlock func(), ok bool, err error)
}
