package lockmgr

import (
	"context"
	"github.com/ValentinKolb/sLock/lib/liveness"
)

// ILockManager defines the interface for a named lock provider.
type ILockManager interface {
	// AcquireLock blocks until owner holds the lock for the given key or ctx is done.
	AcquireLock(ctx context.Context, key string, owner uint32) error

	// TryAcquireLock makes a single attempt to acquire the lock for the given key.
	// Return a boolean indicating whether the lock was acquired, and an error if any.
	TryAcquireLock(key string, owner uint32) (ok bool, err error)

	// ReleaseLock releases the lock for the given key.
	// Releasing a lock held by another owner is a logged no-op.
	ReleaseLock(key string, owner uint32) error

	// Inspect returns the current state of the lock for the given key.
	Inspect(key string) (State, error)
}

// State is a snapshot of a named lock.
type State struct {
	Key      string
	Slot     int
	Owner    uint32 // 0 if the lock is free
	Previous uint32
	Liveness liveness.Status // liveness of Owner, Unknown if the lock is free
}
