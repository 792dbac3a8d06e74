package wlock

import "errors"

var (
	// ErrInvalidOwnerID is returned when the owner id is the unlocked sentinel 0.
	ErrInvalidOwnerID = errors.New("invalid owner id 0")
	// ErrReentrantLock is returned when an owner tries to acquire a lock it already holds.
	ErrReentrantLock = errors.New("lock already held by this owner")
	// ErrUnlockMismatch is returned when an owner releases a lock it has already released.
	ErrUnlockMismatch = errors.New("lock already released by this owner")
	// ErrCancelled is returned when the context of a blocking Lock is done. The lock was not acquired.
	ErrCancelled = errors.New("lock acquisition cancelled")
)
