// Package wlock implements an exclusive lock on top of a single 64-bit lock
// word (see package word). The word can live anywhere a word.IWord can be
// built on: process memory, a memory-mapped file shared by several processes
// or a RAFT replicated table. The lock recovers from holders that die without
// releasing it.
//
// Ownership:
//
//	Owners are caller chosen, non-zero 32-bit ids (typically process or
//	thread ids) that are unique among the live participants. The lock is
//	not re-entrant: acquiring a lock the owner already holds is an error.
//
// Acquisition:
//
//	Lock escalates through three phases:
//
//	1. Fast spin: a bounded number of TryLock attempts separated by the cpu
//	   spin-wait hint. It never yields and cannot be cancelled.
//
//	2. Slow spin: batches of TryLock attempts separated by cooperative
//	   yields, bounded by a deadline (Config.Timeout). After every batch the
//	   current owner is compared with the one observed when waiting started.
//	   A different owner means the lock changed hands legitimately, so the
//	   deadline starts over. If a liveness probe confirms that the owner is
//	   dead, waiting ends early. The context is checked on every attempt.
//
//	3. Forced takeover: if the word is still the one observed, a single CAS
//	   clears it and records it as the previous owner. Acquisition then
//	   starts over with the fast spin. Reclamation also happens when the
//	   probe cannot tell (or says the owner is running): the timeout is the
//	   fallback.
//
// Release:
//
//	Unlock clears the owner and records the caller as previous owner. A
//	second Unlock by the same owner returns ErrUnlockMismatch. Unlocking a
//	lock held by someone else only logs a warning, since that happens
//	legitimately after a forced takeover.
//
// Fairness:
//
//	None. Any contender may win any CAS race.
//
// Usage Example:
//
//	lock := wlock.New(lword.New(), wlock.Config{
//	    Timeout: 5 * time.Second,
//	    Probe:   liveness.Detect(),
//	})
//
//	owner := uint32(os.Getpid())
//	if err := lock.Lock(ctx, owner); err != nil {
//	    return err
//	}
//	defer lock.Unlock(owner)
package wlock
