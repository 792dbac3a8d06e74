// Package lockmgr implements named locks on top of a table of lock words
// (see word.IWordTable). A key is hashed onto one slot of the table and the
// lock word of that slot is used as the key's lock, so two keys colliding on
// the same slot share one lock (lock striping).
//
// The lockmgr only stores in the provided table and has no other shared
// state. It is safe to create any number of managers, in any number of
// processes, on the same table (for example an mword.Region mapped by every
// process, or a dword table replicated by raft). As long as the same table
// and slot count are used, all locks work as expected. The manager caches
// the words of the table, so it must not outlive the table (the words of a
// closed mword.Region panic with mword.ErrClosed).
//
// Owners are identified by non-zero 32-bit ids, typically the process id.
// Acquisition blocks with the escalation of the wlock package, which takes
// the lock over from stale owners, so a crashed owner never blocks a key
// forever.
//
// Usage Example:
//
//	region, err := mword.Open("/dev/shm/app.slock", 1024)
//	if err != nil {
//	    // Handle error
//	}
//	defer region.Close()
//
//	mgr := lockmgr.NewLockManager(region, wlock.Config{Probe: liveness.Detect()})
//	owner := uint32(os.Getpid())
//
//	if err := mgr.AcquireLock(ctx, "resource:123", owner); err != nil {
//	    // Handle error
//	}
//	// Use the resource safely
//	_ = mgr.ReleaseLock("resource:123", owner)
package lockmgr
