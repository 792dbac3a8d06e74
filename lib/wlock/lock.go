package wlock

import (
	"fmt"
	"github.com/ValentinKolb/sLock/lib/word"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("wlock")

// Lock is an exclusive lock on a lock word. It only holds a reference to the
// word and its local configuration, so any number of Lock values (in any
// number of processes) can cooperate on the same word.
type Lock struct {
	word  word.IWord
	conf  Config
	stats lockStats
}

// New creates a lock on the given word. The word's storage is owned by the caller.
func New(w word.IWord, conf Config) *Lock {
	if w == nil {
		panic("wlock: nil lock word")
	}
	return &Lock{
		word: w,
		conf: conf.withDefaults(),
	}
}

// TryLock makes a single attempt to acquire the lock for owner.
// It returns false (and no error) if another owner holds the lock or the attempt lost a race.
func (l *Lock) TryLock(owner uint32) (bool, error) {
	if owner == word.Unlocked {
		return false, ErrInvalidOwnerID
	}

	v := l.word.Load()
	switch word.Owner(v) {
	case word.Unlocked:
		return l.word.CompareAndSwap(v, word.WithOwner(v, owner)), nil
	case owner:
		return false, fmt.Errorf("%w: owner %d", ErrReentrantLock, owner)
	default:
		return false, nil
	}
}

// Unlock releases the lock held by owner and records owner as the previous owner.
//
// Unlocking twice returns ErrUnlockMismatch. Unlocking a lock held by another owner
// only logs a warning and leaves the lock untouched; after a forced takeover this
// is what the reclaimed owner sees.
func (l *Lock) Unlock(owner uint32) error {
	if owner == word.Unlocked {
		return ErrInvalidOwnerID
	}

	v := l.word.Load()
	current := word.Owner(v)

	switch {
	case current == owner:
		if !l.word.CompareAndSwap(v, word.Pack(owner, word.Unlocked)) {
			l.stats.unlockRaces.Add(1)
			unlockRaceTotal.Inc()
			log.Warningf("unlock by owner %d lost a race, word is now %s", owner, word.Describe(l.word.Load()))
		}
		return nil
	case current == word.Unlocked && word.Previous(v) == owner:
		return fmt.Errorf("%w: owner %d", ErrUnlockMismatch, owner)
	default:
		log.Warningf("owner %d tried to unlock a lock it does not hold (%s)", owner, word.Describe(v))
		return nil
	}
}

// State returns the current and the previous owner of the lock.
// The values are a snapshot and may be outdated as soon as they are returned.
func (l *Lock) State() (owner, previous uint32) {
	v := l.word.Load()
	return word.Owner(v), word.Previous(v)
}

// Stats returns the escalation counters of this lock instance.
func (l *Lock) Stats() Stats {
	return l.stats.snapshot()
}
