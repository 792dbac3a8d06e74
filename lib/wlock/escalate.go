package wlock

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/sLock/lib/liveness"
	"github.com/ValentinKolb/sLock/lib/spin"
	"github.com/ValentinKolb/sLock/lib/word"
	"time"
)

// Lock blocks until owner holds the lock or ctx is done.
//
// A holder that keeps the lock longer than Config.Timeout (or that the probe
// reports as dead) is forcibly removed; that is logged, not returned as an
// error. The returned errors are ErrInvalidOwnerID, ErrReentrantLock and
// ErrCancelled (which also matches ctx.Err()). On error the lock has not been
// acquired by this call.
func (l *Lock) Lock(ctx context.Context, owner uint32) error {
	if owner == word.Unlocked {
		return ErrInvalidOwnerID
	}

	for {
		ok, err := l.fastSpin(owner)
		if err != nil {
			return err
		}
		if ok {
			l.stats.fastAcquired.Add(1)
			acquireFastTotal.Inc()
			return nil
		}

		ok, observed, err := l.slowSpin(ctx, owner)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		// the word is either free now or we lost the race, both ways start over
		l.takeover(owner, observed)
	}
}

// fastSpin busy-waits with the cpu pause hint.
func (l *Lock) fastSpin(owner uint32) (bool, error) {
	for i := 0; i < l.conf.FastSpinIterations; i++ {
		ok, err := l.TryLock(owner)
		if ok || err != nil {
			return ok, err
		}
		spin.Pause(spin.DefaultPauseCycles)
	}
	return false, nil
}

// slowSpin yields between attempts until the deadline of the observed owner expires.
// It returns whether the lock was acquired and the last observed word.
func (l *Lock) slowSpin(ctx context.Context, owner uint32) (bool, uint64, error) {
	l.stats.slowSpins.Add(1)

	start := time.Now()
	observed := l.word.Load()
	deadline := start.Add(l.conf.Timeout)

	for time.Now().Before(deadline) {
		for i := 0; i < l.conf.SlowSpinBatchSize; i++ {
			if err := ctx.Err(); err != nil {
				l.stats.cancellations.Add(1)
				cancelTotal.Inc()
				return false, observed, fmt.Errorf("%w: owner %d: %w", ErrCancelled, owner, err)
			}

			ok, err := l.TryLock(owner)
			if err != nil {
				return false, observed, err
			}
			if ok {
				l.stats.slowAcquired.Add(1)
				acquireSlowTotal.Inc()
				slowWaitSeconds.Update(time.Since(start).Seconds())
				return true, observed, nil
			}
			spin.Yield()
		}

		current := l.word.Load()
		holder := word.Owner(current)

		if holder != word.Owner(observed) {
			log.Infof("owner changed from %d to %d while owner %d was waiting, restarting the timeout", word.Owner(observed), holder, owner)
			observed = current
			deadline = time.Now().Add(l.conf.Timeout)
			l.stats.deadlineResets.Add(1)
			deadlineResetTotal.Inc()
			continue
		}

		if holder != word.Unlocked && l.conf.Probe != nil && l.conf.Probe.Status(holder) == liveness.Dead {
			log.Infof("owner %d is dead, owner %d stops waiting", holder, owner)
			return false, current, nil
		}
	}

	return false, observed, nil
}

// takeover removes the observed owner from the lock, if the word is still the observed one.
func (l *Lock) takeover(owner uint32, observed uint64) {
	stale := word.Owner(observed)
	if stale == word.Unlocked {
		return
	}

	// a changed previous owner means the lock was released and taken again
	current := l.word.Load()
	if current != observed {
		log.Infof("lock changed from %s to %s before the takeover by owner %d", word.Describe(observed), word.Describe(current), owner)
		return
	}

	status := liveness.Unknown
	if l.conf.Probe != nil {
		status = l.conf.Probe.Status(stale)
	}

	if !l.word.CompareAndSwap(current, word.Pack(stale, word.Unlocked)) {
		log.Warningf("forced takeover of owner %d by owner %d lost a race, retrying", stale, owner)
		return
	}

	l.stats.takeovers.Add(1)
	takeoverTotal.Inc()

	switch status {
	case liveness.Dead:
		log.Warningf("forced takeover: owner %d reclaimed the lock from dead owner %d", owner, stale)
	case liveness.Alive:
		log.Warningf("forced takeover: owner %d reclaimed the lock from owner %d, which is running but held the lock longer than %s", owner, stale, l.conf.Timeout)
	default:
		log.Warningf("forced takeover: owner %d reclaimed the lock from owner %d (liveness %s) after %s", owner, stale, status, l.conf.Timeout)
	}
}
