package wlock

import (
	"github.com/VictoriaMetrics/metrics"
	"sync/atomic"
)

// process wide metrics, exported in the Prometheus text format via metrics.WritePrometheus
var (
	acquireFastTotal   = metrics.NewCounter(`slock_acquire_total{path="fast"}`)
	acquireSlowTotal   = metrics.NewCounter(`slock_acquire_total{path="slow"}`)
	takeoverTotal      = metrics.NewCounter(`slock_takeover_total`)
	deadlineResetTotal = metrics.NewCounter(`slock_deadline_reset_total`)
	cancelTotal        = metrics.NewCounter(`slock_cancel_total`)
	unlockRaceTotal    = metrics.NewCounter(`slock_unlock_race_total`)
	slowWaitSeconds    = metrics.NewHistogram(`slock_slow_wait_seconds`)
)

// Stats counts the escalation events of a single lock instance.
type Stats struct {
	FastAcquired   uint64 // acquisitions in the fast spin
	SlowAcquired   uint64 // acquisitions in the slow spin
	SlowSpins      uint64 // slow spin phases entered
	DeadlineResets uint64 // deadlines restarted because the owner changed
	Takeovers      uint64 // successful forced takeovers
	Cancellations  uint64 // Lock calls aborted by their context
	UnlockRaces    uint64 // unlocks that lost their CAS
}

type lockStats struct {
	fastAcquired   atomic.Uint64
	slowAcquired   atomic.Uint64
	slowSpins      atomic.Uint64
	deadlineResets atomic.Uint64
	takeovers      atomic.Uint64
	cancellations  atomic.Uint64
	unlockRaces    atomic.Uint64
}

func (s *lockStats) snapshot() Stats {
	return Stats{
		FastAcquired:   s.fastAcquired.Load(),
		SlowAcquired:   s.slowAcquired.Load(),
		SlowSpins:      s.slowSpins.Load(),
		DeadlineResets: s.deadlineResets.Load(),
		Takeovers:      s.takeovers.Load(),
		Cancellations:  s.cancellations.Load(),
		UnlockRaces:    s.unlockRaces.Load(),
	}
}
