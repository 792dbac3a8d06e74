package wlock

import (
	"github.com/ValentinKolb/sLock/lib/liveness"
	"time"
)

const (
	DefaultTimeout            = 10 * time.Second
	DefaultFastSpinIterations = 20_000
	DefaultSlowSpinBatchSize  = 100
)

// Config holds the local tuning of a lock. It is fixed for the lifetime of the lock
// and never shared with other participants. Zero values select the defaults.
type Config struct {
	// Timeout is the time a waiter gives the same owner before taking the lock over.
	Timeout time.Duration
	// FastSpinIterations is the number of busy TryLock attempts before the slow spin.
	FastSpinIterations int
	// SlowSpinBatchSize is the number of yielding TryLock attempts between two owner checks.
	SlowSpinBatchSize int
	// Probe checks whether the current owner is still alive. Nil disables early takeover.
	Probe liveness.IProbe
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.FastSpinIterations <= 0 {
		c.FastSpinIterations = DefaultFastSpinIterations
	}
	if c.SlowSpinBatchSize <= 0 {
		c.SlowSpinBatchSize = DefaultSlowSpinBatchSize
	}
	return c
}
