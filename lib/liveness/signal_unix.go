//go:build unix

package liveness

import (
	"errors"
	"golang.org/x/sys/unix"
	"math"
)

const signalProbeSupported = true

type signalProbe struct{}

// NewSignalProbe returns a probe that sends signal 0 to the owner id, interpreted as a process id.
func NewSignalProbe() IProbe {
	return signalProbe{}
}

func (signalProbe) Status(owner uint32) Status {
	if owner == 0 || owner > math.MaxInt32 {
		return Unknown
	}
	err := unix.Kill(int(owner), 0)
	switch {
	case err == nil, errors.Is(err, unix.EPERM):
		// EPERM: the process exists but belongs to someone else
		return Alive
	case errors.Is(err, unix.ESRCH):
		return Dead
	default:
		return Unknown
	}
}
