//go:build !unix

package liveness

const signalProbeSupported = false

// NewSignalProbe returns None on platforms without kill(2).
func NewSignalProbe() IProbe {
	return None
}
