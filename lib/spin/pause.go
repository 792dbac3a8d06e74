//go:build !purego

package spin

import (
	_ "unsafe" // for go:linkname
)

//go:linkname procyield runtime.procyield
func procyield(cycles uint32)

// Pause issues the cpu spin-wait hint the given number of times. It never yields to the scheduler.
func Pause(cycles uint32) {
	// procyield decrements before testing, zero would wrap around
	if cycles == 0 {
		return
	}
	procyield(cycles)
}
