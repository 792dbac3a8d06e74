//go:build purego

package spin

// Pause is a no-op without the runtime spin-wait hint.
func Pause(cycles uint32) {}
