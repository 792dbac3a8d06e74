package spin

import "runtime"

// DefaultPauseCycles is the number of pause instructions per busy-wait step.
const DefaultPauseCycles = 30

// Yield gives up the processor so other goroutines (and, transitively, the
// threads of other processes sharing the cpu) can run.
func Yield() {
	runtime.Gosched()
}
