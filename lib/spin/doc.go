// Package spin provides the two waiting primitives of the lock's escalation:
// a CPU level spin-wait hint for busy loops and a cooperative yield for slow
// loops.
//
// Pause executes the processor's pause instruction (PAUSE on amd64, YIELD on
// arm64) through the runtime's procyield, the same primitive the runtime uses
// for active spinning in its own locks. Building with the purego tag turns
// Pause into a no-op; the lock stays correct, only less power efficient
// under contention.
package spin
