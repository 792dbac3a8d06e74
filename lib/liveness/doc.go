// Package liveness answers the question "is the process or thread holding
// this owner id still alive?" on a best-effort basis.
//
// The answer is tri-state. Unknown means the probe cannot tell, and every
// caller must treat it exactly like "cannot confirm dead": never as alive,
// never as dead. The lock only ever acts on Dead (early forced takeover);
// Alive and Unknown both mean "keep waiting for the deadline".
//
// Probes:
//
//   - ProcProbe: checks for /proc/<id>. Works for process ids and, on Linux,
//     for thread ids as well.
//   - SignalProbe (unix): sends signal 0 with kill(2). Only works for process
//     ids.
//   - None: always Unknown.
//
// Detect picks the best available probe once per process.
package liveness
