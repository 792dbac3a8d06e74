// Package cmd implements the command-line interface of sLock. It provides
// commands to work with named locks in a shared region file and a contention
// benchmark.
//
// The package is organized into several subpackages:
//
//   - lock: Commands for locking operations (init, acquire, try, release, inspect)
//   - perf: Contention benchmark on the local, mapped and replicated word backends
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set as environment variables with the SLOCK_ prefix
// (e.g. SLOCK_TIMEOUT_MS=5000), also from .env and .env.local files.
//
// See slock -help for a list of all commands.
package cmd
