// Package mword implements lock words inside a memory-mapped region file.
// Every process that opens the same file maps the same physical pages, so a
// compare-and-swap on a slot is visible to all of them. This is the medium
// for locks shared across process boundaries.
//
// File Layout:
//
//	offset 0   magic       8 bytes, little endian
//	offset 8   slot count  8 bytes, little endian
//	offset 16  slot 0      8 bytes
//	offset 24  slot 1      8 bytes
//	...
//
//	Every slot is 8-byte aligned (the mapping is page aligned), which is
//	required for 64-bit atomics on all supported architectures.
//
// Creation:
//
//	Open creates the file if it does not exist. Creation and header
//	validation happen under an exclusive flock so that two processes racing
//	to create the region cannot observe a half written header. A new file
//	is zero-filled by the OS, i.e. all slots start unlocked. A file with an
//	all zero header is left over from a creator that crashed and is
//	initialized again.
//
// Lifecycle:
//
//	The region owns the mapping. Words returned by Slot panic with ErrClosed
//	when used after Close. The file itself is never deleted by this package, its
//	lifetime belongs to the operator (a stale region is harmless, dead
//	owners are reclaimed by the lock's forced takeover).
package mword
