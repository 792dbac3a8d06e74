// Package word defines the lock word: a single externally owned 64-bit cell
// that can be read atomically and updated with a compare-and-swap.
//
// The word packs two 32-bit fields:
//
//	 63            32 31             0
//	+----------------+----------------+
//	| previous owner | current owner  |
//	+----------------+----------------+
//
// The current owner is 0 while the lock is free. The previous owner is an
// audit trail written on every release and forced takeover. It is never read
// for correctness.
//
// Storage Media:
//
//	The package only defines the IWord and IWordTable interfaces. The actual
//	storage lives in the sub packages:
//
//	- lword: process local words (heap or caller supplied *uint64)
//	- mword: words in a memory-mapped region file shared between processes
//	- dword: words replicated with RAFT consensus (dragonboat)
//
//	Any medium qualifies as long as Load and CompareAndSwap are atomic over
//	the full 64 bits for every participant that shares the word.
//
// Lifecycle:
//
//	A word is allocated and zero-initialized by its storage. The lock built
//	on top of it never allocates, frees or resets it.
package word
