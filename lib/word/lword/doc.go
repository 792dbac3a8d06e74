// Package lword implements process local lock words based on the
// word.IWord interface. The words live in ordinary process memory and are
// accessed with sync/atomic 64-bit operations.
//
// Key Features:
//   - Fresh heap allocated words (New)
//   - Words over caller owned memory (FromPointer), e.g. a field of a larger
//     struct or a cell inside memory that is shared by other means
//   - In-memory word tables (NewTable) for the lock manager
//
// Thread Safety:
//
//	All operations are safe for concurrent use by any number of goroutines.
//	FromPointer requires the pointer to be 8-byte aligned, which the Go
//	allocator guarantees for uint64 values and for the first word of an
//	allocated struct.
//
// Usage Example:
//
//	w := lword.New()
//	lock := wlock.New(w, wlock.Config{})
//
// For words shared between processes use the mword package, for words
// replicated across machines use the dword package.
package lword
