package word

import "errors"

// ErrSlotOutOfRange is returned by IWordTable.Slot for an invalid index.
var ErrSlotOutOfRange = errors.New("slot out of range")

// IWord is the atomic 64-bit cell a lock is built on.
type IWord interface {
	// Load atomically reads the word (acquire semantics or stronger).
	Load() uint64
	// CompareAndSwap atomically replaces old with new and reports whether the swap happened.
	// A successful swap is visible to every participant sharing the word.
	CompareAndSwap(old, new uint64) bool
}

// IWordTable is a fixed size array of words, e.g. the slots of a shared region.
type IWordTable interface {
	// Slots returns the number of words in the table.
	Slots() int
	// Slot returns the word at index i (0 <= i < Slots()).
	Slot(i int) (IWord, error)
}
