package lword

import (
	"fmt"
	"github.com/ValentinKolb/sLock/lib/word"
	"sync/atomic"
)

type wordImpl struct {
	p *uint64
}

// New allocates a new zero (unlocked) word.
func New() word.IWord {
	return &wordImpl{p: new(uint64)}
}

// FromPointer wraps caller owned memory as a word.
// The caller keeps ownership of the memory, it must outlive every lock using the word.
func FromPointer(p *uint64) word.IWord {
	if p == nil {
		panic("lword: nil word pointer")
	}
	return &wordImpl{p: p}
}

func (w *wordImpl) Load() uint64 {
	return atomic.LoadUint64(w.p)
}

func (w *wordImpl) CompareAndSwap(old, new uint64) bool {
	return atomic.CompareAndSwapUint64(w.p, old, new)
}

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

type tableImpl struct {
	cells []uint64
}

// NewTable creates an in-memory table with the given number of zeroed words.
func NewTable(slots int) word.IWordTable {
	if slots < 1 {
		slots = 1
	}
	return &tableImpl{cells: make([]uint64, slots)}
}

func (t *tableImpl) Slots() int {
	return len(t.cells)
}

func (t *tableImpl) Slot(i int) (word.IWord, error) {
	if i < 0 || i >= len(t.cells) {
		return nil, fmt.Errorf("%w: %d (table has %d slots)", word.ErrSlotOutOfRange, i, len(t.cells))
	}
	return &wordImpl{p: &t.cells[i]}, nil
}
