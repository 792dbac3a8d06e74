package lword

import (
	"errors"
	"github.com/ValentinKolb/sLock/lib/word"
	"sync"
	"testing"
)

func TestCompareAndSwap(t *testing.T) {
	w := New()
	if w.Load() != 0 {
		t.Fatalf("new word is not zero: %#x", w.Load())
	}
	if !w.CompareAndSwap(0, word.Pack(0, 5)) {
		t.Fatalf("CAS from zero failed")
	}
	if w.CompareAndSwap(0, word.Pack(0, 6)) {
		t.Fatalf("CAS with stale expected value succeeded")
	}
	if got := word.Owner(w.Load()); got != 5 {
		t.Fatalf("owner = %d, want 5", got)
	}
}

func TestFromPointerSharesMemory(t *testing.T) {
	var cell uint64
	a := FromPointer(&cell)
	b := FromPointer(&cell)

	if !a.CompareAndSwap(0, 42) {
		t.Fatalf("CAS failed")
	}
	if b.Load() != 42 || cell != 42 {
		t.Fatalf("write not visible through second handle: %d", b.Load())
	}
}

// TestConcurrentIncrement uses CAS loops from many goroutines; lost updates
// would show up as a wrong final count.
func TestConcurrentIncrement(t *testing.T) {
	const goroutines = 16
	const perGoroutine = 2000

	w := New()
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				for {
					old := w.Load()
					if w.CompareAndSwap(old, old+1) {
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	if got := w.Load(); got != goroutines*perGoroutine {
		t.Fatalf("counter = %d, want %d", got, goroutines*perGoroutine)
	}
}

func TestTable(t *testing.T) {
	table := NewTable(4)
	if table.Slots() != 4 {
		t.Fatalf("Slots() = %d, want 4", table.Slots())
	}

	w0, err := table.Slot(0)
	if err != nil {
		t.Fatalf("Slot(0): %v", err)
	}
	w3, err := table.Slot(3)
	if err != nil {
		t.Fatalf("Slot(3): %v", err)
	}
	w0.CompareAndSwap(0, 1)
	if w3.Load() != 0 {
		t.Fatalf("slots are not independent")
	}

	again, _ := table.Slot(0)
	if again.Load() != 1 {
		t.Fatalf("slot handles do not share the cell")
	}

	if _, err := table.Slot(4); !errors.Is(err, word.ErrSlotOutOfRange) {
		t.Fatalf("Slot(4) error = %v, want ErrSlotOutOfRange", err)
	}
	if _, err := table.Slot(-1); !errors.Is(err, word.ErrSlotOutOfRange) {
		t.Fatalf("Slot(-1) error = %v, want ErrSlotOutOfRange", err)
	}
}
