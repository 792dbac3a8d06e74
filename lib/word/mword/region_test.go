//go:build unix

package mword

import (
	"errors"
	"github.com/ValentinKolb/sLock/lib/word"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestOpenCreatesRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.region")

	r, err := Open(path, 8)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if fi.Size() != regionSize(8) {
		t.Fatalf("file size = %d, want %d", fi.Size(), regionSize(8))
	}
	if r.Slots() != 8 || r.Path() != path {
		t.Fatalf("unexpected region metadata: slots=%d path=%s", r.Slots(), r.Path())
	}

	for i := 0; i < r.Slots(); i++ {
		w, err := r.Slot(i)
		if err != nil {
			t.Fatalf("Slot(%d): %v", i, err)
		}
		if w.Load() != 0 {
			t.Fatalf("slot %d is not zero initialized", i)
		}
	}
}

// TestTwoMappingsShareWords opens the same file twice, the way two processes
// would, and checks that a CAS through one mapping is seen by the other.
func TestTwoMappingsShareWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.region")

	a, err := Open(path, 4)
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	defer a.Close()
	b, err := Open(path, 4)
	if err != nil {
		t.Fatalf("Open b: %v", err)
	}
	defer b.Close()

	wa, _ := a.Slot(2)
	wb, _ := b.Slot(2)

	if !wa.CompareAndSwap(0, word.Pack(0, 77)) {
		t.Fatalf("CAS through first mapping failed")
	}
	if got := word.Owner(wb.Load()); got != 77 {
		t.Fatalf("second mapping sees owner %d, want 77", got)
	}
	if wb.CompareAndSwap(0, word.Pack(0, 78)) {
		t.Fatalf("stale CAS through second mapping succeeded")
	}

	other, _ := b.Slot(1)
	if other.Load() != 0 {
		t.Fatalf("neighbouring slot was modified")
	}
}

func TestReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.region")

	r, err := Open(path, 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	w, _ := r.Slot(0)
	w.CompareAndSwap(0, word.Pack(3, 4))
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err = Open(path, 2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r.Close()
	w, _ = r.Slot(0)
	if w.Load() != word.Pack(3, 4) {
		t.Fatalf("state lost across reopen: %s", word.Describe(w.Load()))
	}
}

func TestOpenMismatch(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "a.region")
	r, err := Open(path, 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.Close()

	if _, err := Open(path, 5); !errors.Is(err, ErrRegionMismatch) {
		t.Fatalf("Open with other slot count: err = %v, want ErrRegionMismatch", err)
	}

	// right size, wrong magic
	foreign := filepath.Join(dir, "foreign")
	data := make([]byte, regionSize(4))
	copy(data, "not a region")
	if err := os.WriteFile(foreign, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(foreign, 4); !errors.Is(err, ErrRegionMismatch) {
		t.Fatalf("Open foreign file: err = %v, want ErrRegionMismatch", err)
	}

	if _, err := Open(filepath.Join(dir, "zero"), 0); err == nil {
		t.Fatalf("Open with zero slots succeeded")
	}
}

func TestConcurrentOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.region")

	const openers = 8
	regions := make([]*Region, openers)
	errs := make([]error, openers)

	var wg sync.WaitGroup
	wg.Add(openers)
	for i := 0; i < openers; i++ {
		go func(i int) {
			defer wg.Done()
			regions[i], errs[i] = Open(path, 16)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("opener %d: %v", i, err)
		}
		defer regions[i].Close()
	}
}

func TestSlotErrors(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "slots.region"), 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := r.Slot(2); !errors.Is(err, word.ErrSlotOutOfRange) {
		t.Fatalf("Slot(2): err = %v, want ErrSlotOutOfRange", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Close: err = %v, want ErrClosed", err)
	}
	if _, err := r.Slot(0); !errors.Is(err, ErrClosed) {
		t.Fatalf("Slot after Close: err = %v, want ErrClosed", err)
	}
}

func TestOpenRecoversUnfinishedCreation(t *testing.T) {
	dir := t.TempDir()

	// sized but no header, and a header cut short
	files := map[string][]byte{
		"sized.region":   make([]byte, regionSize(4)),
		"partial.region": make([]byte, 5),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		r, err := Open(path, 4)
		if err != nil {
			t.Fatalf("Open %s: %v", name, err)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("Close %s: %v", name, err)
		}

		// the header is in place now
		if _, err := Open(path, 5); !errors.Is(err, ErrRegionMismatch) {
			t.Fatalf("Open %s with other slot count: err = %v, want ErrRegionMismatch", name, err)
		}
	}
}

func TestWordAfterClosePanics(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "closed.region"), 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	w, err := r.Slot(1)
	if err != nil {
		t.Fatalf("Slot: %v", err)
	}
	if !w.CompareAndSwap(0, word.Pack(0, 3)) {
		t.Fatalf("CAS on open region failed")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for name, use := range map[string]func(){
		"Load":           func() { w.Load() },
		"CompareAndSwap": func() { w.CompareAndSwap(word.Pack(0, 3), 0) },
	} {
		func() {
			defer func() {
				err, _ := recover().(error)
				if !errors.Is(err, ErrClosed) {
					t.Errorf("%s after Close: recovered %v, want ErrClosed", name, err)
				}
			}()
			use()
		}()
	}
}
