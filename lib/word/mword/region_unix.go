//go:build unix

package mword

import (
	"fmt"
	"github.com/ValentinKolb/sLock/lib/word"
	"golang.org/x/sys/unix"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Region is an open, memory-mapped region file.
type Region struct {
	mutex sync.RWMutex
	path  string
	slots int
	data  []byte
}

// Open maps the region file at path, creating it with the given number of slots if needed.
// An existing file must have been created with the same number of slots.
func Open(path string, slots int) (*Region, error) {
	if slots < 1 {
		return nil, fmt.Errorf("invalid slot count %d", slots)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	// The mapping stays valid after the descriptor is closed.
	defer file.Close()

	fd := int(file.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return nil, fmt.Errorf("failed to lock region file \"%s\": %w", path, err)
	}
	err = initRegion(file, slots)
	_ = unix.Flock(fd, unix.LOCK_UN)
	if err != nil {
		return nil, err
	}

	data, err := unix.Mmap(fd, 0, int(regionSize(slots)), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map region file \"%s\": %w", path, err)
	}

	log.Debugf("mapped region %s with %d slots", path, slots)

	return &Region{
		path:  path,
		slots: slots,
		data:  data,
	}, nil
}

// initRegion writes the header of an empty file or validates the header of an existing one.
// The caller holds the flock of the file.
func initRegion(file *os.File, slots int) error {
	fi, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat region file \"%s\": %w", file.Name(), err)
	}

	if fi.Size() == 0 || hasZeroHeader(file, fi.Size()) {
		// a zero header is a creation that did not finish
		if err := file.Truncate(regionSize(slots)); err != nil {
			return fmt.Errorf("failed to size region file \"%s\": %w", file.Name(), err)
		}
		if _, err := file.WriteAt(encodeHeader(slots), 0); err != nil {
			return fmt.Errorf("failed to write region header \"%s\": %w", file.Name(), err)
		}
		log.Infof("created region %s with %d slots", file.Name(), slots)
		return nil
	}

	if fi.Size() != regionSize(slots) {
		return fmt.Errorf("%w: \"%s\" has %d bytes, expected %d", ErrRegionMismatch, file.Name(), fi.Size(), regionSize(slots))
	}

	buf := make([]byte, headerSize)
	if _, err := file.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("failed to read region header \"%s\": %w", file.Name(), err)
	}
	stored, err := decodeHeader(buf)
	if err != nil {
		return fmt.Errorf("%w: \"%s\" has no region header", err, file.Name())
	}
	if stored != slots {
		return fmt.Errorf("%w: \"%s\" has %d slots, expected %d", ErrRegionMismatch, file.Name(), stored, slots)
	}
	return nil
}

// hasZeroHeader reports whether the (possibly truncated) header of the file is all zero.
func hasZeroHeader(file *os.File, size int64) bool {
	buf := make([]byte, min(size, headerSize))
	if _, err := file.ReadAt(buf, 0); err != nil {
		return false
	}
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// Path returns the path of the region file.
func (r *Region) Path() string {
	return r.path
}

// Slots returns the number of words in the region.
func (r *Region) Slots() int {
	return r.slots
}

// Slot returns the word stored in slot i.
// Using the word after the region is closed panics with ErrClosed.
func (r *Region) Slot(i int) (word.IWord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.data == nil {
		return nil, ErrClosed
	}
	if i < 0 || i >= r.slots {
		return nil, fmt.Errorf("%w: %d (region has %d slots)", word.ErrSlotOutOfRange, i, r.slots)
	}
	return &slotWord{region: r, p: (*uint64)(unsafe.Pointer(&r.data[headerSize+i*wordSize]))}, nil
}

// slotWord is a word inside the mapping. Every access holds the read lock of
// the region so Close cannot unmap the memory underneath it.
type slotWord struct {
	region *Region
	p      *uint64
}

func (w *slotWord) Load() uint64 {
	w.region.mutex.RLock()
	defer w.region.mutex.RUnlock()
	w.region.mustBeOpen()
	return atomic.LoadUint64(w.p)
}

func (w *slotWord) CompareAndSwap(old, new uint64) bool {
	w.region.mutex.RLock()
	defer w.region.mutex.RUnlock()
	w.region.mustBeOpen()
	return atomic.CompareAndSwapUint64(w.p, old, new)
}

// mustBeOpen panics if the region is closed. The caller holds the read lock.
func (r *Region) mustBeOpen() {
	if r.data == nil {
		panic(fmt.Errorf("mword: word of %s used after close: %w", r.path, ErrClosed))
	}
}

// Close unmaps the region. It returns ErrClosed if the region was already closed.
func (r *Region) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.data == nil {
		return ErrClosed
	}
	err := unix.Munmap(r.data)
	r.data = nil
	return err
}
