//go:build !unix

package mword

import "github.com/ValentinKolb/sLock/lib/word"

// Region is an open, memory-mapped region file.
type Region struct{}

// Open always fails on this platform.
func Open(path string, slots int) (*Region, error) {
	return nil, ErrUnsupported
}

func (r *Region) Path() string { return "" }

func (r *Region) Slots() int { return 0 }

func (r *Region) Slot(i int) (word.IWord, error) { return nil, ErrUnsupported }

func (r *Region) Close() error { return ErrUnsupported }
