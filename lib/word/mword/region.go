package mword

import (
	"encoding/binary"
	"errors"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	// ErrRegionMismatch is returned when an existing file is not a region or has a different slot count.
	ErrRegionMismatch = errors.New("region file mismatch")
	// ErrUnsupported is returned on platforms without shared memory mappings.
	ErrUnsupported = errors.New("memory-mapped regions are not supported on this platform")
	// ErrClosed is returned when a closed region is used.
	ErrClosed = errors.New("region closed")

	log = logger.GetLogger("mword")
)

const (
	headerSize = 16
	wordSize   = 8
)

// magic identifies region files ("sLock", format version 1).
var magic = binary.LittleEndian.Uint64([]byte("sLock\x00\x01\x00"))

// regionSize returns the file size of a region with the given number of slots.
func regionSize(slots int) int64 {
	return headerSize + int64(slots)*wordSize
}

// encodeHeader returns the header bytes for a region with the given number of slots.
func encodeHeader(slots int) []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buf[0:8], magic)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(slots))
	return buf
}

// decodeHeader validates a header and returns the slot count stored in it.
func decodeHeader(buf []byte) (int, error) {
	if len(buf) < headerSize {
		return 0, ErrRegionMismatch
	}
	if binary.LittleEndian.Uint64(buf[0:8]) != magic {
		return 0, ErrRegionMismatch
	}
	return int(binary.LittleEndian.Uint64(buf[8:16])), nil
}
