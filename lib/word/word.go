package word

import "fmt"

// Unlocked is the owner value of a free lock.
const Unlocked uint32 = 0

const ownerMask = 0xFFFF_FFFF

// Owner returns the current owner (low 32 bits) of a lock word value.
func Owner(v uint64) uint32 {
	return uint32(v & ownerMask)
}

// Previous returns the previous owner (high 32 bits) of a lock word value.
func Previous(v uint64) uint32 {
	return uint32(v >> 32)
}

// Pack builds a lock word value from its two fields.
func Pack(previous, owner uint32) uint64 {
	return uint64(previous)<<32 | uint64(owner)
}

// WithOwner replaces the current owner of v and keeps the previous owner.
func WithOwner(v uint64, owner uint32) uint64 {
	return v&^ownerMask | uint64(owner)
}

// Describe formats a lock word value for logs and the CLI.
func Describe(v uint64) string {
	return fmt.Sprintf("owner=%d previous=%d", Owner(v), Previous(v))
}
