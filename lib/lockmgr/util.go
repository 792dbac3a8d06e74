package lockmgr

// HashString hashes a key with FNV-1a, mixing in the seed.
func HashString(s string, seed uint64) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)

	hash := uint64(offset64) ^ seed
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}
	return hash
}

// SlotOf maps a key onto one of slots slots.
func SlotOf(key string, slots int) int {
	if slots <= 0 {
		return 0
	}
	return int(HashString(key, 0) % uint64(slots))
}
