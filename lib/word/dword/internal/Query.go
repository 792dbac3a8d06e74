package internal

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTLoad QueryType = iota // Read a word by key, missing words read as 0.
	QueryTLen                   // Number of stored words.
)

func (q QueryType) String() string {
	switch q {
	case QueryTLoad:
		return "Load"
	case QueryTLen:
		return "Len"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or StaleRead.
// Results are primitive types: uint64 for QueryTLoad, int for QueryTLen.
type Query struct {
	Type QueryType // The type of Query to perform.
	Key  string    // The key for the Query (empty for QueryTLen).
}
