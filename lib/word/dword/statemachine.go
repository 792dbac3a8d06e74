package dword

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/sLock/lib/word/dword/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"time"
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// WordStateMachine is a state machine implementation for Dragonboat RAFT.
// It holds a table of named 64-bit words. Missing words read as 0.
type WordStateMachine struct {
	replicaID uint64
	shardID   uint64
	words     *xsync.MapOf[string, uint64]
}

// CreateStateMachineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
func CreateStateMachineFactory() func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &WordStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			words:     xsync.NewMapOf[string, uint64](),
		}
	}
}

// Lookup handles read-only queries.
func (fsm *WordStateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, NewError(RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	switch q.Type {
	case internal.QueryTLoad:
		v, _ := fsm.words.Load(q.Key)
		return v, nil
	case internal.QueryTLen:
		return fsm.words.Size(), nil
	default:
		return nil, NewError(RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// Update applies CAS commands. Dragonboat never calls Update concurrently,
// so the load and store of a single command cannot interleave with another command.
// The result data of every entry is the 8 byte (big endian) value of the word after the entry.
func (fsm *WordStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {

	// Nothing to do
	if len(entries) == 0 {
		return entries, nil
	}

	// Stats
	start := time.Now()

	for idx, e := range entries {
		if len(e.Cmd) == 0 {
			entries[idx].Result = sm.Result{Value: uint64(RetCInvalidOperation), Data: []byte("empty command ignored")}
			continue
		}

		cmd := internal.Command{}
		if err := cmd.Deserialize(e.Cmd); err != nil {
			entries[idx].Result = sm.Result{Value: uint64(RetCInternalError), Data: []byte(fmt.Sprintf("failed to deserialize command: %v", err))}
			continue
		}

		switch cmd.Type {
		case internal.CommandTCompareAndSwap:
			current, _ := fsm.words.Load(cmd.Key)
			code := RetCConflict
			if current == cmd.Old {
				fsm.words.Store(cmd.Key, cmd.New)
				current = cmd.New
				code = RetCSuccess
			}
			entries[idx].Result = sm.Result{Value: uint64(code), Data: encodeWord(current)}
		default:
			entries[idx].Result = sm.Result{
				Value: uint64(RetCInvalidOperation),
				Data:  []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type)),
			}
		}
	}

	// Log if the update took long
	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("Statemachine took long to update. Batch updated %d entries, took %.2fms:", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// PrepareSnapshot copies the table. Dragonboat blocks Update while it runs,
// so the copy is a consistent point in time view.
func (fsm *WordStateMachine) PrepareSnapshot() (interface{}, error) {
	snapshot := make(map[string]uint64, fsm.words.Size())
	fsm.words.Range(func(key string, value uint64) bool {
		snapshot[key] = value
		return true
	})
	return snapshot, nil
}

// SaveSnapshot writes the table copied by PrepareSnapshot.
// Format: 8 byte count, then per word 4 byte key length, key, 8 byte value (all big endian).
func (fsm *WordStateMachine) SaveSnapshot(ctx interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, stopc <-chan struct{}) error {
	snapshot, ok := ctx.(map[string]uint64)
	if !ok {
		return fmt.Errorf("invalid snapshot context type: %T", ctx)
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(snapshot)))
	if _, err := writer.Write(buf[:]); err != nil {
		return err
	}

	for key, value := range snapshot {
		select {
		case <-stopc:
			return sm.ErrSnapshotStopped
		default:
		}

		binary.BigEndian.PutUint32(buf[:4], uint32(len(key)))
		if _, err := writer.Write(buf[:4]); err != nil {
			return err
		}
		if _, err := io.WriteString(writer, key); err != nil {
			return err
		}
		binary.BigEndian.PutUint64(buf[:], value)
		if _, err := writer.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// RecoverFromSnapshot replaces the table with the one stored in the snapshot.
func (fsm *WordStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, stopc <-chan struct{}) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	count := binary.BigEndian.Uint64(buf[:])

	words := make(map[string]uint64, count)
	for i := uint64(0); i < count; i++ {
		select {
		case <-stopc:
			return sm.ErrSnapshotStopped
		default:
		}

		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return fmt.Errorf("failed to read key length: %w", err)
		}
		key := make([]byte, binary.BigEndian.Uint32(buf[:4]))
		if _, err := io.ReadFull(r, key); err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		words[string(key)] = binary.BigEndian.Uint64(buf[:])
	}

	fsm.words.Clear()
	for key, value := range words {
		fsm.words.Store(key, value)
	}
	return nil
}

// Close performs any necessary cleanup.
func (fsm *WordStateMachine) Close() error {
	return nil
}

func encodeWord(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeWord(data []byte) (uint64, bool) {
	if len(data) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(data), true
}
