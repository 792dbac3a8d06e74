package dword

import (
	"context"
	"errors"
	"github.com/ValentinKolb/sLock/lib/word"
	"testing"
	"time"
)

// TestSingleNodeWords starts a one node shard and runs the word operations through raft.
func TestSingleNodeWords(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a raft node")
	}

	conf := NodeConfig{
		ShardID:            1,
		ReplicaID:          1,
		ClusterMembers:     map[uint64]string{1: "localhost:63101"},
		DataDir:            t.TempDir(),
		RTTMillisecond:     10,
		SnapshotEntries:    100,
		CompactionOverhead: 50,
	}
	nh, err := StartNode(conf)
	if err != nil {
		t.Fatalf("StartNode: %v", err)
	}
	defer nh.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := WaitReady(ctx, nh, conf.ShardID); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}

	w := NewDistributedWord(nh, conf.ShardID, "single", 5*time.Second)
	if w.Load() != 0 {
		t.Fatalf("missing word does not read as 0")
	}
	if !w.CompareAndSwap(0, word.Pack(0, 11)) {
		t.Fatalf("CAS from zero failed")
	}
	if w.CompareAndSwap(0, word.Pack(0, 12)) {
		t.Fatalf("stale CAS succeeded")
	}
	if got := w.Load(); got != word.Pack(0, 11) {
		t.Fatalf("Load() = %s, want owner=11", word.Describe(got))
	}

	table := NewDistributedTable(nh, conf.ShardID, "table", 4, 5*time.Second)
	if table.Slots() != 4 {
		t.Fatalf("Slots() = %d, want 4", table.Slots())
	}
	s0, _ := table.Slot(0)
	s1, _ := table.Slot(1)
	if !s0.CompareAndSwap(0, 1) || s1.Load() != 0 {
		t.Fatalf("table slots are not independent")
	}
	if _, err := table.Slot(4); !errors.Is(err, word.ErrSlotOutOfRange) {
		t.Fatalf("Slot(4): err = %v, want ErrSlotOutOfRange", err)
	}
}
