// Package dword implements lock words replicated with the Dragonboat RAFT
// consensus library. Every word is an entry of a replicated table; a
// compare-and-swap is a RAFT log entry, so it is linearizable across all nodes
// of the shard. This lets the lock protect a critical section shared by
// processes on different machines, at the cost of one consensus round per
// CAS.
//
// Architecture:
//
//   - Word Client (word.go): implements word.IWord and word.IWordTable. Load
//     is a SyncRead, CompareAndSwap a SyncPropose. Both retry on
//     dragonboat.ErrSystemBusy.
//
//   - State Machine (statemachine.go): a Dragonboat IConcurrentStateMachine
//     holding the table in an xsync.MapOf. Update applies CAS commands one by
//     one; Lookup serves loads concurrently.
//
//   - Communication Protocol: the internal package defines the binary Command
//     and the Query structures.
//
//   - Node (node.go): NodeConfig, StartNode and WaitReady to run a replica of
//     the shard.
//
// Error Model:
//
//	word.IWord has no error channel. A CAS that could not be committed
//	reports false (the lock treats it like a lost race and retries). A Load
//	that fails returns the last value the handle has observed. Both cases are
//	logged as warnings.
//
// Usage Example:
//
//	nh, err := dword.StartNode(dword.NodeConfig{
//	    ShardID:        300,
//	    ReplicaID:      1,
//	    ClusterMembers: map[uint64]string{1: "localhost:63001"},
//	    DataDir:        "data",
//	    RTTMillisecond: 100,
//	})
//	if err != nil { ... }
//	defer nh.Close()
//
//	w := dword.NewDistributedWord(nh, 300, "locks/jobs", 5*time.Second)
//	lock := wlock.New(w, wlock.Config{})
package dword
