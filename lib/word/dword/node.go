package dword

import (
	"context"
	"fmt"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/config"
	"sort"
	"strings"
	"time"
)

// Dragonboat uses RTT (Round Trip Time) to determine the timing of elections and heartbeats.
// These default values are selected according to the RAFT Paper
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// NodeConfig holds all parameters to run a replica of the word shard.
type NodeConfig struct {
	ShardID            uint64
	ReplicaID          uint64
	ClusterMembers     map[uint64]string // replica id -> raft address
	Join               bool
	DataDir            string
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
}

// ToDragonboatConfig converts the NodeConfig to Dragonboat Config
func (c *NodeConfig) ToDragonboatConfig() config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            c.ShardID,
		ElectionRTT:        electionRTTFactor,
		HeartbeatRTT:       heartbeatRTTFactor,
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
		MaxInMemLogSize:    0,
	}
}

// ToNodeHostConfig creates a NodeHostConfig for Dragonboat
func (c *NodeConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// String returns a formatted string representation of the configuration
func (c *NodeConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Word Shard")
	addField("Shard ID", fmt.Sprintf("%d", c.ShardID))
	addField("Replica ID", fmt.Sprintf("%d", c.ReplicaID))
	addField("RAFT Address", c.ClusterMembers[c.ReplicaID])
	addField("Round Trip Time (ms)", fmt.Sprintf("%d ms", c.RTTMillisecond))
	addField("Snapshot Entries", fmt.Sprintf("%d", c.SnapshotEntries))
	addField("Compaction Overhead", fmt.Sprintf("%d", c.CompactionOverhead))
	addField("Data Directory", c.DataDir)

	addSection("Cluster Members")
	var keys []uint64
	for k := range c.ClusterMembers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("    Node %d: %s\n", k, c.ClusterMembers[k]))
	}
	return sb.String()
}

// StartNode creates a NodeHost and starts the local replica of the word shard.
// The caller owns the returned NodeHost and must Close it.
func StartNode(conf NodeConfig) (*dragonboat.NodeHost, error) {
	if _, ok := conf.ClusterMembers[conf.ReplicaID]; !ok && !conf.Join {
		return nil, fmt.Errorf("no address found for replica ID %d in cluster members", conf.ReplicaID)
	}

	log.Infof("starting word shard node:%s", conf.String())

	nh, err := dragonboat.NewNodeHost(conf.ToNodeHostConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create node host: %w", err)
	}

	if err := nh.StartConcurrentReplica(conf.ClusterMembers, conf.Join, CreateStateMachineFactory(), conf.ToDragonboatConfig()); err != nil {
		nh.Close()
		return nil, fmt.Errorf("failed to start shard %d: %w", conf.ShardID, err)
	}
	return nh, nil
}

// WaitReady blocks until the shard has elected a leader or the context is done.
func WaitReady(ctx context.Context, nh *dragonboat.NodeHost, shardID uint64) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, _, ok, err := nh.GetLeaderID(shardID); err == nil && ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("shard %d has no leader: %w", shardID, ctx.Err())
		case <-ticker.C:
		}
	}
}
