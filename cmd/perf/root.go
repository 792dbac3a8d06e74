package perf

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/sLock/cmd/util"
	"github.com/ValentinKolb/sLock/lib/common"
	"github.com/ValentinKolb/sLock/lib/liveness"
	"github.com/ValentinKolb/sLock/lib/lockmgr"
	"github.com/ValentinKolb/sLock/lib/word"
	"github.com/ValentinKolb/sLock/lib/word/dword"
	"github.com/ValentinKolb/sLock/lib/word/lword"
	"github.com/ValentinKolb/sLock/lib/word/mword"
	vmetrics "github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

var (
	log = logger.GetLogger("cmd")

	// PerfCmd represents the perf command
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Contention benchmark for the lock",
		Long:    util.WrapString("Runs goroutines that repeatedly acquire and release a small set of named locks and reports throughput, latency percentiles and the escalation counters."),
		PreRunE: processPerfConfig,
		RunE:    run,
	}

	perfNumThreads = 10
	perfRounds     = 3
	perfKeySpread  = 1
	perfBackend    = "local"
)

func init() {
	key := "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines competing for the locks"))
	key = "rounds"
	PerfCmd.Flags().Int(key, 3, util.WrapString("How many times to repeat the benchmark"))
	key = "keys"
	PerfCmd.Flags().Int(key, 1, util.WrapString("How many different lock keys to spread the goroutines over"))
	key = "backend"
	PerfCmd.Flags().String(key, "local", util.WrapString("Lock word backend: local (process memory), mapped (region file) or replicated (single node raft shard)"))
	key = "raft-address"
	PerfCmd.Flags().String(key, "localhost:63001", util.WrapString("Raft address of the node started for the replicated backend"))
	key = "metrics"
	PerfCmd.Flags().Bool(key, false, util.WrapString("Print the lock metrics in the Prometheus text format after the benchmark"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	perfNumThreads = viper.GetInt("threads")
	perfRounds = viper.GetInt("rounds")
	perfKeySpread = viper.GetInt("keys")
	perfBackend = viper.GetString("backend")

	if perfNumThreads < 1 || perfRounds < 1 || perfKeySpread < 1 {
		return fmt.Errorf("threads, rounds and keys must be at least 1")
	}
	return nil
}

// result of one benchmark round
type result struct {
	bench      testing.BenchmarkResult
	timer      metrics.Timer
	violations int64
}

func run(_ *cobra.Command, _ []string) error {
	conf := util.GetLockConfig()

	fmt.Println("Contention benchmark for sLock")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conf.String())
	fmt.Printf("Backend: %s\nThreads: %d\nKeys: %d\n", perfBackend, perfNumThreads, perfKeySpread)
	fmt.Println()

	wconf, err := conf.ToWlockConfig()
	if err != nil {
		return err
	}
	// owners are goroutines of this process, their ids are no process ids
	wconf.Probe = liveness.None

	table, cleanup, err := openBackend(conf)
	if err != nil {
		return err
	}
	defer cleanup()

	mgr := lockmgr.NewLockManager(table, wconf)
	registry := metrics.NewRegistry()

	fmt.Println("staring tests...")

	results := make([]result, 0, perfRounds)
	for round := 1; round <= perfRounds; round++ {
		timer := metrics.NewTimer()
		if err := registry.Register(fmt.Sprintf("acquire.round-%d", round), timer); err != nil {
			return err
		}

		r := runRound(mgr, timer)
		results = append(results, r)
		printResult(fmt.Sprintf("round %d", round), r)
	}

	if viper.GetBool("metrics") {
		fmt.Println()
		vmetrics.WritePrometheus(os.Stdout, false)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, conf); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	for _, r := range results {
		if r.violations > 0 {
			return fmt.Errorf("mutual exclusion violated %d times", r.violations)
		}
	}
	return nil
}

// runRound runs one parallel benchmark of acquire/release pairs
func runRound(mgr lockmgr.ILockManager, timer metrics.Timer) result {
	keys := make([]string, perfKeySpread)
	inside := make([]atomic.Int32, perfKeySpread)
	for i := range keys {
		keys[i] = fmt.Sprintf("__perf-%d", i)
	}

	var ownerSeq atomic.Uint32
	var violations atomic.Int64

	bench := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			owner := ownerSeq.Add(1)
			counter := int(owner)
			for pb.Next() {
				i := counter % perfKeySpread
				counter++

				start := time.Now()
				if err := mgr.AcquireLock(context.Background(), keys[i], owner); err != nil {
					log.Errorf("(acquire) - error acquiring %s: %v", keys[i], err)
					continue
				}
				timer.UpdateSince(start)

				if inside[i].Add(1) != 1 {
					violations.Add(1)
				}
				inside[i].Add(-1)

				if err := mgr.ReleaseLock(keys[i], owner); err != nil {
					log.Errorf("(release) - error releasing %s: %v", keys[i], err)
				}
			}
		})
	})

	return result{bench: bench, timer: timer, violations: violations.Load()}
}

// openBackend creates the word table the benchmark runs on and a function releasing it
func openBackend(conf *common.LockConfig) (word.IWordTable, func(), error) {
	switch perfBackend {
	case "local":
		return lword.NewTable(conf.Slots), func() {}, nil

	case "mapped":
		dir, err := os.MkdirTemp("", "slock-perf-")
		if err != nil {
			return nil, nil, err
		}
		region, err := mword.Open(filepath.Join(dir, "perf.region"), conf.Slots)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, nil, err
		}
		return region, func() {
			_ = region.Close()
			_ = os.RemoveAll(dir)
		}, nil

	case "replicated":
		dir, err := os.MkdirTemp("", "slock-raft-")
		if err != nil {
			return nil, nil, err
		}
		nodeConf := dword.NodeConfig{
			ShardID:            1,
			ReplicaID:          1,
			ClusterMembers:     map[uint64]string{1: viper.GetString("raft-address")},
			DataDir:            dir,
			RTTMillisecond:     10,
			SnapshotEntries:    10_000,
			CompactionOverhead: 5_000,
		}
		nh, err := dword.StartNode(nodeConf)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := dword.WaitReady(ctx, nh, nodeConf.ShardID); err != nil {
			nh.Close()
			_ = os.RemoveAll(dir)
			return nil, nil, err
		}
		table := dword.NewDistributedTable(nh, nodeConf.ShardID, "perf", conf.Slots, 5*time.Second)
		return table, func() {
			nh.Close()
			_ = os.RemoveAll(dir)
		}, nil

	default:
		return nil, nil, fmt.Errorf("invalid backend %s (expected one of: local, mapped, replicated)", perfBackend)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// percentiles reported for the acquire latency
var percentiles = []float64{0.5, 0.95, 0.99}

// printResult prints the result of a benchmark round in a formatted way
func printResult(name string, r result) {
	nsPerOp := math.Max(float64(r.bench.NsPerOp()), 1)
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	ps := r.timer.Percentiles(percentiles)
	fmt.Printf("%-12s%.0fns/op (%s/op)\t%.0f ops/sec\tacquire p50=%s p95=%s p99=%s (n=%d)\n",
		name, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]), r.timer.Count())
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []result, conf *common.LockConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Round", "NsPerOp", "OpsPerSec", "AcquireP50Ns", "AcquireP95Ns", "AcquireP99Ns", "Violations",
		"Backend", "Threads", "Keys", "Slots", "TimeoutMs", "FastSpin", "SlowBatch",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for i, r := range results {
		nsPerOp := math.Max(float64(r.bench.NsPerOp()), 1)
		ps := r.timer.Percentiles(percentiles)

		row := []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.0f", nsPerOp),
			fmt.Sprintf("%.0f", 1.0/(nsPerOp/1e9)),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			strconv.FormatInt(r.violations, 10),
			perfBackend,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
			strconv.Itoa(conf.Slots),
			strconv.FormatInt(conf.TimeoutMillisecond, 10),
			strconv.Itoa(conf.FastSpinIterations),
			strconv.Itoa(conf.SlowSpinBatchSize),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for round %d: %v", i+1, err)
		}
	}
	return nil
}
