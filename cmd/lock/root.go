package lock

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/sLock/cmd/util"
	"github.com/ValentinKolb/sLock/lib/common"
	"github.com/ValentinKolb/sLock/lib/liveness"
	"github.com/ValentinKolb/sLock/lib/lockmgr"
	"github.com/ValentinKolb/sLock/lib/word"
	"github.com/ValentinKolb/sLock/lib/word/mword"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	log = logger.GetLogger("cmd")

	lockConf *common.LockConfig
	lockMgr  lockmgr.ILockManager
	region   *mword.Region

	ownerID   uint32
	hold      time.Duration
	noRelease bool

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:               "lock",
		Short:             "Perform lock operations on the shared region",
		PersistentPreRunE: setupLockManager,
	}

	// initCmd represents the init command
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the region file or check an existing one",
		Args:  cobra.NoArgs,
		RunE:  withRegion(runInit),
	}

	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire [key]",
		Short: "Acquire a lock, blocking until it is free or taken over",
		Long: util.WrapString("Acquire a lock and hold it until --hold elapses or the process is interrupted, then release it. " +
			"With --no-release the lock is left held on exit, which is what a crashed owner looks like to other processes."),
		Args: cobra.ExactArgs(1),
		RunE: withRegion(runAcquire),
	}

	// tryCmd represents the try command
	tryCmd = &cobra.Command{
		Use:   "try [key]",
		Short: "Make a single attempt to acquire a lock and keep it on success",
		Args:  cobra.ExactArgs(1),
		RunE:  withRegion(runTry),
	}

	// releaseCmd represents the release command
	releaseCmd = &cobra.Command{
		Use:   "release [key]",
		Short: "Release a lock held by --owner",
		Args:  cobra.ExactArgs(1),
		RunE:  withRegion(runRelease),
	}

	// inspectCmd represents the inspect command
	inspectCmd = &cobra.Command{
		Use:   "inspect [key]",
		Short: "Show the owner of a lock, or of every held slot if no key is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withRegion(runInspect),
	}
)

func init() {
	LockCommands.AddCommand(initCmd)
	LockCommands.AddCommand(acquireCmd)
	LockCommands.AddCommand(tryCmd)
	LockCommands.AddCommand(releaseCmd)
	LockCommands.AddCommand(inspectCmd)

	for _, cmd := range []*cobra.Command{acquireCmd, tryCmd, releaseCmd} {
		cmd.Flags().Uint32Var(&ownerID, "owner", uint32(os.Getpid()), util.WrapString("Owner id (defaults to the process id, which lets the liveness probe detect crashed owners)"))
	}

	acquireCmd.Flags().DurationVar(&hold, "hold", 0, util.WrapString("How long to hold the lock (0 holds it until interrupted)"))
	acquireCmd.Flags().BoolVar(&noRelease, "no-release", false, util.WrapString("Exit without releasing the lock"))
}

// setupLockManager maps the region and creates the lock manager
func setupLockManager(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	lockConf = util.GetLockConfig()
	log.Debugf("configuration:%s", lockConf.String())

	var err error
	lockMgr, region, err = util.OpenLockManager(lockConf)
	return err
}

// withRegion closes the region after run, also when run fails
func withRegion(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if region != nil {
			if closeErr := region.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		return err
	}
}

// runInit handles the init command, the region was already created or validated by setupLockManager
func runInit(_ *cobra.Command, _ []string) error {
	fmt.Printf("region=%s, slots=%d\n", region.Path(), region.Slots())
	return nil
}

// runAcquire handles the acquire lock command
func runAcquire(_ *cobra.Command, args []string) error {
	key := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := lockMgr.AcquireLock(ctx, key, ownerID); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	fmt.Printf("acquired=true, owner=%d, waited=%s\n", ownerID, time.Since(start))

	if hold > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(hold):
		}
	} else {
		<-ctx.Done()
	}

	if noRelease {
		fmt.Printf("released=false, owner=%d\n", ownerID)
		return nil
	}

	if err := lockMgr.ReleaseLock(key, ownerID); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	fmt.Printf("released=true, owner=%d\n", ownerID)
	return nil
}

// runTry handles the try lock command
func runTry(_ *cobra.Command, args []string) error {
	acquired, err := lockMgr.TryAcquireLock(args[0], ownerID)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	fmt.Printf("acquired=%v, owner=%d\n", acquired, ownerID)
	return nil
}

// runRelease handles the release lock command
func runRelease(_ *cobra.Command, args []string) error {
	if err := lockMgr.ReleaseLock(args[0], ownerID); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	fmt.Printf("released=true, owner=%d\n", ownerID)
	return nil
}

// runInspect handles the inspect command
func runInspect(_ *cobra.Command, args []string) error {
	if len(args) == 1 {
		state, err := lockMgr.Inspect(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("key=%s, slot=%d, owner=%d, previous=%d, liveness=%s\n",
			state.Key, state.Slot, state.Owner, state.Previous, state.Liveness)
		return nil
	}

	probe, err := liveness.Parse(lockConf.Probe)
	if err != nil {
		return err
	}

	held := 0
	for i := 0; i < region.Slots(); i++ {
		w, err := region.Slot(i)
		if err != nil {
			return err
		}
		v := w.Load()
		if word.Owner(v) == word.Unlocked {
			continue
		}
		held++
		fmt.Printf("slot=%d, owner=%d, previous=%d, liveness=%s\n",
			i, word.Owner(v), word.Previous(v), probe.Status(word.Owner(v)))
	}
	fmt.Printf("held=%d, slots=%d\n", held, region.Slots())
	return nil
}
