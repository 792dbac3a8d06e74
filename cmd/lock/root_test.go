//go:build unix

package lock

import (
	"errors"
	"github.com/ValentinKolb/sLock/cmd/util"
	"github.com/ValentinKolb/sLock/lib/wlock"
	"github.com/ValentinKolb/sLock/lib/word/mword"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"path/filepath"
	"testing"
)

// execute runs the lock command group below a fresh root command.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := &cobra.Command{Use: "slock", SilenceUsage: true, SilenceErrors: true}
	util.SetupLockFlags(root)
	root.AddCommand(LockCommands)
	t.Cleanup(func() { root.RemoveCommand(LockCommands) })

	root.SetArgs(args)
	return root.Execute()
}

func TestRegionClosedAfterSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.region")

	if err := execute(t, "lock", "try", "key", "--owner", "5", "--region", path, "--slots", "8", "--probe", "none"); err != nil {
		t.Fatalf("lock try: %v", err)
	}
	if _, err := region.Slot(0); !errors.Is(err, mword.ErrClosed) {
		t.Fatalf("region still open after the command: err = %v", err)
	}
}

func TestRegionClosedAfterError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "err.region")

	err := execute(t, "lock", "release", "key", "--owner", "0", "--region", path, "--slots", "8", "--probe", "none")
	if !errors.Is(err, wlock.ErrInvalidOwnerID) {
		t.Fatalf("lock release --owner 0: err = %v, want ErrInvalidOwnerID", err)
	}
	if _, err := region.Slot(0); !errors.Is(err, mword.ErrClosed) {
		t.Fatalf("region still open after the failed command: err = %v", err)
	}
}
