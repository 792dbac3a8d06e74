package cmd

import (
	"fmt"
	"github.com/ValentinKolb/sLock/cmd/lock"
	"github.com/ValentinKolb/sLock/cmd/perf"
	"github.com/ValentinKolb/sLock/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "slock",
		Short: "shared memory lock for cooperating processes",
		Long: fmt.Sprintf(`sLock (v%s)

An exclusive lock on a single 64-bit word shared by cooperating processes.
Waiters escalate from busy spinning to yielding and finally take the lock
over from owners that died or held it longer than the timeout.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sLock",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sLock v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupLockFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
