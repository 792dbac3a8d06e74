package util

import (
	"fmt"
	"github.com/ValentinKolb/sLock/lib/common"
	"github.com/ValentinKolb/sLock/lib/lockmgr"
	"github.com/ValentinKolb/sLock/lib/word/mword"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, w := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(w) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(w)
		lineWidth += len(w)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

// SetupLockFlags adds the region and escalation flags shared by all commands.
func SetupLockFlags(cmd *cobra.Command) {
	key := "region"
	cmd.PersistentFlags().String(key, "slock.region", WrapString("Path of the shared lock region file (use a tmpfs path like /dev/shm/app.slock for best performance)"))

	key = "slots"
	cmd.PersistentFlags().Int(key, 1024, WrapString("Number of lock words in the region. Every process mapping the region must use the same value"))

	key = "timeout-ms"
	cmd.PersistentFlags().Int64(key, 10_000, WrapString("Time in milliseconds a waiter gives the same owner before it takes the lock over"))

	key = "fast-spin"
	cmd.PersistentFlags().Int(key, 20_000, WrapString("Number of busy attempts before the waiter starts yielding"))

	key = "slow-batch"
	cmd.PersistentFlags().Int(key, 100, WrapString("Number of yielding attempts between two checks of the owner"))

	key = "probe"
	cmd.PersistentFlags().String(key, "auto", WrapString("Liveness probe for lock owners (auto, proc, signal, none)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig loads .env files and initializes viper to read SLOCK_* environment variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("slock")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper and initializes the loggers
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return common.InitLoggers(viper.GetString("log-level"))
}

// GetLockConfig reads the lock configuration from viper
func GetLockConfig() *common.LockConfig {
	return &common.LockConfig{
		RegionPath:         viper.GetString("region"),
		Slots:              viper.GetInt("slots"),
		TimeoutMillisecond: viper.GetInt64("timeout-ms"),
		FastSpinIterations: viper.GetInt("fast-spin"),
		SlowSpinBatchSize:  viper.GetInt("slow-batch"),
		Probe:              viper.GetString("probe"),
		LogLevel:           viper.GetString("log-level"),
	}
}

// OpenLockManager maps the configured region and creates a lock manager on it.
// The caller must close the returned region.
func OpenLockManager(conf *common.LockConfig) (lockmgr.ILockManager, *mword.Region, error) {
	wconf, err := conf.ToWlockConfig()
	if err != nil {
		return nil, nil, err
	}

	region, err := mword.Open(conf.RegionPath, conf.Slots)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open region %s: %w", conf.RegionPath, err)
	}
	return lockmgr.NewLockManager(region, wconf), region, nil
}
