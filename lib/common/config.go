package common

import (
	"fmt"
	"github.com/ValentinKolb/sLock/lib/liveness"
	"github.com/ValentinKolb/sLock/lib/wlock"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Lock configuration struct
// --------------------------------------------------------------------------

// LockConfig holds the resolved command line configuration of the locks.
type LockConfig struct {
	// shared region
	RegionPath string
	Slots      int

	// escalation parameters
	TimeoutMillisecond int64
	FastSpinIterations int
	SlowSpinBatchSize  int
	Probe              string

	// Logging configuration
	LogLevel string
}

// Timeout returns the takeover timeout as a duration.
func (c *LockConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillisecond) * time.Millisecond
}

// ToWlockConfig resolves the probe name and converts the configuration for wlock.New.
func (c *LockConfig) ToWlockConfig() (wlock.Config, error) {
	if c.TimeoutMillisecond <= 0 {
		return wlock.Config{}, fmt.Errorf("invalid timeout %d ms (must be > 0)", c.TimeoutMillisecond)
	}
	probe, err := liveness.Parse(c.Probe)
	if err != nil {
		return wlock.Config{}, err
	}
	return wlock.Config{
		Timeout:            c.Timeout(),
		FastSpinIterations: c.FastSpinIterations,
		SlowSpinBatchSize:  c.SlowSpinBatchSize,
		Probe:              probe,
	}, nil
}

// String returns a formatted string representation of the configuration
func (c *LockConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Region")
	addField("Path", c.RegionPath)
	addField("Slots", strconv.Itoa(c.Slots))

	addSection("Escalation")
	addField("Timeout", fmt.Sprintf("%d ms", c.TimeoutMillisecond))
	addField("Fast Spin Iterations", strconv.Itoa(c.FastSpinIterations))
	addField("Slow Spin Batch Size", strconv.Itoa(c.SlowSpinBatchSize))
	addField("Liveness Probe", c.Probe)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
