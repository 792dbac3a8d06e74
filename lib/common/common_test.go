package common

import (
	"bytes"
	"github.com/ValentinKolb/sLock/lib/liveness"
	"github.com/lni/dragonboat/v4/logger"
	"log"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	levels := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		" error ": logger.ERROR,
	}
	for name, want := range levels {
		got, err := ParseLogLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("expected error for invalid level")
	}
}

func TestLoggerFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := &slockLogger{name: "wlock", level: logger.WARNING, logger: log.New(&buf, "", 0)}

	l.Infof("hidden %d", 1)
	l.Warningf("takeover of owner %d", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message logged at warning level: %q", out)
	}
	if !strings.Contains(out, "WARN  | wlock           | takeover of owner 7") {
		t.Fatalf("unexpected log line %q", out)
	}
}

func TestLockConfig(t *testing.T) {
	conf := LockConfig{
		RegionPath:         "test.region",
		Slots:              64,
		TimeoutMillisecond: 1500,
		FastSpinIterations: 10,
		SlowSpinBatchSize:  5,
		Probe:              "none",
		LogLevel:           "info",
	}

	wconf, err := conf.ToWlockConfig()
	if err != nil {
		t.Fatalf("ToWlockConfig: %v", err)
	}
	if wconf.Timeout != 1500*time.Millisecond || wconf.FastSpinIterations != 10 || wconf.SlowSpinBatchSize != 5 {
		t.Fatalf("unexpected config %+v", wconf)
	}
	if wconf.Probe.Status(1) != liveness.Unknown {
		t.Fatalf("probe none reported a status")
	}

	s := conf.String()
	for _, want := range []string{"REGION", "test.region", "1500 ms", "Liveness Probe"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() misses %q:\n%s", want, s)
		}
	}

	conf.Probe = "magic"
	if _, err := conf.ToWlockConfig(); err == nil {
		t.Errorf("expected error for invalid probe")
	}
	conf.Probe = "none"
	conf.TimeoutMillisecond = 0
	if _, err := conf.ToWlockConfig(); err == nil {
		t.Errorf("expected error for zero timeout")
	}
}
