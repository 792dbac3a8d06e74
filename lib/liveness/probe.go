package liveness

import (
	"errors"
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

var log = logger.GetLogger("liveness")

// Status is the result of a liveness check.
type Status int

const (
	Unknown Status = iota // the probe cannot tell
	Alive                 // the owner is running
	Dead                  // the owner no longer exists
)

func (s Status) String() string {
	switch s {
	case Alive:
		return "running"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// IProbe checks whether an owner id is still alive.
type IProbe interface {
	Status(owner uint32) Status
}

// ProbeFunc adapts a function to IProbe.
type ProbeFunc func(owner uint32) Status

func (f ProbeFunc) Status(owner uint32) Status {
	return f(owner)
}

// None is a probe that never knows anything.
var None IProbe = ProbeFunc(func(uint32) Status { return Unknown })

// --------------------------------------------------------------------------
// /proc probe
// --------------------------------------------------------------------------

// DefaultProcRoot is the mount point of the process information pseudo-filesystem.
const DefaultProcRoot = "/proc"

type procProbe struct {
	root string
}

// NewProcProbe returns a probe that looks for <root>/<id>.
func NewProcProbe(root string) IProbe {
	return &procProbe{root: root}
}

func (p *procProbe) Status(owner uint32) Status {
	if owner == 0 {
		return Unknown
	}
	_, err := os.Stat(filepath.Join(p.root, strconv.FormatUint(uint64(owner), 10)))
	switch {
	case err == nil:
		return Alive
	case errors.Is(err, fs.ErrNotExist):
		return Dead
	default:
		log.Debugf("cannot stat %s/%d: %v", p.root, owner, err)
		return Unknown
	}
}

// hasProcFS reports whether root looks like a mounted process information filesystem.
func hasProcFS(root string) bool {
	fi, err := os.Stat(filepath.Join(root, "self"))
	return err == nil && fi.IsDir()
}

// --------------------------------------------------------------------------
// Detection
// --------------------------------------------------------------------------

var (
	detectOnce sync.Once
	detected   IProbe
)

// Detect returns the best probe available on this platform. The detection runs once per process.
func Detect() IProbe {
	detectOnce.Do(func() {
		switch {
		case hasProcFS(DefaultProcRoot):
			detected = NewProcProbe(DefaultProcRoot)
			log.Infof("liveness probe: %s", "proc")
		case signalProbeSupported:
			detected = NewSignalProbe()
			log.Infof("liveness probe: %s", "signal")
		default:
			detected = None
			log.Infof("liveness probe: %s", "none")
		}
	})
	return detected
}

// Parse returns the probe for a configuration name (auto, proc, signal, none).
func Parse(name string) (IProbe, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Detect(), nil
	case "proc":
		if !hasProcFS(DefaultProcRoot) {
			return nil, fmt.Errorf("probe proc: %s is not available", DefaultProcRoot)
		}
		return NewProcProbe(DefaultProcRoot), nil
	case "signal":
		if !signalProbeSupported {
			return nil, fmt.Errorf("probe signal: not supported on this platform")
		}
		return NewSignalProbe(), nil
	case "none":
		return None, nil
	default:
		return nil, fmt.Errorf("invalid probe %s (expected one of: auto, proc, signal, none)", name)
	}
}
