//go:build unix

package liveness

import (
	"os"
	"os/exec"
	"testing"
)

func TestSignalProbe(t *testing.T) {
	p := NewSignalProbe()

	if s := p.Status(uint32(os.Getpid())); s != Alive {
		t.Errorf("own process reported as %s", s)
	}

	// run a short lived child (the test binary without tests) and wait for it
	child := exec.Command(os.Args[0], "-test.run=^$")
	if err := child.Run(); err != nil {
		t.Fatalf("child: %v", err)
	}
	if s := p.Status(uint32(child.Process.Pid)); s != Dead {
		t.Errorf("exited child reported as %s", s)
	}

	if s := p.Status(0); s != Unknown {
		t.Errorf("Status(0) = %s, want unknown", s)
	}
	if s := p.Status(1 << 31); s != Unknown {
		t.Errorf("out of range pid reported as %s", s)
	}
}
