package liveness

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeProc builds a directory that looks like /proc with the given pids.
func fakeProc(t *testing.T, pids ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, pid := range append(pids, "self") {
		if err := os.Mkdir(filepath.Join(root, pid), 0o755); err != nil {
			t.Fatalf("Mkdir: %v", err)
		}
	}
	return root
}

func TestProcProbe(t *testing.T) {
	p := NewProcProbe(fakeProc(t, "42"))

	if s := p.Status(42); s != Alive {
		t.Errorf("Status(42) = %s, want running", s)
	}
	if s := p.Status(43); s != Dead {
		t.Errorf("Status(43) = %s, want dead", s)
	}
	if s := p.Status(0); s != Unknown {
		t.Errorf("Status(0) = %s, want unknown", s)
	}
}

func TestProcProbeUnreadableRoot(t *testing.T) {
	// a regular file as root makes every lookup fail with ENOTDIR
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if s := NewProcProbe(root).Status(1); s != Unknown {
		t.Errorf("Status() = %s, want unknown", s)
	}
}

func TestHasProcFS(t *testing.T) {
	if !hasProcFS(fakeProc(t)) {
		t.Errorf("fake proc root not detected")
	}
	if hasProcFS(t.TempDir()) {
		t.Errorf("empty directory detected as proc root")
	}
}

func TestProcProbeSelf(t *testing.T) {
	if !hasProcFS(DefaultProcRoot) {
		t.Skip("no /proc on this platform")
	}
	if s := NewProcProbe(DefaultProcRoot).Status(uint32(os.Getpid())); s != Alive {
		t.Errorf("own process reported as %s", s)
	}
}

func TestNone(t *testing.T) {
	for _, id := range []uint32{0, 1, uint32(os.Getpid())} {
		if s := None.Status(id); s != Unknown {
			t.Errorf("None.Status(%d) = %s, want unknown", id, s)
		}
	}
}

func TestProbeFunc(t *testing.T) {
	p := ProbeFunc(func(owner uint32) Status {
		if owner == 7 {
			return Dead
		}
		return Alive
	})
	if p.Status(7) != Dead || p.Status(8) != Alive {
		t.Errorf("ProbeFunc does not delegate")
	}
}

func TestStatusString(t *testing.T) {
	if Alive.String() != "running" || Dead.String() != "dead" || Unknown.String() != "unknown" {
		t.Errorf("unexpected status names")
	}
}

func TestDetectIsStable(t *testing.T) {
	if Detect() != Detect() {
		t.Errorf("Detect returned different probes")
	}
}

func TestParse(t *testing.T) {
	for _, name := range []string{"", "auto", "AUTO", "none"} {
		if _, err := Parse(name); err != nil {
			t.Errorf("Parse(%q): %v", name, err)
		}
	}
	if p, _ := Parse("none"); p.Status(1) != Unknown {
		t.Errorf("Parse(none) is not the none probe")
	}
	if _, err := Parse("telepathy"); err == nil {
		t.Errorf("Parse accepted an invalid name")
	}
}
