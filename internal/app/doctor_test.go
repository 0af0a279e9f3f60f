package app

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/blackwell-systems/lodescan/internal/report"
)

func TestCheckConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if c := checkConfigFile(""); !c.Passed || c.Message != "using defaults" {
		t.Errorf("default config: %+v", c)
	}

	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if c := checkConfigFile(missing); c.Passed {
		t.Errorf("expected failure for missing explicit file, got %+v", c)
	}

	present := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(present, []byte("threads: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := checkConfigFile(present); !c.Passed || c.Message != present {
		t.Errorf("explicit config: %+v", c)
	}
}

func TestCheckRules(t *testing.T) {
	c := checkRules("")
	if !c.Passed {
		t.Fatalf("built-in rules failed: %+v", c)
	}
	if !strings.Contains(c.Message, "25 patterns in 8 groups, 3 bonuses") {
		t.Errorf("unexpected message %q", c.Message)
	}

	bad := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(bad, []byte("patterns: [{category: x, patterns: ['[']}]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := checkRules(bad); c.Passed {
		t.Errorf("expected invalid rules to fail, got %+v", c)
	}
}

func TestCheckOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if c := checkOutputDir(dir); !c.Passed {
		t.Fatalf("expected pass, got %+v", c)
	}

	held := flock.New(filepath.Join(dir, report.LockFileName))
	if err := held.Lock(); err != nil {
		t.Fatal(err)
	}
	defer held.Unlock()

	if c := checkOutputDir(dir); c.Passed || !strings.Contains(c.Message, "locked") {
		t.Errorf("expected locked failure, got %+v", c)
	}
}

func TestCheckThreads(t *testing.T) {
	if c := checkThreads(1); !c.Passed {
		t.Errorf("1 thread should pass: %+v", c)
	}
	if c := checkThreads(runtime.NumCPU()*4 + 1); c.Passed {
		t.Errorf("oversubscription should fail: %+v", c)
	}
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	if c := checkSource(dir); !c.Passed {
		t.Errorf("expected pass, got %+v", c)
	}
	if c := checkSource(filepath.Join(dir, "missing")); c.Passed {
		t.Errorf("expected failure, got %+v", c)
	}

	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := checkSource(file); c.Passed || !strings.Contains(c.Message, "not a directory") {
		t.Errorf("expected not-a-directory failure, got %+v", c)
	}
}

func TestRenderDoctorCheck(t *testing.T) {
	var buf bytes.Buffer
	renderDoctorCheck(&buf, doctorCheck{Name: "Rules", Passed: true, Message: "built-in"})
	renderDoctorCheck(&buf, doctorCheck{Name: "Scan source", Message: "not found"})

	out := buf.String()
	if !strings.Contains(out, "✓") || !strings.Contains(out, "✗") {
		t.Errorf("missing indicators in %q", out)
	}
}
