package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tempkeeper/internal/config"
)

func writeAged(t *testing.T, path string, age time.Duration, now time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
	stamp := now.Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("Chtimes %s: %v", path, err)
	}
}

func mkdirAged(t *testing.T, path string, age time.Duration, now time.Time) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("Mkdir %s: %v", path, err)
	}
	stamp := now.Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("Chtimes %s: %v", path, err)
	}
}

func TestScanFindsStalePrefixedFiles(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	writeAged(t, filepath.Join(root, "atmp_old.tmp"), 48*time.Hour, now)
	writeAged(t, filepath.Join(root, "atmp_fresh.tmp"), time.Hour, now)
	writeAged(t, filepath.Join(root, "unrelated.txt"), 48*time.Hour, now)

	cfg := &config.Config{Sweeps: []config.SweepRule{
		{Path: root, Prefix: "atmp_", MaxAgeHours: 24},
	}}

	cands, err := Scan(cfg, now)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("Scan returned %d candidates, want 1: %+v", len(cands), cands)
	}

	c := cands[0]
	if filepath.Base(c.Path) != "atmp_old.tmp" {
		t.Errorf("candidate = %s, want atmp_old.tmp", c.Path)
	}
	if c.IsDir {
		t.Error("candidate is a file, IsDir must be false")
	}
	if !c.Reason.HasReason() {
		t.Error("candidate must carry a staleness reason")
	}
}

func TestScanSkipsDirectoriesUnlessRecursive(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	mkdirAged(t, filepath.Join(root, "atmp_dir"), 48*time.Hour, now)

	rule := config.SweepRule{Path: root, Prefix: "atmp_", MaxAgeHours: 24}

	cands, err := Scan(&config.Config{Sweeps: []config.SweepRule{rule}}, now)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != 0 {
		t.Fatalf("non-recursive rule matched a directory: %+v", cands)
	}

	rule.Recursive = true
	cands, err = Scan(&config.Config{Sweeps: []config.SweepRule{rule}}, now)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != 1 || !cands[0].IsDir {
		t.Fatalf("recursive rule must return the directory: %+v", cands)
	}
}

func TestScanUnreadableRootStillReturnsOthers(t *testing.T) {
	good := t.TempDir()
	now := time.Now()
	writeAged(t, filepath.Join(good, "atmp_old.tmp"), 48*time.Hour, now)

	cfg := &config.Config{Sweeps: []config.SweepRule{
		{Path: filepath.Join(good, "does-not-exist"), Prefix: "atmp_", MaxAgeHours: 24},
		{Path: good, Prefix: "atmp_", MaxAgeHours: 24},
	}}

	cands, err := Scan(cfg, now)
	if err == nil {
		t.Error("Scan must report the unreadable root")
	}
	if len(cands) != 1 {
		t.Fatalf("Scan returned %d candidates, want 1 from the readable root", len(cands))
	}
}

func TestScanNoRules(t *testing.T) {
	if _, err := Scan(nil, time.Now()); !errors.Is(err, errNoRules) {
		t.Errorf("Scan(nil) = %v, want errNoRules", err)
	}
	if _, err := Scan(&config.Config{}, time.Now()); !errors.Is(err, errNoRules) {
		t.Errorf("Scan(empty) = %v, want errNoRules", err)
	}
}

func TestStaleReasonLogString(t *testing.T) {
	r := StaleReason{
		Prefix:    "atmp_",
		MaxAge:    24 * time.Hour,
		ActualAge: 37 * time.Hour,
	}
	want := "stale: age=37h (max=24h) prefix=atmp_"
	if got := r.ToLogString(); got != want {
		t.Errorf("ToLogString() = %q, want %q", got, want)
	}

	if got := (StaleReason{}).ToLogString(); got != "unknown" {
		t.Errorf("empty reason ToLogString() = %q, want unknown", got)
	}
}
