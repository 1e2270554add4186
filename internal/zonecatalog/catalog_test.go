package zonecatalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/metrics"
	"github.com/starford/tempus/internal/testutil"
	"github.com/starford/tempus/internal/timezone"
)

const easternYAML = `id: Test/Eastern
initial_offset: "-05:00"
transitions:
  - at: "2021-03-14T07:00:00Z"
    offset: "-04:00"
  - at: "2021-11-07T06:00:00Z"
    offset: "-05:00"
`

const fixedYAML = `id: Test/Fixed
initial_offset: "+05:30"
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestOpenLoadsZones(t *testing.T) {
	dir := testutil.CatalogDir(t, map[string]string{
		"eastern.yaml":     easternYAML,
		"nested/fixed.yml": fixedYAML,
		"README.md":        "not a zone",
		".hidden.yaml":     "id: [",
	})
	c, err := Open(dir, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	tz, ok := c.Lookup("Test/Eastern")
	if !ok {
		t.Fatal("Test/Eastern not found")
	}
	off, err := tz.OffsetNanosecondsFor(testutil.UTCInstant(t, 2021, 7, 1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if off != -testutil.Hours(4) {
		t.Errorf("summer offset = %d, want -4h", off)
	}
	if _, ok := c.Lookup("Test/Missing"); ok {
		t.Error("unexpected zone Test/Missing")
	}

	for _, z := range c.Zones() {
		if z.ID == "Test/Eastern" && z.Transitions != 2 {
			t.Errorf("transitions = %d, want 2", z.Transitions)
		}
		if z.ID == "Test/Fixed" && z.File != filepath.Join("nested", "fixed.yml") {
			t.Errorf("file = %q", z.File)
		}
		if len(z.Checksum) != 64 {
			t.Errorf("checksum %q is not sha256 hex", z.Checksum)
		}
	}
}

func TestOpenReportsBadFiles(t *testing.T) {
	dir := testutil.CatalogDir(t, map[string]string{
		"good.yaml":  fixedYAML,
		"bad.yaml":   "id: Test/Bad\ninitial_offset: \"+25:00\"\n",
		"noid.yaml":  "initial_offset: \"+01:00\"\n",
		"badat.yaml": "id: Test/BadAt\ninitial_offset: \"+01:00\"\ntransitions:\n  - at: yesterday\n    offset: \"+02:00\"\n",
		"dup.yaml":   "id: Test/Fixed\ninitial_offset: \"+01:00\"\n",
	})
	c, err := Open(dir, WithLogger(quietLogger()))
	if err == nil {
		t.Fatal("expected load errors")
	}
	if !errors.Is(err, apperr.ErrInvalidOption) {
		t.Errorf("err = %v, want invalid option", err)
	}
	if !errors.Is(err, apperr.ErrInvalidFieldCombination) {
		t.Errorf("err = %v, want duplicate zone error", err)
	}
	if c == nil || c.Len() != 1 {
		t.Fatalf("catalog should keep the one good zone")
	}
}

func TestOpenMissingDir(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestSyncPicksUpChanges(t *testing.T) {
	dir := testutil.CatalogDir(t, map[string]string{"fixed.yaml": fixedYAML})
	m := metrics.New(nil, "")
	c, err := Open(dir, WithLogger(quietLogger()), WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "fixed.yaml"), []byte("id: Test/Fixed\ninitial_offset: \"+06:00\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "eastern.yaml"), []byte(easternYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Sync(); err != nil {
		t.Fatal(err)
	}
	tz, _ := c.Lookup("Test/Fixed")
	if off, _ := tz.OffsetNanosecondsFor(testutil.UTCInstant(t, 2000, 1, 1, 0, 0)); off != testutil.Hours(6) {
		t.Errorf("offset = %d, want +6h after rewrite", off)
	}

	if err := os.Remove(filepath.Join(dir, "fixed.yaml")); err != nil {
		t.Fatal(err)
	}
	if err := c.Sync(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Lookup("Test/Fixed"); ok {
		t.Error("removed zone still present")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestRegistryConsultsCatalog(t *testing.T) {
	dir := testutil.CatalogDir(t, map[string]string{"eastern.yaml": easternYAML})
	c, err := Open(dir, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	reg := timezone.NewRegistry(time.Minute, c.Lookup)
	tz, err := reg.Get("Test/Eastern")
	if err != nil {
		t.Fatal(err)
	}
	if tz.ID() != "Test/Eastern" {
		t.Errorf("id = %q", tz.ID())
	}
	if reg.Cached() != 0 {
		t.Error("catalog zones must not be memoized")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := testutil.CatalogDir(t, map[string]string{"fixed.yaml": fixedYAML})
	c, err := Open(dir, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var reloads []int
	go c.Watch(ctx, func(zones int, err error) {
		mu.Lock()
		reloads = append(reloads, zones)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "eastern.yaml"), []byte(easternYAML), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := c.Lookup("Test/Eastern")
		return ok
	}, "new zone not loaded by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloads) > 0 && reloads[len(reloads)-1] == 2
	}, "expected reload callback with 2 zones")

	sub := filepath.Join(dir, "more")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(300 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "other.yaml"), []byte("id: Test/Other\ninitial_offset: \"+01:00\"\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := c.Lookup("Test/Other")
		return ok
	}, "zone in new subdir not loaded by watcher")
}
