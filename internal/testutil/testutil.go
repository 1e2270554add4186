// Package testutil provides shared fixtures: zones with known transitions
// and temporary zone catalog directories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/timezone"
	"github.com/starford/tempus/internal/units"
)

// Hours converts whole hours to nanoseconds.
func Hours(h int64) int64 { return h * units.NanoInHour }

// UTCInstant returns the epoch of a UTC wall-clock reading.
func UTCInstant(t *testing.T, y, mo, d, h, mi int) daytime.Nano {
	t.Helper()
	e, err := iso.NewDateTime(iso.Date{Year: y, Month: mo, Day: d}, iso.Time{Hour: h, Minute: mi}).EpochNano()
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// DSTZone mimics US Eastern time in 2021: -05:00, springing forward at
// 2021-03-14 02:00 local and falling back at 2021-11-07 02:00 local.
func DSTZone(t *testing.T) *timezone.Table {
	t.Helper()
	tz, err := timezone.NewTable("Test/Eastern", -Hours(5), []timezone.Transition{
		{At: UTCInstant(t, 2021, 3, 14, 7, 0), Offset: -Hours(4)},
		{At: UTCInstant(t, 2021, 11, 7, 6, 0), Offset: -Hours(5)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tz
}

// MidnightGapZone skips local midnight on 2018-11-04, going from -03:00 to
// -02:00 at 00:00 local.
func MidnightGapZone(t *testing.T) *timezone.Table {
	t.Helper()
	tz, err := timezone.NewTable("Test/MidnightGap", -Hours(3), []timezone.Transition{
		{At: UTCInstant(t, 2018, 11, 4, 3, 0), Offset: -Hours(2)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tz
}

// CatalogDir creates a temporary zone catalog holding files, keyed by
// relative path.
func CatalogDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
