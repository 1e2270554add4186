package timezone

import (
	"time"

	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/units"
)

// Location adapts an IANA zone loaded by the time package.
type Location struct {
	loc *time.Location
}

// NewLocation wraps loc.
func NewLocation(loc *time.Location) Location { return Location{loc: loc} }

// LoadLocation loads an IANA zone by name.
func LoadLocation(name string) (Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Location{}, err
	}
	return Location{loc: loc}, nil
}

func (l Location) ID() string { return l.loc.String() }

func (l Location) OffsetNanosecondsFor(epoch daytime.Nano) (int64, error) {
	t := time.Unix(epoch.Days*(units.NanoInDay/units.NanoInSecond), epoch.Nanos)
	_, off := t.In(l.loc).Zone()
	return int64(off) * units.NanoInSecond, nil
}

func (l Location) PossibleInstantsFor(dt iso.DateTime) ([]daytime.Nano, error) {
	return PossibleInstants(l, dt)
}
