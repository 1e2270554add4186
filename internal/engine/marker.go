// Package engine implements calendar-aware arithmetic: moving points by
// durations, diffing points into durations, and rounding or totalling
// durations relative to a reference point.
package engine

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/timezone"
	"github.com/starford/tempus/internal/units"
)

// RelativeTo anchors calendar units. A nil TimeZone means a plain
// date-time anchor; otherwise Epoch is the zoned anchor.
type RelativeTo struct {
	Calendar calendar.Calendar
	DateTime iso.DateTime
	TimeZone timezone.TimeZone
	Epoch    daytime.Nano
}

// PlainRelativeTo anchors on a plain date-time.
func PlainRelativeTo(cal calendar.Calendar, dt iso.DateTime) *RelativeTo {
	return &RelativeTo{Calendar: cal, DateTime: dt}
}

// ZonedRelativeTo anchors on an instant in a zone.
func ZonedRelativeTo(cal calendar.Calendar, tz timezone.TimeZone, epoch daytime.Nano) *RelativeTo {
	return &RelativeTo{Calendar: cal, TimeZone: tz, Epoch: epoch}
}

// Zoned reports whether days may vary in length.
func (r *RelativeTo) Zoned() bool { return r != nil && r.TimeZone != nil }

// Marker is a point that durations can be measured from.
type Marker interface {
	EpochNano() (daytime.Nano, error)
	Move(d duration.Fields) (Marker, error)
	Diff(other Marker, largest units.Unit) (duration.Fields, error)
	Zoned() bool
}

// NewMarker builds the marker matching r. A nil calendar means ISO.
func NewMarker(r RelativeTo) Marker {
	cal := r.Calendar
	if cal == nil {
		cal = calendar.NewISO()
	}
	if r.TimeZone != nil {
		return zonedMarker{cal: cal, tz: r.TimeZone, epoch: r.Epoch}
	}
	return plainMarker{cal: cal, dt: r.DateTime}
}

type plainMarker struct {
	cal calendar.Calendar
	dt  iso.DateTime
}

func (m plainMarker) EpochNano() (daytime.Nano, error) { return m.dt.EpochNano() }

func (m plainMarker) Move(d duration.Fields) (Marker, error) {
	dt, err := moveDateTime(m.cal, m.dt, d, options.Constrain)
	if err != nil {
		return nil, err
	}
	return plainMarker{cal: m.cal, dt: dt}, nil
}

func (m plainMarker) Diff(other Marker, largest units.Unit) (duration.Fields, error) {
	o, ok := other.(plainMarker)
	if !ok {
		return duration.Zero, fmt.Errorf("engine: %w: cannot diff plain and zoned markers", apperr.ErrInvalidFieldCombination)
	}
	return diffDateTimesExact(m.cal, m.dt, o.dt, largest)
}

func (plainMarker) Zoned() bool { return false }

type zonedMarker struct {
	cal   calendar.Calendar
	tz    timezone.TimeZone
	epoch daytime.Nano
}

func (m zonedMarker) EpochNano() (daytime.Nano, error) { return m.epoch, nil }

func (m zonedMarker) Move(d duration.Fields) (Marker, error) {
	e, err := moveZoned(m.cal, m.tz, m.epoch, d, options.Constrain)
	if err != nil {
		return nil, err
	}
	return zonedMarker{cal: m.cal, tz: m.tz, epoch: e}, nil
}

func (m zonedMarker) Diff(other Marker, largest units.Unit) (duration.Fields, error) {
	o, ok := other.(zonedMarker)
	if !ok {
		return duration.Zero, fmt.Errorf("engine: %w: cannot diff zoned and plain markers", apperr.ErrInvalidFieldCombination)
	}
	return diffZonedExact(m.cal, m.tz, m.epoch, o.epoch, largest)
}

func (zonedMarker) Zoned() bool { return true }

// moveEpoch moves base by d and returns the resulting epoch.
func moveEpoch(base Marker, d duration.Fields) (daytime.Nano, error) {
	m, err := base.Move(d)
	if err != nil {
		return daytime.Zero, err
	}
	return m.EpochNano()
}
