package engine

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/timezone"
	"github.com/starford/tempus/internal/units"
)

// nudge is a duration rounded at its smallest unit, before carries into
// larger units are applied.
type nudge struct {
	date     duration.Fields
	time     daytime.Nano
	epoch    daytime.Nano
	expanded bool
}

// RoundRelativeDuration rounds d, whose exact end point is dest, measuring
// calendar units from m. Rounding happens once at smallest and carries then
// bubble up towards largest while the rounded end point reaches them.
func RoundRelativeDuration(
	d duration.Fields,
	dest daytime.Nano,
	m Marker,
	largest, smallest units.Unit,
	inc int64,
	mode options.RoundingMode,
) (duration.Fields, error) {
	if largest < units.Day {
		return RoundDayTimeDuration(d, largest, smallest, inc, mode)
	}
	sign := 1
	if d.Sign() < 0 {
		sign = -1
	}
	var (
		n   nudge
		err error
	)
	switch {
	case smallest >= units.Week || (smallest == units.Day && m.Zoned()):
		n, err = nudgeToCalendarUnit(sign, d, dest, m, smallest, inc, mode)
	case m.Zoned():
		n, err = nudgeToZonedTime(sign, d, m, smallest, inc, mode)
	default:
		n, err = nudgeToDayOrTime(d, dest, largest, smallest, inc, mode)
	}
	if err != nil {
		return duration.Zero, err
	}
	if n.expanded && smallest != units.Week {
		if n, err = bubble(sign, n, m, largest, units.Max(smallest, units.Day)); err != nil {
			return duration.Zero, err
		}
	}
	clock, err := duration.FromDayTime(n.time, units.Hour)
	if err != nil {
		return duration.Zero, err
	}
	return duration.NewBuilder(n.date).Merge(clock).Build()
}

func truncTo(v, inc int64) int64 { return v / inc * inc }

func nudgeToCalendarUnit(
	sign int,
	d duration.Fields,
	dest daytime.Nano,
	m Marker,
	unit units.Unit,
	inc int64,
	mode options.RoundingMode,
) (nudge, error) {
	step := inc * int64(sign)
	var (
		r1         int64
		start, end duration.Fields
	)
	switch unit {
	case units.Year:
		r1 = truncTo(d.Years, inc)
		start = duration.Fields{Years: r1}
		end = duration.Fields{Years: r1 + step}
	case units.Month:
		r1 = truncTo(d.Months, inc)
		start = duration.Fields{Years: d.Years, Months: r1}
		end = duration.Fields{Years: d.Years, Months: r1 + step}
	case units.Week:
		base := duration.Fields{Years: d.Years, Months: d.Months}
		weeksStart, err := m.Move(base)
		if err != nil {
			return nudge{}, err
		}
		weeksEnd, err := weeksStart.Move(duration.Fields{Days: d.Days})
		if err != nil {
			return nudge{}, err
		}
		extra, err := weeksStart.Diff(weeksEnd, units.Week)
		if err != nil {
			return nudge{}, err
		}
		r1 = truncTo(d.Weeks+extra.Weeks, inc)
		start = duration.Fields{Years: d.Years, Months: d.Months, Weeks: r1}
		end = duration.Fields{Years: d.Years, Months: d.Months, Weeks: r1 + step}
	default:
		r1 = truncTo(d.Days, inc)
		start = duration.Fields{Years: d.Years, Months: d.Months, Weeks: d.Weeks, Days: r1}
		end = duration.Fields{Years: d.Years, Months: d.Months, Weeks: d.Weeks, Days: r1 + step}
	}
	startEpoch, err := moveEpoch(m, start)
	if err != nil {
		return nudge{}, err
	}
	endEpoch, err := moveEpoch(m, end)
	if err != nil {
		return nudge{}, err
	}
	span := daytime.Diff(startEpoch, endEpoch)
	if span.Sign() != sign {
		return nudge{}, fmt.Errorf("engine: %w: %d %s from %s does not advance",
			apperr.ErrNonMonotonicCalendar, step, unit, start)
	}
	progress := daytime.Diff(startEpoch, dest)
	if progress.Sign() == -sign || daytime.Compare(progress.Abs(), span.Abs()) > 0 {
		return nudge{}, fmt.Errorf("engine: %w: end point outside %s..%s", apperr.ErrFaultyCalendarResult, start, end)
	}
	qEven := (mathx.Abs(r1)/inc)%2 == 0
	if mode.RoundsUp(sign < 0, qEven, progress.Abs().Big(), span.Abs().Big()) {
		return nudge{date: end, epoch: endEpoch, expanded: true}, nil
	}
	return nudge{date: start, epoch: startEpoch}, nil
}

// nudgeToZonedTime rounds the time part within the local day it lands in,
// rolling into the next day when rounding reaches that day's length.
func nudgeToZonedTime(
	sign int,
	d duration.Fields,
	m Marker,
	unit units.Unit,
	inc int64,
	mode options.RoundingMode,
) (nudge, error) {
	date := d.DateOnly()
	startEpoch, err := moveEpoch(m, date)
	if err != nil {
		return nudge{}, err
	}
	nextDay, err := duration.NewBuilder(date).Add(units.Day, int64(sign)).Build()
	if err != nil {
		return nudge{}, err
	}
	endEpoch, err := moveEpoch(m, nextDay)
	if err != nil {
		return nudge{}, err
	}
	daySpan := daytime.Diff(startEpoch, endEpoch)
	if daySpan.Sign() != sign {
		return nudge{}, fmt.Errorf("engine: %w: day after %s has no length", apperr.ErrNonMonotonicCalendar, date)
	}
	rounded := daytime.RoundBy(d.TimeNano(), unit.Nanos(), inc, mode)
	beyond := daytime.Diff(daySpan, rounded)
	if beyond.Sign() != -sign {
		rounded = daytime.RoundBy(beyond, unit.Nanos(), inc, mode)
		return nudge{
			date:     nextDay,
			time:     rounded,
			epoch:    daytime.Add(endEpoch, rounded, 1),
			expanded: true,
		}, nil
	}
	return nudge{date: date, time: rounded, epoch: daytime.Add(startEpoch, rounded, 1)}, nil
}

// nudgeToDayOrTime rounds days and time together as exact 24-hour days.
func nudgeToDayOrTime(
	d duration.Fields,
	dest daytime.Nano,
	largest, unit units.Unit,
	inc int64,
	mode options.RoundingMode,
) (nudge, error) {
	exact := d.DayTime()
	rounded := daytime.RoundBy(exact, unit.Nanos(), inc, mode)
	wholeDays, _, err := exact.ToUnits(units.NanoInDay)
	if err != nil {
		return nudge{}, err
	}
	roundedDays, rem, err := rounded.ToUnits(units.NanoInDay)
	if err != nil {
		return nudge{}, err
	}
	n := nudge{
		date:     d.DateOnly().With(units.Day, 0),
		time:     rounded,
		epoch:    daytime.Add(dest, daytime.Diff(exact, rounded), 1),
		expanded: mathx.Sign(roundedDays-wholeDays) == exact.Sign(),
	}
	if largest >= units.Day {
		n.date.Days = roundedDays
		n.time = daytime.FromNanos(rem)
	}
	return n, nil
}

// bubble carries a rounded duration into each larger unit whose boundary
// the rounded end point has reached.
func bubble(sign int, n nudge, m Marker, largest, smallest units.Unit) (nudge, error) {
	s := int64(sign)
	for u := smallest + 1; u <= largest; u++ {
		if u == units.Week && largest != units.Week {
			continue
		}
		var end duration.Fields
		switch u {
		case units.Year:
			end = duration.Fields{Years: n.date.Years + s}
		case units.Month:
			end = duration.Fields{Years: n.date.Years, Months: n.date.Months + s}
		case units.Week:
			end = duration.Fields{Years: n.date.Years, Months: n.date.Months, Weeks: n.date.Weeks + s}
		default:
			continue
		}
		endEpoch, err := moveEpoch(m, end)
		if err != nil {
			return nudge{}, err
		}
		if daytime.Diff(endEpoch, n.epoch).Sign() == -sign {
			break
		}
		n.date, n.time = end, daytime.Zero
	}
	return n, nil
}

// RoundDayTimeDuration rounds a duration with no calendar units, treating a
// day as 24 hours.
func RoundDayTimeDuration(d duration.Fields, largest, smallest units.Unit, inc int64, mode options.RoundingMode) (duration.Fields, error) {
	n := daytime.RoundBy(d.DayTime(), smallest.Nanos(), inc, mode)
	out, err := duration.FromDayTime(n, largest)
	if err != nil {
		return duration.Zero, err
	}
	return duration.NewBuilder(out).Merge(duration.Fields{Years: d.Years, Months: d.Months, Weeks: d.Weeks}).Build()
}

// RoundInstant rounds an instant. Increments are measured against a whole
// solar day.
func RoundInstant(e daytime.Nano, o options.RoundOptions) (daytime.Nano, error) {
	s, err := options.RefineRoundOptions(o, units.Hour, true)
	if err != nil {
		return daytime.Zero, fmt.Errorf("engine: %w", err)
	}
	out := daytime.RoundBy(e, s.SmallestUnit.Nanos(), s.RoundingIncrement, s.RoundingMode)
	return out, out.Validate()
}

// RoundDateTime rounds a wall-clock date-time, carrying into the date.
func RoundDateTime(dt iso.DateTime, o options.RoundOptions) (iso.DateTime, error) {
	s, err := options.RefineRoundOptions(o, units.Day, false)
	if err != nil {
		return iso.DateTime{}, fmt.Errorf("engine: %w", err)
	}
	out := roundDateTime(dt, s)
	return out, iso.CheckDateTime(out)
}

func roundDateTime(dt iso.DateTime, s options.RoundSettings) iso.DateTime {
	n := options.RoundInt64(dt.Time.NanoOfDay(), s.SmallestUnit.Nanos()*s.RoundingIncrement, s.RoundingMode)
	t, carry := iso.TimeFromNano(n)
	return iso.NewDateTime(dt.Date.AddDays(carry), t)
}

// RoundTime rounds a time of day, wrapping at midnight.
func RoundTime(t iso.Time, o options.RoundOptions) (iso.Time, error) {
	s, err := options.RefineRoundOptions(o, units.Hour, false)
	if err != nil {
		return iso.Time{}, fmt.Errorf("engine: %w", err)
	}
	n := options.RoundInt64(t.NanoOfDay(), s.SmallestUnit.Nanos()*s.RoundingIncrement, s.RoundingMode)
	out, _ := iso.TimeFromNano(n)
	return out, nil
}

// RoundZoned rounds a zoned instant on its wall clock. Rounding to a day
// uses the actual length of the local day. Otherwise the rounded local
// time keeps its original offset when that offset is still valid.
func RoundZoned(tz timezone.TimeZone, e daytime.Nano, o options.RoundOptions) (daytime.Nano, error) {
	s, err := options.RefineRoundOptions(o, units.Day, false)
	if err != nil {
		return daytime.Zero, fmt.Errorf("engine: %w", err)
	}
	if s.SmallestUnit == units.Day {
		start, end, err := timezone.DayLength(tz, e)
		if err != nil {
			return daytime.Zero, err
		}
		progress, span := daytime.Diff(start, e), daytime.Diff(start, end)
		if span.Sign() <= 0 {
			return daytime.Zero, fmt.Errorf("engine: %w: day of %s has no length in %s",
				apperr.ErrFaultyCalendarResult, e, tz.ID())
		}
		if s.RoundingMode.RoundsUp(false, true, progress.Big(), span.Big()) {
			return end, nil
		}
		return start, nil
	}
	local, err := timezone.EpochToIso(tz, e)
	if err != nil {
		return daytime.Zero, err
	}
	offset, err := tz.OffsetNanosecondsFor(e)
	if err != nil {
		return daytime.Zero, err
	}
	rounded := roundDateTime(local, s)
	if err := iso.CheckDateTime(rounded); err != nil {
		return daytime.Zero, err
	}
	return timezone.MatchingInstantFor(tz, rounded, &offset, false, options.OffsetPrefer, options.Compatible, true)
}
