package engine

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/timezone"
	"github.com/starford/tempus/internal/units"
)

// Direction selects until (b - a) or since (a - b).
type Direction int

const (
	Until Direction = iota
	Since
)

func (d Direction) String() string {
	if d == Since {
		return "since"
	}
	return "until"
}

func (d Direction) apply(f duration.Fields) duration.Fields {
	if d == Since {
		return f.Negate()
	}
	return f
}

func refineDiff(dir Direction, o options.DiffOptions, defaultLargest, maxUnit, minUnit units.Unit) (options.DiffSettings, error) {
	s, err := options.RefineDiffOptions(o, dir == Since, defaultLargest, maxUnit, minUnit)
	if err != nil {
		return s, fmt.Errorf("engine: %w", err)
	}
	return s, nil
}

func skipsRounding(s options.DiffSettings, unit units.Unit) bool {
	return s.SmallestUnit == unit && s.RoundingIncrement == 1
}

// DiffInstants measures exact time between two instants.
func DiffInstants(a, b daytime.Nano, dir Direction, o options.DiffOptions) (duration.Fields, error) {
	s, err := refineDiff(dir, o, units.Second, units.Hour, units.Nanosecond)
	if err != nil {
		return duration.Zero, err
	}
	d, err := diffEpochNanos(a, b, s)
	if err != nil {
		return duration.Zero, err
	}
	return dir.apply(d), nil
}

func diffEpochNanos(a, b daytime.Nano, s options.DiffSettings) (duration.Fields, error) {
	n := daytime.RoundBy(daytime.Diff(a, b), s.SmallestUnit.Nanos(), s.RoundingIncrement, s.RoundingMode)
	return duration.FromDayTime(n, s.LargestUnit)
}

// DiffZoned measures the span between two instants on the wall clock of tz.
// Units of a day or more follow the local calendar; smaller units are exact.
func DiffZoned(cal calendar.Calendar, tz timezone.TimeZone, a, b daytime.Nano, dir Direction, o options.DiffOptions) (duration.Fields, error) {
	s, err := refineDiff(dir, o, units.Hour, units.Year, units.Nanosecond)
	if err != nil {
		return duration.Zero, err
	}
	if s.LargestUnit < units.Day {
		d, err := diffEpochNanos(a, b, s)
		if err != nil {
			return duration.Zero, err
		}
		return dir.apply(d), nil
	}
	d, err := diffZonedExact(cal, tz, a, b, s.LargestUnit)
	if err != nil {
		return duration.Zero, err
	}
	if !skipsRounding(s, units.Nanosecond) {
		m := NewMarker(*ZonedRelativeTo(cal, tz, a))
		if d, err = RoundRelativeDuration(d, b, m, s.LargestUnit, s.SmallestUnit, s.RoundingIncrement, s.RoundingMode); err != nil {
			return duration.Zero, err
		}
	}
	return dir.apply(d), nil
}

// diffZonedExact splits b - a into a calendar date part and an exact time
// remainder. The end date is backed off by up to two days so the remainder
// carries the same sign as the whole span.
func diffZonedExact(cal calendar.Calendar, tz timezone.TimeZone, a, b daytime.Nano, largest units.Unit) (duration.Fields, error) {
	sign := daytime.Compare(b, a)
	if sign == 0 {
		return duration.Zero, nil
	}
	if largest < units.Day {
		return duration.FromDayTime(daytime.Diff(a, b), largest)
	}
	start, err := timezone.EpochToIso(tz, a)
	if err != nil {
		return duration.Zero, err
	}
	end, err := timezone.EpochToIso(tz, b)
	if err != nil {
		return duration.Zero, err
	}
	var (
		midDate iso.Date
		rem     daytime.Nano
	)
	for cnt := int64(0); ; cnt++ {
		if cnt > 2 {
			return duration.Zero, fmt.Errorf("engine: %w: %s cannot reach %s", apperr.ErrFaultyCalendarResult, tz.ID(), end)
		}
		midDate = end.Date.AddDays(-cnt * int64(sign))
		mid, err := timezone.SingleInstantFor(tz, iso.NewDateTime(midDate, start.Time), options.Compatible)
		if err != nil {
			return duration.Zero, err
		}
		rem = daytime.Diff(mid, b)
		if rem.Sign() != -sign {
			break
		}
	}
	dateDiff, err := cal.DateUntil(start.Date, midDate, largest)
	if err != nil {
		return duration.Zero, err
	}
	timeDiff, err := duration.FromDayTime(rem, units.Hour)
	if err != nil {
		return duration.Zero, err
	}
	return mergeChecked(dateDiff, timeDiff, sign)
}

func mergeChecked(date, clock duration.Fields, sign int) (duration.Fields, error) {
	if s := date.Sign(); s != 0 && s != sign {
		return duration.Zero, fmt.Errorf("engine: %w: date difference %s has the wrong sign", apperr.ErrFaultyCalendarResult, date)
	}
	return duration.NewBuilder(date).Merge(clock).Build()
}

// DiffDateTimes measures the span between two wall-clock date-times.
func DiffDateTimes(cal calendar.Calendar, a, b iso.DateTime, dir Direction, o options.DiffOptions) (duration.Fields, error) {
	s, err := refineDiff(dir, o, units.Day, units.Year, units.Nanosecond)
	if err != nil {
		return duration.Zero, err
	}
	bEpoch, err := b.EpochNano()
	if err != nil {
		return duration.Zero, err
	}
	if s.LargestUnit <= units.Day {
		aEpoch, err := a.EpochNano()
		if err != nil {
			return duration.Zero, err
		}
		d, err := diffEpochNanos(aEpoch, bEpoch, s)
		if err != nil {
			return duration.Zero, err
		}
		return dir.apply(d), nil
	}
	d, err := diffDateTimesExact(cal, a, b, s.LargestUnit)
	if err != nil {
		return duration.Zero, err
	}
	if !skipsRounding(s, units.Nanosecond) {
		m := NewMarker(*PlainRelativeTo(cal, a))
		if d, err = RoundRelativeDuration(d, bEpoch, m, s.LargestUnit, s.SmallestUnit, s.RoundingIncrement, s.RoundingMode); err != nil {
			return duration.Zero, err
		}
	}
	return dir.apply(d), nil
}

// diffDateTimesExact borrows a day from the date part when the clock
// difference points the other way.
func diffDateTimesExact(cal calendar.Calendar, a, b iso.DateTime, largest units.Unit) (duration.Fields, error) {
	sign := iso.CompareDateTimes(b, a)
	if sign == 0 {
		return duration.Zero, nil
	}
	if largest <= units.Day {
		return duration.FromDayTime(daytime.Diff(a.EpochNanoUnchecked(), b.EpochNanoUnchecked()), largest)
	}
	timeDiff := b.Time.NanoOfDay() - a.Time.NanoOfDay()
	endDate := b.Date
	if mathx.Sign(timeDiff) == -sign {
		endDate = endDate.AddDays(int64(-sign))
		timeDiff += int64(sign) * units.NanoInDay
	}
	dateDiff, err := cal.DateUntil(a.Date, endDate, largest)
	if err != nil {
		return duration.Zero, err
	}
	return mergeChecked(dateDiff, duration.FromTimeNanos(timeDiff, units.Hour), sign)
}

// DiffDates measures whole days or larger between two dates.
func DiffDates(cal calendar.Calendar, a, b iso.Date, dir Direction, o options.DiffOptions) (duration.Fields, error) {
	s, err := refineDiff(dir, o, units.Day, units.Year, units.Day)
	if err != nil {
		return duration.Zero, err
	}
	d, err := diffDateLike(cal, a, b, s, units.Day)
	if err != nil {
		return duration.Zero, err
	}
	return dir.apply(d), nil
}

// DiffYearMonths measures whole months or years between two months, each
// given by its first day.
func DiffYearMonths(cal calendar.Calendar, a, b iso.Date, dir Direction, o options.DiffOptions) (duration.Fields, error) {
	s, err := refineDiff(dir, o, units.Year, units.Year, units.Month)
	if err != nil {
		return duration.Zero, err
	}
	d, err := diffDateLike(cal, a, b, s, units.Month)
	if err != nil {
		return duration.Zero, err
	}
	return dir.apply(d), nil
}

func diffDateLike(cal calendar.Calendar, a, b iso.Date, s options.DiffSettings, minUnit units.Unit) (duration.Fields, error) {
	if iso.CompareDates(a, b) == 0 {
		return duration.Zero, nil
	}
	var d duration.Fields
	if s.LargestUnit == units.Day {
		d = duration.Fields{Days: iso.EpochDays(b) - iso.EpochDays(a)}
	} else {
		var err error
		if d, err = cal.DateUntil(a, b, s.LargestUnit); err != nil {
			return duration.Zero, err
		}
	}
	if skipsRounding(s, minUnit) {
		return d, nil
	}
	start := iso.NewDateTime(a, iso.Midnight)
	dest, err := iso.NewDateTime(b, iso.Midnight).EpochNano()
	if err != nil {
		return duration.Zero, err
	}
	return RoundRelativeDuration(d, dest, NewMarker(*PlainRelativeTo(cal, start)),
		s.LargestUnit, s.SmallestUnit, s.RoundingIncrement, s.RoundingMode)
}

// DiffTimes measures the clock difference between two times of day.
func DiffTimes(a, b iso.Time, dir Direction, o options.DiffOptions) (duration.Fields, error) {
	s, err := refineDiff(dir, o, units.Hour, units.Hour, units.Nanosecond)
	if err != nil {
		return duration.Zero, err
	}
	n := b.NanoOfDay() - a.NanoOfDay()
	n = options.RoundInt64(n, s.SmallestUnit.Nanos()*s.RoundingIncrement, s.RoundingMode)
	return dir.apply(duration.FromTimeNanos(n, s.LargestUnit)), nil
}
