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

// moveDate applies the date part of d. Only years, months and weeks need
// the calendar; plain days are exact.
func moveDate(cal calendar.Calendar, date iso.Date, d duration.Fields, overflow options.Overflow) (iso.Date, error) {
	if d.HasCalendarParts() {
		return cal.DateAdd(date, d.DateOnly(), overflow)
	}
	if mathx.Abs(d.Days) > 2*daytime.MaxEpochDays+2 {
		return iso.Date{}, fmt.Errorf("engine: %w: %d days", apperr.ErrRangeOverflow, d.Days)
	}
	out := date.AddDays(d.Days)
	return out, iso.CheckDate(out)
}

// moveDateTime adds the time part with day carry, then the date part.
func moveDateTime(cal calendar.Calendar, dt iso.DateTime, d duration.Fields, overflow options.Overflow) (iso.DateTime, error) {
	total := daytime.Add(daytime.FromNanos(dt.Time.NanoOfDay()), d.TimeNano(), 1)
	if mathx.AddOverflows(d.Days, total.Days) {
		return iso.DateTime{}, fmt.Errorf("engine: %w: %s", apperr.ErrRangeOverflow, d)
	}
	dateDur := d.DateOnly()
	dateDur.Days += total.Days
	date, err := moveDate(cal, dt.Date, dateDur, overflow)
	if err != nil {
		return iso.DateTime{}, err
	}
	t, _ := iso.TimeFromNano(total.Nanos)
	out := iso.NewDateTime(date, t)
	return out, iso.CheckDateTime(out)
}

// moveZoned applies the date part on the local calendar date, resolves the
// result back through the zone, then adds the time part as exact time.
func moveZoned(cal calendar.Calendar, tz timezone.TimeZone, epoch daytime.Nano, d duration.Fields, overflow options.Overflow) (daytime.Nano, error) {
	timeNano := d.TimeNano()
	if d.HasDateParts() {
		local, err := timezone.EpochToIso(tz, epoch)
		if err != nil {
			return daytime.Zero, err
		}
		date, err := moveDate(cal, local.Date, d.DateOnly(), overflow)
		if err != nil {
			return daytime.Zero, err
		}
		epoch, err = timezone.SingleInstantFor(tz, iso.NewDateTime(date, local.Time), options.Compatible)
		if err != nil {
			return daytime.Zero, err
		}
	}
	out := daytime.Add(epoch, timeNano, 1)
	return out, out.Validate()
}

// AddToInstant moves an instant by exact time. Date units are refused since
// an instant has no calendar.
func AddToInstant(epoch daytime.Nano, d duration.Fields) (daytime.Nano, error) {
	if d.HasDateParts() {
		return daytime.Zero, fmt.Errorf("engine: %w: instants only take time units", apperr.ErrInvalidFieldCombination)
	}
	out := daytime.Add(epoch, d.TimeNano(), 1)
	return out, out.Validate()
}

// AddToZoned moves a zoned instant by d.
func AddToZoned(cal calendar.Calendar, tz timezone.TimeZone, epoch daytime.Nano, d duration.Fields, overflow options.Overflow) (daytime.Nano, error) {
	return moveZoned(cal, tz, epoch, d, overflow)
}

// AddToDateTime moves a plain date-time by d.
func AddToDateTime(cal calendar.Calendar, dt iso.DateTime, d duration.Fields, overflow options.Overflow) (iso.DateTime, error) {
	return moveDateTime(cal, dt, d, overflow)
}

// AddToDate moves a date by d. Whole days of the time part are added;
// the remainder is dropped.
func AddToDate(cal calendar.Calendar, date iso.Date, d duration.Fields, overflow options.Overflow) (iso.Date, error) {
	days, _, err := d.TimeNano().ToUnits(units.NanoInDay)
	if err != nil {
		return iso.Date{}, err
	}
	dateDur, err := duration.NewBuilder(d.DateOnly()).Add(units.Day, days).Build()
	if err != nil {
		return iso.Date{}, err
	}
	return moveDate(cal, date, dateDur, overflow)
}

// AddToYearMonth moves the first day of a month by whole years and months.
func AddToYearMonth(cal calendar.Calendar, firstOfMonth iso.Date, d duration.Fields, overflow options.Overflow) (iso.Date, error) {
	if d.ClearAbove(units.Week).Sign() != 0 {
		return iso.Date{}, fmt.Errorf("engine: %w: year-months only take years and months", apperr.ErrInvalidFieldCombination)
	}
	return moveDate(cal, firstOfMonth, d, overflow)
}

// AddToTime moves a wall-clock time, wrapping around midnight.
func AddToTime(t iso.Time, d duration.Fields) iso.Time {
	total := daytime.Add(daytime.FromNanos(t.NanoOfDay()), d.TimeNano(), 1)
	out, _ := iso.TimeFromNano(total.Nanos)
	return out
}
