package temporal

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/engine"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/timezone"
)

func unsupported(op string, v Value) error {
	return fmt.Errorf("temporal: %w: %s on %s", apperr.ErrUnsupportedOperation, op, v.Kind())
}

// Add moves v by d. Durations are added to each other without a reference
// point, so only day and time units may be combined.
func Add(v Value, d duration.Fields, overflow options.Overflow) (Value, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case PlainDate:
		out, err := engine.AddToDate(calOf(x.Calendar), x.Date, d, overflow)
		return PlainDate{Date: out, Calendar: x.Calendar}, err
	case PlainDateTime:
		out, err := engine.AddToDateTime(calOf(x.Calendar), x.DateTime, d, overflow)
		return PlainDateTime{DateTime: out, Calendar: x.Calendar}, err
	case ZonedDateTime:
		out, err := engine.AddToZoned(calOf(x.Calendar), x.TimeZone, x.Epoch, d, overflow)
		return ZonedDateTime{Epoch: out, TimeZone: x.TimeZone, Calendar: x.Calendar}, err
	case Instant:
		out, err := engine.AddToInstant(x.Epoch, d)
		return Instant{Epoch: out}, err
	case Duration:
		out, err := engine.AddDurations(x.Fields, d, false, nil)
		return Duration{Fields: out}, err
	case PlainYearMonth:
		out, err := engine.AddToYearMonth(calOf(x.Calendar), x.Date, d, overflow)
		return PlainYearMonth{Date: out, Calendar: x.Calendar}, err
	case PlainTime:
		return PlainTime{Time: engine.AddToTime(x.Time, d)}, nil
	}
	return nil, unsupported("add", v)
}

// Subtract moves v back by d.
func Subtract(v Value, d duration.Fields, overflow options.Overflow) (Value, error) {
	return Add(v, d.Negate(), overflow)
}

// Difference measures from a to b (Until) or from b to a (Since). Both
// values must be the same kind and share calendar and zone.
func Difference(a, b Value, dir engine.Direction, o options.DiffOptions) (duration.Fields, error) {
	if a.Kind() != b.Kind() {
		return duration.Zero, fmt.Errorf("temporal: %w: cannot diff %s and %s",
			apperr.ErrInvalidFieldCombination, a.Kind(), b.Kind())
	}
	switch x := a.(type) {
	case PlainDate:
		y := b.(PlainDate)
		cal, err := commonCalendar(x.Calendar, y.Calendar)
		if err != nil {
			return duration.Zero, err
		}
		return engine.DiffDates(cal, x.Date, y.Date, dir, o)
	case PlainDateTime:
		y := b.(PlainDateTime)
		cal, err := commonCalendar(x.Calendar, y.Calendar)
		if err != nil {
			return duration.Zero, err
		}
		return engine.DiffDateTimes(cal, x.DateTime, y.DateTime, dir, o)
	case ZonedDateTime:
		y := b.(ZonedDateTime)
		cal, err := commonCalendar(x.Calendar, y.Calendar)
		if err != nil {
			return duration.Zero, err
		}
		tz, err := timezone.Common(x.TimeZone, y.TimeZone)
		if err != nil {
			return duration.Zero, err
		}
		return engine.DiffZoned(cal, tz, x.Epoch, y.Epoch, dir, o)
	case Instant:
		return engine.DiffInstants(x.Epoch, b.(Instant).Epoch, dir, o)
	case PlainYearMonth:
		y := b.(PlainYearMonth)
		cal, err := commonCalendar(x.Calendar, y.Calendar)
		if err != nil {
			return duration.Zero, err
		}
		return engine.DiffYearMonths(cal, x.Date, y.Date, dir, o)
	case PlainTime:
		return engine.DiffTimes(x.Time, b.(PlainTime).Time, dir, o)
	}
	return duration.Zero, unsupported(dir.String(), a)
}

func commonCalendar(a, b calendar.Calendar) (calendar.Calendar, error) {
	return calendar.Common(calOf(a), calOf(b))
}

// Round rounds a point in time.
func Round(v Value, o options.RoundOptions) (Value, error) {
	switch x := v.(type) {
	case PlainDateTime:
		out, err := engine.RoundDateTime(x.DateTime, o)
		return PlainDateTime{DateTime: out, Calendar: x.Calendar}, err
	case ZonedDateTime:
		out, err := engine.RoundZoned(x.TimeZone, x.Epoch, o)
		return ZonedDateTime{Epoch: out, TimeZone: x.TimeZone, Calendar: x.Calendar}, err
	case Instant:
		out, err := engine.RoundInstant(x.Epoch, o)
		return Instant{Epoch: out}, err
	case PlainTime:
		out, err := engine.RoundTime(x.Time, o)
		return PlainTime{Time: out}, err
	}
	return nil, unsupported("round", v)
}

// Compare orders two values of the same kind. Calendars and zones do not
// take part; durations need a reference point and use CompareDurations.
func Compare(a, b Value) (int, error) {
	if a.Kind() != b.Kind() {
		return 0, fmt.Errorf("temporal: %w: cannot compare %s and %s",
			apperr.ErrInvalidFieldCombination, a.Kind(), b.Kind())
	}
	switch x := a.(type) {
	case PlainDate:
		return iso.CompareDates(x.Date, b.(PlainDate).Date), nil
	case PlainDateTime:
		return iso.CompareDateTimes(x.DateTime, b.(PlainDateTime).DateTime), nil
	case ZonedDateTime:
		return daytime.Compare(x.Epoch, b.(ZonedDateTime).Epoch), nil
	case Instant:
		return daytime.Compare(x.Epoch, b.(Instant).Epoch), nil
	case PlainYearMonth:
		return iso.CompareDates(x.Date, b.(PlainYearMonth).Date), nil
	case PlainMonthDay:
		return iso.CompareDates(x.Date, b.(PlainMonthDay).Date), nil
	case PlainTime:
		return iso.CompareTimes(x.Time, b.(PlainTime).Time), nil
	}
	return 0, unsupported("compare", a)
}

// RelativeTo turns a date, date-time or zoned value into a reference point
// for duration arithmetic. Dates are anchored at midnight.
func RelativeTo(v Value) (*engine.RelativeTo, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case PlainDate:
		return engine.PlainRelativeTo(calOf(x.Calendar), iso.NewDateTime(x.Date, iso.Midnight)), nil
	case PlainDateTime:
		return engine.PlainRelativeTo(calOf(x.Calendar), x.DateTime), nil
	case ZonedDateTime:
		return engine.ZonedRelativeTo(calOf(x.Calendar), x.TimeZone, x.Epoch), nil
	}
	return nil, fmt.Errorf("temporal: %w: %s cannot anchor a duration", apperr.ErrInvalidOption, v.Kind())
}
