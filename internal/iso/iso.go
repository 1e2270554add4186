// Package iso holds calendar-independent ISO 8601 date and time fields and the
// proleptic Gregorian math behind them.
package iso

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

// Supported year range.
const (
	MinYear = -271821
	MaxYear = 275760
)

const MonthsInYear = 12

// Date is a proleptic ISO calendar date.
type Date struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// Time is a wall-clock time of day.
type Time struct {
	Hour        int `json:"hour" yaml:"hour"`
	Minute      int `json:"minute" yaml:"minute"`
	Second      int `json:"second" yaml:"second"`
	Millisecond int `json:"millisecond" yaml:"millisecond"`
	Microsecond int `json:"microsecond" yaml:"microsecond"`
	Nanosecond  int `json:"nanosecond" yaml:"nanosecond"`
}

// DateTime joins a Date and a Time.
type DateTime struct {
	Date
	Time
}

// Midnight is the zero Time.
var Midnight = Time{}

// IsLeapYear uses the proleptic Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var daysInMonth = [...]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the length of month in year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonth[month]
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// EpochDays counts days from 1970-01-01. Month and day must be in range.
func EpochDays(d Date) int64 {
	y := int64(d.Year)
	m := int64(d.Month)
	if m <= 2 {
		y--
	}
	era := mathx.FloorDiv(y, 400)
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + int64(d.Day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// DateFromEpochDays is the inverse of EpochDays.
func DateFromEpochDays(days int64) Date {
	z := days + 719468
	era := mathx.FloorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if m > 12 {
		m -= 12
	}
	y := yoe + era*400
	if m <= 2 {
		y++
	}
	return Date{Year: int(y), Month: int(m), Day: int(d)}
}

// AddDays moves d by n days.
func (d Date) AddDays(n int64) Date {
	if n == 0 {
		return d
	}
	return DateFromEpochDays(EpochDays(d) + n)
}

// DayOfWeek returns 1 for Monday through 7 for Sunday.
func (d Date) DayOfWeek() int {
	return int(mathx.FloorMod(EpochDays(d)+3, 7)) + 1
}

// DayOfYear is 1-based.
func (d Date) DayOfYear() int {
	return int(EpochDays(d)-EpochDays(Date{Year: d.Year, Month: 1, Day: 1})) + 1
}

// WeekOfYear returns the ISO 8601 week number and the year that week belongs
// to. Weeks start on Monday and week 1 holds the year's first Thursday.
func (d Date) WeekOfYear() (week, year int) {
	thursday := d.AddDays(int64(4 - d.DayOfWeek()))
	return (thursday.DayOfYear()-1)/7 + 1, thursday.Year
}

// CompareDates returns -1, 0 or 1.
func CompareDates(a, b Date) int {
	if c := mathx.Sign(a.Year - b.Year); c != 0 {
		return c
	}
	if c := mathx.Sign(a.Month - b.Month); c != 0 {
		return c
	}
	return mathx.Sign(a.Day - b.Day)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// NanoOfDay returns the time as nanoseconds since midnight.
func (t Time) NanoOfDay() int64 {
	return int64(t.Hour)*units.NanoInHour +
		int64(t.Minute)*units.NanoInMinute +
		int64(t.Second)*units.NanoInSecond +
		int64(t.Millisecond)*units.NanoInMilli +
		int64(t.Microsecond)*units.NanoInMicro +
		int64(t.Nanosecond)
}

// TimeFromNano splits a nanosecond-of-day, wrapping into [0, 24h) and returning
// the number of whole days carried.
func TimeFromNano(n int64) (Time, int64) {
	days, n := mathx.DivModFloor(n, units.NanoInDay)
	t := Time{}
	t.Hour, n = int(n/units.NanoInHour), n%units.NanoInHour
	t.Minute, n = int(n/units.NanoInMinute), n%units.NanoInMinute
	t.Second, n = int(n/units.NanoInSecond), n%units.NanoInSecond
	t.Millisecond, n = int(n/units.NanoInMilli), n%units.NanoInMilli
	t.Microsecond, n = int(n/units.NanoInMicro), n%units.NanoInMicro
	t.Nanosecond = int(n)
	return t, days
}

// CompareTimes returns -1, 0 or 1.
func CompareTimes(a, b Time) int {
	return mathx.Sign(a.NanoOfDay() - b.NanoOfDay())
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d%03d%03d",
		t.Hour, t.Minute, t.Second, t.Millisecond, t.Microsecond, t.Nanosecond)
}

// NewDateTime joins d and t.
func NewDateTime(d Date, t Time) DateTime { return DateTime{Date: d, Time: t} }

// CompareDateTimes returns -1, 0 or 1.
func CompareDateTimes(a, b DateTime) int {
	if c := CompareDates(a.Date, b.Date); c != 0 {
		return c
	}
	return CompareTimes(a.Time, b.Time)
}

// EpochNanoUnchecked treats dt as UTC without range checks.
func (dt DateTime) EpochNanoUnchecked() daytime.Nano {
	return daytime.New(EpochDays(dt.Date), dt.Time.NanoOfDay())
}

// EpochNano treats dt as UTC. Plain date-times may sit up to one day beyond
// the instant range so that every valid instant has a local representation
// in every offset.
func (dt DateTime) EpochNano() (daytime.Nano, error) {
	if err := CheckDateTime(dt); err != nil {
		return daytime.Zero, err
	}
	return dt.EpochNanoUnchecked(), nil
}

// AddNanos moves dt by an exact amount, carrying into the date.
func (dt DateTime) AddNanos(n daytime.Nano) DateTime {
	if n.Sign() == 0 {
		return dt
	}
	t, carry := TimeFromNano(dt.Time.NanoOfDay() + n.Nanos)
	return DateTime{Date: dt.Date.AddDays(n.Days + carry), Time: t}
}

// FromEpochNano converts an epoch value to UTC date-time fields.
func FromEpochNano(e daytime.Nano) DateTime {
	t, _ := TimeFromNano(e.Nanos)
	return DateTime{Date: DateFromEpochDays(e.Days), Time: t}
}

// FromEpochNanoOffset returns the local fields of e at the given UTC offset.
func FromEpochNanoOffset(e daytime.Nano, offsetNanos int64) DateTime {
	return FromEpochNano(e.AddNanos(offsetNanos))
}

func (dt DateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// CheckDate fails with ErrRangeOverflow for dates outside the supported range
// (-271821-04-19 through +275760-09-13).
func CheckDate(d Date) error {
	if d.Year < MinYear || d.Year > MaxYear {
		return fmt.Errorf("iso: %w: year %d", apperr.ErrRangeOverflow, d.Year)
	}
	days := EpochDays(d)
	if days < -daytime.MaxEpochDays-1 || days > daytime.MaxEpochDays {
		return fmt.Errorf("iso: %w: date %s", apperr.ErrRangeOverflow, d)
	}
	return nil
}

// CheckDateTime fails with ErrRangeOverflow when dt is further than one day
// outside the instant range.
func CheckDateTime(dt DateTime) error {
	if dt.Year < MinYear || dt.Year > MaxYear {
		return fmt.Errorf("iso: %w: year %d", apperr.ErrRangeOverflow, dt.Year)
	}
	e := dt.EpochNanoUnchecked()
	lo := daytime.MinEpoch.AddNanos(-units.NanoInDay)
	hi := daytime.MaxEpoch.AddNanos(units.NanoInDay)
	if daytime.Compare(e, lo) <= 0 || daytime.Compare(e, hi) >= 0 {
		return fmt.Errorf("iso: %w: date-time %s", apperr.ErrRangeOverflow, dt)
	}
	return nil
}

// RegulateDate validates or clamps raw fields.
func RegulateDate(year, month, day int, overflow options.Overflow) (Date, error) {
	if overflow == options.Reject {
		if !mathx.InRange(month, 1, MonthsInYear) {
			return Date{}, fmt.Errorf("iso: %w: month %d", apperr.ErrRangeOverflow, month)
		}
		if !mathx.InRange(day, 1, DaysInMonth(year, month)) {
			return Date{}, fmt.Errorf("iso: %w: day %d", apperr.ErrRangeOverflow, day)
		}
	} else {
		month = mathx.Clamp(month, 1, MonthsInYear)
		day = mathx.Clamp(day, 1, DaysInMonth(year, month))
	}
	d := Date{Year: year, Month: month, Day: day}
	return d, CheckDate(d)
}

// RegulateTime validates or clamps raw fields.
func RegulateTime(t Time, overflow options.Overflow) (Time, error) {
	limits := [...]struct {
		v  *int
		hi int
		n  string
	}{
		{&t.Hour, 23, "hour"},
		{&t.Minute, 59, "minute"},
		{&t.Second, 59, "second"},
		{&t.Millisecond, 999, "millisecond"},
		{&t.Microsecond, 999, "microsecond"},
		{&t.Nanosecond, 999, "nanosecond"},
	}
	for _, l := range limits {
		if mathx.InRange(*l.v, 0, l.hi) {
			continue
		}
		if overflow == options.Reject {
			return Time{}, fmt.Errorf("iso: %w: %s %d", apperr.ErrRangeOverflow, l.n, *l.v)
		}
		*l.v = mathx.Clamp(*l.v, 0, l.hi)
	}
	return t, nil
}
