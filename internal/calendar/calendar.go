// Package calendar defines the calendar contract consumed by the arithmetic
// engine and ships the ISO 8601 and Gregorian-era calendars.
//
// Implementations must be safe for concurrent use. All methods are pure
// functions of their inputs.
package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

//go:generate mockgen -destination=mocks/calendar_mock.go -package=mocks github.com/starford/tempus/internal/calendar Calendar

// Calendar is the date-math contract every calendar satisfies.
type Calendar interface {
	ID() string
	// DateFromFields resolves year (or era+eraYear), month (or monthCode) and day.
	DateFromFields(f DateFields, overflow options.Overflow) (iso.Date, error)
	// DateAdd adds whole years, then whole months, then weeks and days.
	DateAdd(d iso.Date, dur duration.Fields, overflow options.Overflow) (iso.Date, error)
	// DateUntil is the inverse of DateAdd for the given largest unit.
	DateUntil(a, b iso.Date, largest units.Unit) (duration.Fields, error)
	// Fields extends a field name list with calendar specific names.
	Fields(names []string) []string
	// MergeFields overlays overrides on base, dropping base fields that
	// would conflict with the overriding ones.
	MergeFields(base, overrides DateFields) DateFields
	DaysInMonth(d iso.Date) int
	MonthsInYear(d iso.Date) int
	MonthCode(d iso.Date) string
}

// DateFields is a partial set of calendar fields. Nil means absent.
type DateFields struct {
	Era       string `json:"era,omitempty" yaml:"era,omitempty"`
	EraYear   *int   `json:"eraYear,omitempty" yaml:"eraYear,omitempty"`
	Year      *int   `json:"year,omitempty" yaml:"year,omitempty"`
	Month     *int   `json:"month,omitempty" yaml:"month,omitempty"`
	MonthCode string `json:"monthCode,omitempty" yaml:"monthCode,omitempty"`
	Day       *int   `json:"day,omitempty" yaml:"day,omitempty"`
}

// Int is a helper for building DateFields literals.
func Int(v int) *int { return &v }

// Field names understood by DateFields.
const (
	FieldEra       = "era"
	FieldEraYear   = "eraYear"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldMonthCode = "monthCode"
	FieldDay       = "day"
)

// FormatMonthCode renders "M05" or "M05L".
func FormatMonthCode(number int, leap bool) string {
	s := fmt.Sprintf("M%02d", number)
	if leap {
		s += "L"
	}
	return s
}

// ParseMonthCode accepts "M01".."M99" with an optional "L" suffix.
func ParseMonthCode(code string) (int, bool, error) {
	leap := strings.HasSuffix(code, "L")
	body := strings.TrimSuffix(code, "L")
	if len(body) != 3 || body[0] != 'M' {
		return 0, false, fmt.Errorf("calendar: %w: bad monthCode %q", apperr.ErrInvalidFieldCombination, code)
	}
	n, err := strconv.Atoi(body[1:])
	if err != nil || n < 1 {
		return 0, false, fmt.Errorf("calendar: %w: bad monthCode %q", apperr.ErrInvalidFieldCombination, code)
	}
	return n, leap, nil
}

// Info exposes per-date accessors. The built-in calendars implement it.
type Info interface {
	Year(d iso.Date) int
	Month(d iso.Date) int
	Day(d iso.Date) int
	Era(d iso.Date) (era string, eraYear int, ok bool)
	DaysInYear(d iso.Date) int
	InLeapYear(d iso.Date) bool
	DayOfWeek(d iso.Date) int
	DayOfYear(d iso.Date) int
	WeekOfYear(d iso.Date) (week, year int)
	DaysInWeek(d iso.Date) int
}

// YearMonthFromFields resolves a year-month, anchored on the first day.
func YearMonthFromFields(c Calendar, f DateFields, overflow options.Overflow) (iso.Date, error) {
	f.Day = Int(1)
	return c.DateFromFields(f, overflow)
}

// Common returns a when both calendars share an id.
func Common(a, b Calendar) (Calendar, error) {
	if a.ID() != b.ID() {
		return nil, fmt.Errorf("calendar: %w: %s vs %s", apperr.ErrMismatchedCalendars, a.ID(), b.ID())
	}
	return a, nil
}
