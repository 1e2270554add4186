package calendar

import (
	"fmt"
	"strings"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/iso"
)

// Calendar ids shipped with the module.
const (
	ISO8601   = "iso8601"
	Gregorian = "gregory"
)

// isoParts is the proleptic Gregorian calendar with ISO numbering.
type isoParts struct{}

func (isoParts) ID() string { return ISO8601 }

func (isoParts) DateParts(d iso.Date) (int, int, int) { return d.Year, d.Month, d.Day }

func (isoParts) IsoFromParts(year, month, day int) iso.Date {
	return iso.Date{Year: year, Month: month, Day: day}
}

func (isoParts) DaysInMonthParts(year, month int) int { return iso.DaysInMonth(year, month) }

func (isoParts) MonthsInYearPart(int) int { return iso.MonthsInYear }

func (isoParts) MonthAdd(year, month, delta int) (int, int) {
	m0 := year*iso.MonthsInYear + month - 1 + delta
	y := m0 / iso.MonthsInYear
	m := m0 % iso.MonthsInYear
	if m < 0 {
		m += iso.MonthsInYear
		y--
	}
	return y, m + 1
}

func (isoParts) MonthCodeParts(_, month int) (int, bool) { return month, false }

func (isoParts) LeapMonth(int) int { return 0 }

func (isoParts) MonthsInYearSpan(yearDelta, _ int) int { return yearDelta * iso.MonthsInYear }

func (isoParts) IsLeapYear(year int) bool { return iso.IsLeapYear(year) }

// gregoryParts adds the ce/bce eras on top of ISO numbering.
type gregoryParts struct{ isoParts }

func (gregoryParts) ID() string { return Gregorian }

func (gregoryParts) EraYearToYear(era string, eraYear int) (int, error) {
	switch strings.ToLower(era) {
	case "ce", "ad":
		return eraYear, nil
	case "bce", "bc":
		return 1 - eraYear, nil
	}
	return 0, fmt.Errorf("calendar: %w: unknown era %q", apperr.ErrInvalidFieldCombination, era)
}

func (gregoryParts) YearToEra(year int) (string, int) {
	if year < 1 {
		return "bce", 1 - year
	}
	return "ce", year
}

// NewISO returns the default ISO 8601 calendar.
func NewISO() Native { return Native{Parts: isoParts{}} }

// NewGregorian returns the Gregorian calendar with ce/bce eras.
func NewGregorian() Native { return Native{Parts: gregoryParts{}} }
