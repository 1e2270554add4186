package calendar

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

// Parts are the primitives a calendar provides so that Native can do the
// rest. Years and months are in the calendar's own numbering; months are
// ordinal (1-based, leap months included).
type Parts interface {
	ID() string
	DateParts(d iso.Date) (year, month, day int)
	IsoFromParts(year, month, day int) iso.Date
	DaysInMonthParts(year, month int) int
	MonthsInYearPart(year int) int
	// MonthAdd moves an ordinal month by delta months.
	MonthAdd(year, month, delta int) (int, int)
	// MonthCodeParts returns the month code number and whether it is a leap month.
	MonthCodeParts(year, month int) (number int, leap bool)
	// LeapMonth returns the ordinal of the leap month in year, or 0.
	LeapMonth(year int) int
	// MonthsInYearSpan counts months in yearDelta whole years from yearStart.
	MonthsInYearSpan(yearDelta, yearStart int) int
}

// Eras is implemented by calendars with era/eraYear fields.
type Eras interface {
	EraYearToYear(era string, eraYear int) (int, error)
	YearToEra(year int) (string, int)
}

// LeapYears is implemented by solar calendars with leap days.
type LeapYears interface {
	IsLeapYear(year int) bool
}

// Native implements Calendar and Info on top of Parts.
type Native struct {
	Parts
}

var (
	_ Calendar = Native{}
	_ Info     = Native{}
)

// Limits keep whole-year and whole-month walks bounded before the final
// range check.
const (
	maxYearDelta  = 600_000
	maxMonthDelta = 600_000 * 13
	maxDayDelta   = 2*100_000_000 + 2
)

// MonthCodeNumberToMonth converts a month code back into an ordinal month
// for a year whose leap month (or 0) is leapMonth.
func MonthCodeNumberToMonth(number int, leap bool, leapMonth int) int {
	if leap || (leapMonth != 0 && number >= leapMonth) {
		return number + 1
	}
	return number
}

// LoopMonthsInYearSpan counts months year by year.
func LoopMonthsInYearSpan(p Parts, yearDelta, yearStart int) int {
	yearEnd := yearStart + yearDelta
	step := mathx.Sign(yearDelta)
	correction := 0
	if step < 0 {
		correction = -1
	}
	months := 0
	for y := yearStart; y != yearEnd; y += step {
		months += p.MonthsInYearPart(y + correction)
	}
	return months
}

// DateFromFields resolves year (or era and eraYear), month (or monthCode) and
// day into a date. Out-of-range months and days are clamped or rejected per
// overflow.
func (n Native) DateFromFields(f DateFields, overflow options.Overflow) (iso.Date, error) {
	year, err := n.resolveYear(f)
	if err != nil {
		return iso.Date{}, err
	}
	month, err := n.resolveMonth(f, year, overflow)
	if err != nil {
		return iso.Date{}, err
	}
	if f.Day == nil {
		return iso.Date{}, fmt.Errorf("calendar: %w: day is required", apperr.ErrInvalidFieldCombination)
	}
	day, err := regulate("day", *f.Day, n.DaysInMonthParts(year, month), overflow)
	if err != nil {
		return iso.Date{}, err
	}
	return n.checked(year, month, day)
}

// MonthDayFromFields resolves a month and day without a meaningful year. The
// returned date sits in the latest year at or before 1972 where the month
// code exists.
func (n Native) MonthDayFromFields(f DateFields, overflow options.Overflow) (iso.Date, error) {
	if f.Day == nil {
		return iso.Date{}, fmt.Errorf("calendar: %w: day is required", apperr.ErrInvalidFieldCombination)
	}
	code, leap := 0, false
	switch {
	case f.MonthCode != "":
		var err error
		if code, leap, err = ParseMonthCode(f.MonthCode); err != nil {
			return iso.Date{}, err
		}
	case f.Month != nil && (f.Year != nil || f.EraYear != nil):
		d, err := n.DateFromFields(f, overflow)
		if err != nil {
			return iso.Date{}, err
		}
		y, m, _ := n.DateParts(d)
		code, leap = n.MonthCodeParts(y, m)
	case f.Month != nil:
		code = *f.Month
	default:
		return iso.Date{}, fmt.Errorf("calendar: %w: month or monthCode is required", apperr.ErrInvalidFieldCombination)
	}
	if *f.Day < 1 {
		return iso.Date{}, fmt.Errorf("calendar: %w: day %d", apperr.ErrRangeOverflow, *f.Day)
	}
	refYear, _, _ := n.DateParts(iso.Date{Year: 1972, Month: 12, Day: 31})
	var fallback *iso.Date
	for y := refYear; y > refYear-100; y-- {
		lm := n.LeapMonth(y)
		if leap && lm != code+1 {
			continue
		}
		month := MonthCodeNumberToMonth(code, leap, lm)
		if month > n.MonthsInYearPart(y) {
			continue
		}
		limit := n.DaysInMonthParts(y, month)
		if *f.Day <= limit {
			return n.checked(y, month, *f.Day)
		}
		if fallback == nil && overflow == options.Constrain {
			d := n.IsoFromParts(y, month, limit)
			fallback = &d
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return iso.Date{}, fmt.Errorf("calendar: %w: no year holds %s-%02d", apperr.ErrRangeOverflow, FormatMonthCode(code, leap), *f.Day)
}

func (n Native) resolveYear(f DateFields) (int, error) {
	eras, hasEras := n.Parts.(Eras)
	if f.Era != "" || f.EraYear != nil {
		if !hasEras {
			return 0, fmt.Errorf("calendar: %w: %s has no eras", apperr.ErrInvalidFieldCombination, n.ID())
		}
		if f.Era == "" || f.EraYear == nil {
			return 0, fmt.Errorf("calendar: %w: era and eraYear go together", apperr.ErrInvalidFieldCombination)
		}
		y, err := eras.EraYearToYear(f.Era, *f.EraYear)
		if err != nil {
			return 0, err
		}
		if f.Year != nil && *f.Year != y {
			return 0, fmt.Errorf("calendar: %w: year %d disagrees with %s %d",
				apperr.ErrInvalidFieldCombination, *f.Year, f.Era, *f.EraYear)
		}
		return y, nil
	}
	if f.Year == nil {
		return 0, fmt.Errorf("calendar: %w: year is required", apperr.ErrInvalidFieldCombination)
	}
	return *f.Year, nil
}

func (n Native) resolveMonth(f DateFields, year int, overflow options.Overflow) (int, error) {
	monthsInYear := n.MonthsInYearPart(year)
	if f.MonthCode == "" {
		if f.Month == nil {
			return 0, fmt.Errorf("calendar: %w: month or monthCode is required", apperr.ErrInvalidFieldCombination)
		}
		return regulate("month", *f.Month, monthsInYear, overflow)
	}
	number, leap, err := ParseMonthCode(f.MonthCode)
	if err != nil {
		return 0, err
	}
	leapMonth := n.LeapMonth(year)
	if leap && leapMonth != number+1 {
		if overflow == options.Reject {
			return 0, fmt.Errorf("calendar: %w: %s does not exist in year %d", apperr.ErrRangeOverflow, f.MonthCode, year)
		}
		leap = false
	}
	month := MonthCodeNumberToMonth(number, leap, leapMonth)
	if month > monthsInYear {
		return 0, fmt.Errorf("calendar: %w: bad monthCode %q", apperr.ErrInvalidFieldCombination, f.MonthCode)
	}
	if f.Month != nil && *f.Month != month {
		return 0, fmt.Errorf("calendar: %w: month %d disagrees with monthCode %s",
			apperr.ErrInvalidFieldCombination, *f.Month, f.MonthCode)
	}
	return month, nil
}

func regulate(name string, v, hi int, overflow options.Overflow) (int, error) {
	if mathx.InRange(v, 1, hi) {
		return v, nil
	}
	if overflow == options.Reject || v < 1 {
		return 0, fmt.Errorf("calendar: %w: %s %d not in 1..%d", apperr.ErrRangeOverflow, name, v, hi)
	}
	return mathx.Clamp(v, 1, hi), nil
}

func (n Native) checked(year, month, day int) (iso.Date, error) {
	if year < iso.MinYear-1 || year > iso.MaxYear+1 {
		return iso.Date{}, fmt.Errorf("calendar: %w: year %d", apperr.ErrRangeOverflow, year)
	}
	d := n.IsoFromParts(year, month, day)
	if err := iso.CheckDate(d); err != nil {
		return iso.Date{}, err
	}
	return d, nil
}

// DateAdd adds whole years (keeping the month code), then whole months,
// regulates the day, then adds weeks and days.
func (n Native) DateAdd(d iso.Date, dur duration.Fields, overflow options.Overflow) (iso.Date, error) {
	if mathx.Abs(dur.Years) > maxYearDelta || mathx.Abs(dur.Months) > maxMonthDelta {
		return iso.Date{}, fmt.Errorf("calendar: %w: %s", apperr.ErrRangeOverflow, dur)
	}
	days := dur.Weeks*7 + dur.Days
	if mathx.Abs(dur.Weeks) > maxDayDelta || mathx.Abs(days) > maxDayDelta {
		return iso.Date{}, fmt.Errorf("calendar: %w: %s", apperr.ErrRangeOverflow, dur)
	}
	if dur.Years == 0 && dur.Months == 0 {
		out := d.AddDays(days)
		return out, iso.CheckDate(out)
	}

	year, month, day := n.DateParts(d)
	if dur.Years != 0 {
		number, leap := n.MonthCodeParts(year, month)
		year += int(dur.Years)
		leapMonth := n.LeapMonth(year)
		if leap && leapMonth != number+1 {
			if overflow == options.Reject {
				return iso.Date{}, fmt.Errorf("calendar: %w: %s does not exist in year %d",
					apperr.ErrRangeOverflow, FormatMonthCode(number, leap), year)
			}
			leap = false
		}
		month = MonthCodeNumberToMonth(number, leap, leapMonth)
	}
	if dur.Months != 0 {
		year, month = n.MonthAdd(year, month, int(dur.Months))
	}
	day, err := regulate("day", day, n.DaysInMonthParts(year, month), overflow)
	if err != nil {
		return iso.Date{}, err
	}
	base, err := n.checked(year, month, day)
	if err != nil {
		return iso.Date{}, err
	}
	out := base.AddDays(days)
	return out, iso.CheckDate(out)
}

// DateUntil diffs two dates. Weeks and days come from exact day counting;
// years and months walk the calendar's own month lengths.
func (n Native) DateUntil(a, b iso.Date, largest units.Unit) (duration.Fields, error) {
	if largest <= units.Week {
		days := iso.EpochDays(b) - iso.EpochDays(a)
		var weeks int64
		if largest == units.Week {
			weeks, days = mathx.DivModTrunc(days, 7)
		}
		return duration.Fields{Weeks: weeks, Days: days}, nil
	}
	y0, m0, d0 := n.DateParts(a)
	y1, m1, d1 := n.DateParts(b)
	years, months, days := n.diffYearMonthDay(y0, m0, d0, y1, m1, d1)
	if largest == units.Month {
		months += n.MonthsInYearSpan(years, y0)
		years = 0
	}
	return duration.Fields{Years: int64(years), Months: int64(months), Days: int64(days)}, nil
}

// diffYearMonthDay starts from lexical deltas and corrects overshoot by
// backing the end up a month (and then a year) whenever a lower delta points
// against the direction of travel.
func (n Native) diffYearMonthDay(year0, month0, day0, year1, month1, day1 int) (int, int, int) {
	yearDiff := year1 - year0
	monthDiff := month1 - month0
	dayDiff := day1 - day0

	if yearDiff == 0 && monthDiff == 0 {
		return 0, 0, dayDiff
	}
	sign := mathx.Sign(yearDiff)
	if sign == 0 {
		sign = mathx.Sign(monthDiff)
	}
	daysInMonth1 := n.DaysInMonthParts(year1, month1)
	dayCorrect := 0

	if mathx.Sign(dayDiff) == -sign {
		origDaysInMonth1 := daysInMonth1
		year1, month1 = n.MonthAdd(year1, month1, -sign)
		yearDiff = year1 - year0
		monthDiff = month1 - month0
		daysInMonth1 = n.DaysInMonthParts(year1, month1)
		if sign < 0 {
			dayCorrect = -origDaysInMonth1
		} else {
			dayCorrect = daysInMonth1
		}
	}

	day0Trunc := min(day0, daysInMonth1)
	dayDiff = day1 - day0Trunc + dayCorrect

	if yearDiff != 0 {
		code0, leap0 := n.MonthCodeParts(year0, month0)
		code1, leap1 := n.MonthCodeParts(year1, month1)
		monthDiff = code1 - code0
		if monthDiff == 0 {
			monthDiff = boolInt(leap1) - boolInt(leap0)
		}
		if mathx.Sign(monthDiff) == -sign {
			monthCorrect := 0
			if sign < 0 {
				monthCorrect = -n.MonthsInYearPart(year1)
			}
			year1 -= sign
			yearDiff = year1 - year0
			month0Trunc := MonthCodeNumberToMonth(code0, leap0, n.LeapMonth(year1))
			if monthCorrect == 0 {
				monthCorrect = n.MonthsInYearPart(year1)
			}
			monthDiff = month1 - month0Trunc + monthCorrect
		}
	}
	return yearDiff, monthDiff, dayDiff
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Fields adds era names wherever year is requested, for calendars with eras.
func (n Native) Fields(names []string) []string {
	out := append([]string(nil), names...)
	if _, ok := n.Parts.(Eras); !ok {
		return out
	}
	for _, name := range names {
		if name == FieldYear {
			return append(out, FieldEra, FieldEraYear)
		}
	}
	return out
}

// MergeFields overlays overrides. Supplying month or monthCode replaces both;
// for era calendars any of year, era or eraYear replaces all three.
func (n Native) MergeFields(base, overrides DateFields) DateFields {
	out := base
	if overrides.Month != nil || overrides.MonthCode != "" {
		out.Month, out.MonthCode = overrides.Month, overrides.MonthCode
	}
	_, hasEras := n.Parts.(Eras)
	yearTouched := overrides.Year != nil || overrides.Era != "" || overrides.EraYear != nil
	if yearTouched {
		if hasEras {
			out.Year, out.Era, out.EraYear = overrides.Year, overrides.Era, overrides.EraYear
		} else if overrides.Year != nil {
			out.Year = overrides.Year
		}
	}
	if overrides.Day != nil {
		out.Day = overrides.Day
	}
	return out
}

// DaysInMonth is the length of d's month.
func (n Native) DaysInMonth(d iso.Date) int {
	y, m, _ := n.DateParts(d)
	return n.DaysInMonthParts(y, m)
}

// MonthsInYear counts the months of d's year, leap months included.
func (n Native) MonthsInYear(d iso.Date) int {
	y, _, _ := n.DateParts(d)
	return n.MonthsInYearPart(y)
}

// MonthCode returns e.g. "M05", or "M05L" for a leap month.
func (n Native) MonthCode(d iso.Date) string {
	y, m, _ := n.DateParts(d)
	return FormatMonthCode(n.MonthCodeParts(y, m))
}

// Year is d's year in the calendar's own numbering.
func (n Native) Year(d iso.Date) int {
	y, _, _ := n.DateParts(d)
	return y
}

// Month is the ordinal month of d, counting leap months.
func (n Native) Month(d iso.Date) int {
	_, m, _ := n.DateParts(d)
	return m
}

// Day is the day of month.
func (n Native) Day(d iso.Date) int {
	_, _, day := n.DateParts(d)
	return day
}

// Era returns the era and the year within it. ok is false for calendars
// without eras.
func (n Native) Era(d iso.Date) (string, int, bool) {
	eras, ok := n.Parts.(Eras)
	if !ok {
		return "", 0, false
	}
	era, eraYear := eras.YearToEra(n.Year(d))
	return era, eraYear, true
}

// DaysInYear is the length of d's year.
func (n Native) DaysInYear(d iso.Date) int {
	y, _, _ := n.DateParts(d)
	start := n.IsoFromParts(y, 1, 1)
	next := n.IsoFromParts(y+1, 1, 1)
	return int(iso.EpochDays(next) - iso.EpochDays(start))
}

// InLeapYear reports whether d's year has a leap day or leap month.
func (n Native) InLeapYear(d iso.Date) bool {
	y, _, _ := n.DateParts(d)
	if ly, ok := n.Parts.(LeapYears); ok {
		return ly.IsLeapYear(y)
	}
	return n.LeapMonth(y) != 0
}

// DayOfWeek is 1 for Monday through 7 for Sunday.
func (n Native) DayOfWeek(d iso.Date) int { return d.DayOfWeek() }

// DayOfYear is 1-based.
func (n Native) DayOfYear(d iso.Date) int {
	y, _, _ := n.DateParts(d)
	return int(iso.EpochDays(d)-iso.EpochDays(n.IsoFromParts(y, 1, 1))) + 1
}

// WeekOfYear returns the ISO week number and the year that week belongs to.
func (n Native) WeekOfYear(d iso.Date) (int, int) { return d.WeekOfYear() }

// DaysInWeek is always 7.
func (n Native) DaysInWeek(iso.Date) int { return 7 }
