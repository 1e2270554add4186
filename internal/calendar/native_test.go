package calendar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

func d(y, m, day int) iso.Date { return iso.Date{Year: y, Month: m, Day: day} }

func TestISODateUntil(t *testing.T) {
	cal := NewISO()
	cases := []struct {
		name    string
		a, b    iso.Date
		largest units.Unit
		want    duration.Fields
	}{
		{"month overshoot", d(2021, 1, 31), d(2021, 3, 1), units.Month, duration.Fields{Months: 1, Days: 1}},
		{"month overshoot backward", d(2021, 3, 1), d(2021, 1, 31), units.Month, duration.Fields{Months: -1, Days: -1}},
		{"into shorter month", d(2021, 1, 31), d(2021, 2, 28), units.Month, duration.Fields{Days: 28}},
		{"leap day to next year", d(2020, 2, 29), d(2021, 2, 28), units.Year, duration.Fields{Months: 11, Days: 30}},
		{"whole years", d(2019, 6, 15), d(2023, 6, 15), units.Year, duration.Fields{Years: 4}},
		{"years as months", d(2019, 6, 15), d(2021, 8, 20), units.Month, duration.Fields{Months: 26, Days: 5}},
		{"weeks", d(2021, 1, 1), d(2021, 1, 20), units.Week, duration.Fields{Weeks: 2, Days: 5}},
		{"weeks backward", d(2021, 1, 20), d(2021, 1, 1), units.Week, duration.Fields{Weeks: -2, Days: -5}},
		{"days", d(2020, 1, 1), d(2021, 1, 1), units.Day, duration.Fields{Days: 366}},
		{"same day", d(2020, 1, 1), d(2020, 1, 1), units.Year, duration.Fields{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := cal.DateUntil(c.a, c.b, c.largest)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestISODateAdd(t *testing.T) {
	cal := NewISO()

	got, err := cal.DateAdd(d(2021, 1, 31), duration.Fields{Months: 1}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, d(2021, 2, 28), got)

	_, err = cal.DateAdd(d(2021, 1, 31), duration.Fields{Months: 1}, options.Reject)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))

	got, err = cal.DateAdd(d(2020, 2, 29), duration.Fields{Years: 1}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, d(2021, 2, 28), got)

	got, err = cal.DateAdd(d(2021, 1, 31), duration.Fields{Months: 1, Days: 1}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, d(2021, 3, 1), got)

	got, err = cal.DateAdd(d(2021, 3, 15), duration.Fields{Years: -1, Months: -14, Weeks: -1}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, d(2019, 1, 8), got)

	_, err = cal.DateAdd(d(275760, 9, 13), duration.Fields{Days: 1}, options.Constrain)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))
}

func TestISORoundTrip(t *testing.T) {
	cal := NewISO()
	starts := []iso.Date{d(2020, 1, 15), d(2019, 12, 31), d(2024, 2, 29), d(1999, 7, 1)}
	durs := []duration.Fields{
		{Years: 3}, {Months: 5}, {Months: -7}, {Weeks: 10}, {Days: -400}, {Years: -2},
	}
	for _, start := range starts {
		for _, dur := range durs {
			end, err := cal.DateAdd(start, dur, options.Reject)
			if err != nil {
				continue
			}
			back, err := cal.DateUntil(start, end, dur.LargestUnit())
			require.NoError(t, err)
			assert.Equal(t, dur, back, "%s + %s", start, dur)
		}
	}
}

func TestDateFromFields(t *testing.T) {
	iso8601 := NewISO()
	greg := NewGregorian()

	got, err := iso8601.DateFromFields(DateFields{Year: Int(2021), MonthCode: "M04", Day: Int(31)}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, d(2021, 4, 30), got)

	_, err = iso8601.DateFromFields(DateFields{Year: Int(2021), Month: Int(4), Day: Int(31)}, options.Reject)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))

	_, err = iso8601.DateFromFields(DateFields{Year: Int(2021), Month: Int(3), MonthCode: "M02", Day: Int(1)}, options.Constrain)
	assert.True(t, errors.Is(err, apperr.ErrInvalidFieldCombination))

	_, err = iso8601.DateFromFields(DateFields{Era: "ce", EraYear: Int(5), Month: Int(1), Day: Int(1)}, options.Constrain)
	assert.True(t, errors.Is(err, apperr.ErrInvalidFieldCombination))

	got, err = greg.DateFromFields(DateFields{Era: "bce", EraYear: Int(1), Month: Int(1), Day: Int(1)}, options.Reject)
	require.NoError(t, err)
	assert.Equal(t, d(0, 1, 1), got)

	_, err = greg.DateFromFields(DateFields{Era: "ce", EraYear: Int(2000), Year: Int(1999), Month: Int(1), Day: Int(1)}, options.Reject)
	assert.True(t, errors.Is(err, apperr.ErrInvalidFieldCombination))

	_, err = iso8601.DateFromFields(DateFields{Year: Int(2021), MonthCode: "M13", Day: Int(1)}, options.Constrain)
	assert.True(t, errors.Is(err, apperr.ErrInvalidFieldCombination))

	_, err = iso8601.DateFromFields(DateFields{Year: Int(2021), Month: Int(0), Day: Int(1)}, options.Constrain)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))
}

func TestMonthDayFromFields(t *testing.T) {
	cal := NewISO()
	got, err := cal.MonthDayFromFields(DateFields{MonthCode: "M02", Day: Int(29)}, options.Reject)
	require.NoError(t, err)
	assert.Equal(t, d(1972, 2, 29), got)

	got, err = cal.MonthDayFromFields(DateFields{Month: Int(2), Day: Int(30)}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, d(1972, 2, 29), got)

	_, err = cal.MonthDayFromFields(DateFields{Month: Int(2), Day: Int(30)}, options.Reject)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))
}

func TestFieldsAndMerge(t *testing.T) {
	assert.Equal(t, []string{"year", "month"}, NewISO().Fields([]string{"year", "month"}))
	assert.Equal(t, []string{"year", "day", "era", "eraYear"}, NewGregorian().Fields([]string{"year", "day"}))

	base := DateFields{Era: "ce", EraYear: Int(2020), Year: Int(2020), Month: Int(5), MonthCode: "M05", Day: Int(9)}
	merged := NewGregorian().MergeFields(base, DateFields{Year: Int(1999), MonthCode: "M07"})
	assert.Equal(t, "", merged.Era)
	assert.Nil(t, merged.EraYear)
	assert.Equal(t, 1999, *merged.Year)
	assert.Nil(t, merged.Month)
	assert.Equal(t, "M07", merged.MonthCode)
	assert.Equal(t, 9, *merged.Day)
}

func TestInfoAccessors(t *testing.T) {
	cal := NewGregorian()
	date := d(-5, 3, 1)
	era, eraYear, ok := cal.Era(date)
	require.True(t, ok)
	assert.Equal(t, "bce", era)
	assert.Equal(t, 6, eraYear)

	assert.Equal(t, 366, cal.DaysInYear(d(2024, 6, 1)))
	assert.True(t, cal.InLeapYear(d(2000, 1, 1)))
	assert.False(t, cal.InLeapYear(d(1900, 1, 1)))
	assert.Equal(t, 60, cal.DayOfYear(d(2024, 2, 29)))
	assert.Equal(t, "M02", cal.MonthCode(d(2024, 2, 29)))

	week, year := cal.WeekOfYear(d(2021, 1, 3))
	assert.Equal(t, 53, week)
	assert.Equal(t, 2020, year)
	week, year = cal.WeekOfYear(d(2024, 12, 30))
	assert.Equal(t, 1, week)
	assert.Equal(t, 2025, year)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Native{Parts: lunisolar{}})
	c, err := r.Get("GREGORY")
	require.NoError(t, err)
	assert.Equal(t, Gregorian, c.ID())

	c, err = r.Get("")
	require.NoError(t, err)
	assert.Equal(t, ISO8601, c.ID())

	_, err = r.Get("hebrew")
	assert.True(t, errors.Is(err, apperr.ErrUnknownCalendar))
	assert.Equal(t, []string{"gregory", "iso8601", "test-lunisolar"}, r.IDs())

	_, err = Common(NewISO(), NewGregorian())
	assert.True(t, errors.Is(err, apperr.ErrMismatchedCalendars))
}

// lunisolar is a toy calendar: months alternate 30 and 29 days, and every
// year divisible by 3 gets a 30-day leap month M06L after M06. Year 0 starts
// on 1970-01-01.
type lunisolar struct{}

func (lunisolar) ID() string { return "test-lunisolar" }

func (lunisolar) isLeap(year int) bool { return mathx.FloorMod(year, 3) == 0 }

func (l lunisolar) yearStart(year int) int64 {
	leaps := mathx.FloorDiv(year+2, 3)
	return int64(year)*354 + int64(leaps)*30
}

func (l lunisolar) DateParts(date iso.Date) (int, int, int) {
	days := iso.EpochDays(date)
	year := int(mathx.FloorDiv(days, 364))
	for l.yearStart(year) > days {
		year--
	}
	for l.yearStart(year+1) <= days {
		year++
	}
	rest := int(days - l.yearStart(year))
	month := 1
	for rest >= l.DaysInMonthParts(year, month) {
		rest -= l.DaysInMonthParts(year, month)
		month++
	}
	return year, month, rest + 1
}

func (l lunisolar) IsoFromParts(year, month, day int) iso.Date {
	days := l.yearStart(year)
	for m := 1; m < month; m++ {
		days += int64(l.DaysInMonthParts(year, m))
	}
	return iso.DateFromEpochDays(days + int64(day) - 1)
}

func (l lunisolar) DaysInMonthParts(year, month int) int {
	number, leap := l.MonthCodeParts(year, month)
	if leap || number%2 == 1 {
		return 30
	}
	return 29
}

func (l lunisolar) MonthsInYearPart(year int) int {
	if l.isLeap(year) {
		return 13
	}
	return 12
}

func (l lunisolar) MonthAdd(year, month, delta int) (int, int) {
	month += delta
	for month < 1 {
		year--
		month += l.MonthsInYearPart(year)
	}
	for month > l.MonthsInYearPart(year) {
		month -= l.MonthsInYearPart(year)
		year++
	}
	return year, month
}

func (l lunisolar) MonthCodeParts(year, month int) (int, bool) {
	lm := l.LeapMonth(year)
	switch {
	case lm == 0 || month < lm:
		return month, false
	case month == lm:
		return month - 1, true
	}
	return month - 1, false
}

func (l lunisolar) LeapMonth(year int) int {
	if l.isLeap(year) {
		return 7
	}
	return 0
}

func (l lunisolar) MonthsInYearSpan(yearDelta, yearStart int) int {
	return LoopMonthsInYearSpan(l, yearDelta, yearStart)
}

func TestLunisolarParts(t *testing.T) {
	cal := Native{Parts: lunisolar{}}
	for _, ymd := range [][3]int{{0, 1, 1}, {3, 7, 30}, {3, 13, 29}, {-1, 12, 29}, {-3, 7, 1}, {4, 6, 29}} {
		date := cal.IsoFromParts(ymd[0], ymd[1], ymd[2])
		y, m, dd := cal.DateParts(date)
		assert.Equal(t, ymd, [3]int{y, m, dd})
	}
	assert.Equal(t, d(1970, 1, 1), cal.IsoFromParts(0, 1, 1))
	assert.Equal(t, "M06L", cal.MonthCode(cal.IsoFromParts(3, 7, 1)))
	assert.Equal(t, "M07", cal.MonthCode(cal.IsoFromParts(3, 8, 1)))
	assert.Equal(t, 384, cal.DaysInYear(cal.IsoFromParts(3, 1, 1)))
	assert.True(t, cal.InLeapYear(cal.IsoFromParts(6, 1, 1)))
}

func TestLunisolarDiff(t *testing.T) {
	cal := Native{Parts: lunisolar{}}
	at := cal.IsoFromParts

	got, err := cal.DateUntil(at(2, 8, 3), at(3, 5, 3), units.Year)
	require.NoError(t, err)
	assert.Equal(t, duration.Fields{Months: 9}, got)

	got, err = cal.DateUntil(at(2, 8, 3), at(4, 8, 3), units.Month)
	require.NoError(t, err)
	assert.Equal(t, duration.Fields{Months: 25}, got)

	// M06L in a leap year to M07 the next year
	got, err = cal.DateUntil(at(3, 7, 5), at(4, 7, 5), units.Year)
	require.NoError(t, err)
	assert.Equal(t, duration.Fields{Years: 1, Months: 1}, got)

	back, err := cal.DateAdd(at(3, 7, 5), got, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, at(4, 7, 5), back)

	_, err = cal.DateAdd(at(3, 7, 5), duration.Fields{Years: 1}, options.Reject)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))

	// day 30 of a 30-day month into a 29-day month
	got, err = cal.DateUntil(at(1, 1, 30), at(1, 3, 1), units.Month)
	require.NoError(t, err)
	assert.Equal(t, duration.Fields{Months: 1, Days: 1}, got)
	back, err = cal.DateAdd(at(1, 1, 30), got, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, at(1, 3, 1), back)

	date, err := cal.DateFromFields(DateFields{Year: Int(3), MonthCode: "M06L", Day: Int(2)}, options.Reject)
	require.NoError(t, err)
	assert.Equal(t, at(3, 7, 2), date)

	date, err = cal.DateFromFields(DateFields{Year: Int(4), MonthCode: "M06L", Day: Int(2)}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, at(4, 6, 2), date)
}
