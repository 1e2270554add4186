package iso

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

func TestEpochDaysRoundTrip(t *testing.T) {
	cases := map[Date]int64{
		{1970, 1, 1}:     0,
		{1969, 12, 31}:   -1,
		{2000, 3, 1}:     11017,
		{275760, 9, 13}:  100_000_000,
		{-271821, 4, 20}: -100_000_000,
		{-271821, 4, 19}: -100_000_001,
		{2024, 2, 29}:    19782,
		{-1, 12, 31}:     -719529,
	}
	for date, days := range cases {
		assert.Equal(t, days, EpochDays(date), date.String())
		assert.Equal(t, date, DateFromEpochDays(days), date.String())
	}
}

func TestWeekOfYear(t *testing.T) {
	cases := []struct {
		date       Date
		week, year int
	}{
		{Date{2021, 1, 3}, 53, 2020},
		{Date{2021, 1, 4}, 1, 2021},
		{Date{2024, 12, 30}, 1, 2025},
		{Date{2026, 10, 19}, 43, 2026},
		{Date{2015, 12, 31}, 53, 2015},
	}
	for _, c := range cases {
		week, year := c.date.WeekOfYear()
		assert.Equal(t, c.week, week, c.date.String())
		assert.Equal(t, c.year, year, c.date.String())
	}
	assert.Equal(t, 4, Date{1970, 1, 1}.DayOfWeek())
	assert.Equal(t, 7, Date{2026, 10, 18}.DayOfWeek())
}

func TestTimeFromNano(t *testing.T) {
	tm, carry := TimeFromNano(-1)
	assert.Equal(t, int64(-1), carry)
	assert.Equal(t, Time{23, 59, 59, 999, 999, 999}, tm)

	tm, carry = TimeFromNano(units.NanoInDay + 90*units.NanoInMinute)
	assert.Equal(t, int64(1), carry)
	assert.Equal(t, Time{Hour: 1, Minute: 30}, tm)
}

func TestDateTimeEpoch(t *testing.T) {
	dt := NewDateTime(Date{1969, 12, 31}, Time{Hour: 23, Minute: 59})
	e, err := dt.EpochNano()
	require.NoError(t, err)
	assert.Equal(t, daytime.FromNanos(-60*units.NanoInSecond), e)
	assert.Equal(t, dt, FromEpochNano(e))

	local := FromEpochNanoOffset(daytime.Zero, -5*units.NanoInHour)
	assert.Equal(t, NewDateTime(Date{1969, 12, 31}, Time{Hour: 19}), local)

	next := dt.AddNanos(daytime.FromNanos(2 * units.NanoInMinute))
	assert.Equal(t, NewDateTime(Date{1970, 1, 1}, Time{Minute: 1}), next)

	// one day past the last instant is still representable as a plain value
	_, err = NewDateTime(Date{275760, 9, 13}, Time{Hour: 23}).EpochNano()
	require.NoError(t, err)
	_, err = NewDateTime(Date{275760, 9, 14}, Time{}).EpochNano()
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))
	_, err = NewDateTime(Date{-271821, 4, 19}, Time{}).EpochNano()
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))
	_, err = NewDateTime(Date{-271821, 4, 19}, Time{Nanosecond: 1}).EpochNano()
	require.NoError(t, err)
}

func TestCompare(t *testing.T) {
	a := NewDateTime(Date{2020, 5, 1}, Time{Hour: 3})
	b := NewDateTime(Date{2020, 5, 1}, Time{Hour: 3, Nanosecond: 1})
	assert.Equal(t, -1, CompareDateTimes(a, b))
	assert.Equal(t, 1, CompareDateTimes(b, a))
	assert.Equal(t, 0, CompareDateTimes(a, a))
	assert.Equal(t, 1, CompareDates(Date{2021, 1, 1}, Date{2020, 12, 31}))
}

func TestRegulate(t *testing.T) {
	d, err := RegulateDate(2023, 2, 30, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, Date{2023, 2, 28}, d)

	_, err = RegulateDate(2023, 13, 1, options.Reject)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))

	tm, err := RegulateTime(Time{Hour: 24, Minute: 61}, options.Constrain)
	require.NoError(t, err)
	assert.Equal(t, Time{Hour: 23, Minute: 59}, tm)

	_, err = RegulateTime(Time{Second: 60}, options.Reject)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))
}
