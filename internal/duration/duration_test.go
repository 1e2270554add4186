package duration

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/units"
)

func TestValidateAndSign(t *testing.T) {
	assert.NoError(t, Fields{Hours: 1, Minutes: 30}.Validate())
	assert.NoError(t, Zero.Validate())
	err := Fields{Days: 1, Hours: -1}.Validate()
	assert.True(t, errors.Is(err, apperr.ErrMixedSign))

	assert.Equal(t, -1, Fields{Months: -2, Nanoseconds: -5}.Sign())
	assert.Equal(t, 0, Zero.Sign())
	assert.Equal(t, Fields{Months: 2, Nanoseconds: 5}, Fields{Months: -2, Nanoseconds: -5}.Abs())
}

func TestUnitsAndClearing(t *testing.T) {
	f := Fields{Years: 1, Days: 3, Hours: 4, Nanoseconds: 9}
	assert.Equal(t, units.Year, f.LargestUnit())
	assert.Equal(t, units.Nanosecond, Zero.LargestUnit())
	assert.Equal(t, Fields{Years: 1}, f.ClearThrough(units.Day))
	assert.Equal(t, Fields{Hours: 4, Nanoseconds: 9}, f.ClearAbove(units.Hour))
	assert.Equal(t, f.TimeOnly(), f.ClearAbove(units.Hour))
	assert.Equal(t, Fields{Years: 1, Days: 3}, f.DateOnly())
	assert.True(t, f.HasCalendarParts())
	assert.False(t, Fields{Days: 1}.HasCalendarParts())
	assert.True(t, Fields{Days: 1}.HasDateParts())
	assert.Equal(t, int64(3), f.Get(units.Day))
	assert.Equal(t, int64(7), f.With(units.Week, 7).Weeks)
}

func TestDayTimeIsExact(t *testing.T) {
	f := Fields{Days: 2, Hours: math.MaxInt64, Nanoseconds: 1}
	n := f.DayTime()
	want := daytime.Add(daytime.FromUnits(math.MaxInt64, units.NanoInHour), daytime.New(2, 1), 1)
	assert.Equal(t, 0, daytime.Compare(want, n))
}

func TestFromDayTime(t *testing.T) {
	n := daytime.New(1, 12*units.NanoInHour+5)
	f, err := FromDayTime(n, units.Day)
	require.NoError(t, err)
	assert.Equal(t, Fields{Days: 1, Hours: 12, Nanoseconds: 5}, f)

	f, err = FromDayTime(n, units.Hour)
	require.NoError(t, err)
	assert.Equal(t, Fields{Hours: 36, Nanoseconds: 5}, f)

	f, err = FromDayTime(n.Negate(), units.Minute)
	require.NoError(t, err)
	assert.Equal(t, Fields{Minutes: -2160, Nanoseconds: -5}, f)

	f, err = FromDayTime(daytime.New(0, 1500), units.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, Fields{Nanoseconds: 1500}, f)

	// a largest unit above Day is capped
	f, err = FromDayTime(n, units.Year)
	require.NoError(t, err)
	assert.Equal(t, Fields{Days: 1, Hours: 12, Nanoseconds: 5}, f)

	_, err = FromDayTime(daytime.New(100_000_000, 0), units.Nanosecond)
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))
}

func TestFromTimeNanos(t *testing.T) {
	f := FromTimeNanos(-(units.NanoInHour + 2*units.NanoInMilli + 3), units.Minute)
	assert.Equal(t, Fields{Minutes: -60, Milliseconds: -2, Nanoseconds: -3}, f)
}

func TestBuilder(t *testing.T) {
	f, err := NewBuilder(Fields{Hours: 1}).Add(units.Hour, 2).Set(units.Minute, 5).Build()
	require.NoError(t, err)
	assert.Equal(t, Fields{Hours: 3, Minutes: 5}, f)

	_, err = NewBuilder(Fields{Days: math.MaxInt64}).Add(units.Day, 1).Build()
	assert.True(t, errors.Is(err, apperr.ErrRangeOverflow))

	_, err = NewBuilder(Fields{Days: 1}).Merge(Fields{Hours: -1}).Build()
	assert.True(t, errors.Is(err, apperr.ErrMixedSign))

	f, err = NewBuilder(Fields{Days: 1, Hours: 2, Seconds: 3}).Clear(units.Hour).Build()
	require.NoError(t, err)
	assert.Equal(t, Fields{Days: 1}, f)
}
