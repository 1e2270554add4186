// Package units defines the ordered unit hierarchy used by every diff, round and total call.
package units

import (
	"fmt"
	"strings"

	"github.com/starford/tempus/internal/apperr"
)

// Unit is ordered from Nanosecond up to Year.
type Unit int

const (
	Nanosecond Unit = iota
	Microsecond
	Millisecond
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

// Nanosecond counts per unit. Calendar units have no fixed length; Week and
// Day carry their solar length for callers that already know days are uniform.
const (
	NanoInMicro  int64 = 1000
	NanoInMilli        = 1000 * NanoInMicro
	NanoInSecond       = 1000 * NanoInMilli
	NanoInMinute       = 60 * NanoInSecond
	NanoInHour         = 60 * NanoInMinute
	NanoInDay          = 24 * NanoInHour
	NanoInWeek         = 7 * NanoInDay
)

var nanoPerUnit = [...]int64{
	Nanosecond:  1,
	Microsecond: NanoInMicro,
	Millisecond: NanoInMilli,
	Second:      NanoInSecond,
	Minute:      NanoInMinute,
	Hour:        NanoInHour,
	Day:         NanoInDay,
	Week:        NanoInWeek,
}

var names = [...]string{
	Nanosecond:  "nanosecond",
	Microsecond: "microsecond",
	Millisecond: "millisecond",
	Second:      "second",
	Minute:      "minute",
	Hour:        "hour",
	Day:         "day",
	Week:        "week",
	Month:       "month",
	Year:        "year",
}

// All lists every unit in ascending order.
var All = []Unit{Nanosecond, Microsecond, Millisecond, Second, Minute, Hour, Day, Week, Month, Year}

// Nanos returns the fixed length of u in nanoseconds, or 0 for Month and Year.
func (u Unit) Nanos() int64 {
	if u < Nanosecond || u > Week {
		return 0
	}
	return nanoPerUnit[u]
}

// IsDayTime reports whether u is Day or smaller.
func (u Unit) IsDayTime() bool { return u <= Day }

// IsTime reports whether u is Hour or smaller.
func (u Unit) IsTime() bool { return u < Day }

// IsValid reports whether u is one of the defined units.
func (u Unit) IsValid() bool { return u >= Nanosecond && u <= Year }

func (u Unit) String() string {
	if !u.IsValid() {
		return fmt.Sprintf("unit(%d)", int(u))
	}
	return names[u]
}

// Parse accepts singular or plural unit names ("hour", "hours").
func Parse(name string) (Unit, error) {
	n := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "s")
	for u, s := range names {
		if s == n {
			return Unit(u), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown unit %q", apperr.ErrInvalidOption, name)
}

// Max returns the larger of a and b.
func Max(a, b Unit) Unit {
	if a > b {
		return a
	}
	return b
}
