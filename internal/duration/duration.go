// Package duration implements the ten-field signed duration record.
package duration

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/units"
)

// Fields is an immutable multi-unit span. All non-zero fields share one sign.
type Fields struct {
	Years        int64 `json:"years,omitempty" yaml:"years,omitempty"`
	Months       int64 `json:"months,omitempty" yaml:"months,omitempty"`
	Weeks        int64 `json:"weeks,omitempty" yaml:"weeks,omitempty"`
	Days         int64 `json:"days,omitempty" yaml:"days,omitempty"`
	Hours        int64 `json:"hours,omitempty" yaml:"hours,omitempty"`
	Minutes      int64 `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	Seconds      int64 `json:"seconds,omitempty" yaml:"seconds,omitempty"`
	Milliseconds int64 `json:"milliseconds,omitempty" yaml:"milliseconds,omitempty"`
	Microseconds int64 `json:"microseconds,omitempty" yaml:"microseconds,omitempty"`
	Nanoseconds  int64 `json:"nanoseconds,omitempty" yaml:"nanoseconds,omitempty"`
}

// Zero is the blank duration.
var Zero = Fields{}

func (f *Fields) ptr(u units.Unit) *int64 {
	switch u {
	case units.Year:
		return &f.Years
	case units.Month:
		return &f.Months
	case units.Week:
		return &f.Weeks
	case units.Day:
		return &f.Days
	case units.Hour:
		return &f.Hours
	case units.Minute:
		return &f.Minutes
	case units.Second:
		return &f.Seconds
	case units.Millisecond:
		return &f.Milliseconds
	case units.Microsecond:
		return &f.Microseconds
	case units.Nanosecond:
		return &f.Nanoseconds
	}
	panic(fmt.Sprintf("duration: invalid unit %d", int(u)))
}

// Get returns the field for u.
func (f Fields) Get(u units.Unit) int64 { return *f.ptr(u) }

// With returns a copy with the field for u replaced.
func (f Fields) With(u units.Unit, v int64) Fields {
	*f.ptr(u) = v
	return f
}

// Validate fails with ErrMixedSign when non-zero fields disagree in sign.
func (f Fields) Validate() error {
	sign := 0
	for _, u := range units.All {
		s := mathx.Sign(f.Get(u))
		if s == 0 {
			continue
		}
		if sign != 0 && s != sign {
			return fmt.Errorf("duration: %w: %s", apperr.ErrMixedSign, f)
		}
		sign = s
	}
	return nil
}

// Sign returns the sign of the first non-zero field. f must be valid.
func (f Fields) Sign() int {
	for i := len(units.All) - 1; i >= 0; i-- {
		if s := mathx.Sign(f.Get(units.All[i])); s != 0 {
			return s
		}
	}
	return 0
}

// IsZero reports whether every field is zero.
func (f Fields) IsZero() bool { return f == Zero }

// Negate flips every field.
func (f Fields) Negate() Fields {
	for _, u := range units.All {
		p := f.ptr(u)
		*p = -*p
	}
	return f
}

// Abs returns f with a non-negative sign.
func (f Fields) Abs() Fields {
	if f.Sign() < 0 {
		return f.Negate()
	}
	return f
}

// LargestUnit returns the largest unit with a non-zero field, or Nanosecond.
func (f Fields) LargestUnit() units.Unit {
	for u := units.Year; u > units.Nanosecond; u-- {
		if f.Get(u) != 0 {
			return u
		}
	}
	return units.Nanosecond
}

// ClearThrough zeroes every field from Nanosecond up to and including u.
func (f Fields) ClearThrough(u units.Unit) Fields {
	for x := units.Nanosecond; x <= u; x++ {
		*f.ptr(x) = 0
	}
	return f
}

// ClearAbove zeroes every field strictly larger than u.
func (f Fields) ClearAbove(u units.Unit) Fields {
	for x := u + 1; x <= units.Year; x++ {
		*f.ptr(x) = 0
	}
	return f
}

// HasDateParts reports whether years, months, weeks or days are non-zero.
func (f Fields) HasDateParts() bool {
	return f.Years != 0 || f.Months != 0 || f.Weeks != 0 || f.Days != 0
}

// HasCalendarParts reports whether years, months or weeks are non-zero.
func (f Fields) HasCalendarParts() bool {
	return f.Years != 0 || f.Months != 0 || f.Weeks != 0
}

// DateOnly keeps years through days.
func (f Fields) DateOnly() Fields {
	return Fields{Years: f.Years, Months: f.Months, Weeks: f.Weeks, Days: f.Days}
}

// TimeOnly keeps hours through nanoseconds.
func (f Fields) TimeOnly() Fields {
	return f.ClearAbove(units.Hour)
}

// DayTime sums days through nanoseconds exactly. Larger fields are ignored.
func (f Fields) DayTime() daytime.Nano {
	n := daytime.FromUnits(f.Days, units.NanoInDay)
	return daytime.Add(n, f.TimeNano(), 1)
}

// TimeNano sums hours through nanoseconds exactly.
func (f Fields) TimeNano() daytime.Nano {
	n := daytime.Zero
	for u := units.Nanosecond; u <= units.Hour; u++ {
		n = daytime.Add(n, daytime.FromUnits(f.Get(u), u.Nanos()), 1)
	}
	return n
}

// FromDayTime spreads n over the fields from largest (at most Day) downward.
func FromDayTime(n daytime.Nano, largest units.Unit) (Fields, error) {
	if largest > units.Day {
		largest = units.Day
	}
	sign := n.Sign()
	q, rem, err := n.Abs().ToUnits(largest.Nanos())
	if err != nil {
		return Zero, fmt.Errorf("duration: %w", err)
	}
	f := FromTimeNanos(rem, largest-1).With(largest, q)
	if sign < 0 {
		f = f.Negate()
	}
	return f, nil
}

// FromTimeNanos spreads a nanosecond count (|n| < 2^63) over the time fields
// from largest (at most Hour) downward.
func FromTimeNanos(n int64, largest units.Unit) Fields {
	if largest > units.Hour {
		largest = units.Hour
	}
	var f Fields
	neg := n < 0
	if neg {
		n = -n
	}
	for u := largest; u >= units.Nanosecond; u-- {
		size := u.Nanos()
		*f.ptr(u) = n / size
		n %= size
		if u == units.Nanosecond {
			break
		}
	}
	if neg {
		f = f.Negate()
	}
	return f
}

func (f Fields) String() string {
	return fmt.Sprintf("P%dY%dM%dW%dDT%dH%dM%dS%dms%dus%dns",
		f.Years, f.Months, f.Weeks, f.Days, f.Hours, f.Minutes, f.Seconds,
		f.Milliseconds, f.Microseconds, f.Nanoseconds)
}

// Builder accumulates field adjustments before freezing them into Fields.
type Builder struct {
	f   Fields
	err error
}

// NewBuilder starts from base.
func NewBuilder(base Fields) *Builder { return &Builder{f: base} }

// Set replaces the field for u.
func (b *Builder) Set(u units.Unit, v int64) *Builder {
	*b.f.ptr(u) = v
	return b
}

// Add adds v to the field for u.
func (b *Builder) Add(u units.Unit, v int64) *Builder {
	p := b.f.ptr(u)
	if mathx.AddOverflows(*p, v) {
		b.err = fmt.Errorf("duration: %w: %s overflows", apperr.ErrRangeOverflow, u)
		return b
	}
	*p += v
	return b
}

// Merge adds every field of other.
func (b *Builder) Merge(other Fields) *Builder {
	for _, u := range units.All {
		b.Add(u, other.Get(u))
	}
	return b
}

// Clear zeroes the fields from Nanosecond through u.
func (b *Builder) Clear(u units.Unit) *Builder {
	b.f = b.f.ClearThrough(u)
	return b
}

// Build validates and returns the accumulated fields.
func (b *Builder) Build() (Fields, error) {
	if b.err != nil {
		return Zero, b.err
	}
	if err := b.f.Validate(); err != nil {
		return Zero, err
	}
	return b.f, nil
}
