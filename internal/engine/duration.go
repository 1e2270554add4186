package engine

import (
	"fmt"
	"math/big"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

// SpanDuration moves m by d0 (then d1, when given) and re-expresses the
// whole span with units up to largest. It also returns the end epoch.
func SpanDuration(m Marker, d0 duration.Fields, d1 *duration.Fields, largest units.Unit) (duration.Fields, daytime.Nano, error) {
	end, err := m.Move(d0)
	if err != nil {
		return duration.Zero, daytime.Zero, err
	}
	if d1 != nil {
		if end, err = end.Move(*d1); err != nil {
			return duration.Zero, daytime.Zero, err
		}
	}
	endEpoch, err := end.EpochNano()
	if err != nil {
		return duration.Zero, daytime.Zero, err
	}
	d, err := m.Diff(end, largest)
	if err != nil {
		return duration.Zero, daytime.Zero, err
	}
	return d, endEpoch, nil
}

// dayTimeOnly reports whether a duration up to largest can be handled as
// plain nanoseconds, where a day is always 24 hours.
func dayTimeOnly(largest units.Unit, rel *RelativeTo) bool {
	return largest < units.Day || (largest == units.Day && !rel.Zoned())
}

func requireRelativeTo(rel *RelativeTo, largest units.Unit) error {
	if rel == nil {
		return fmt.Errorf("engine: %w: %s needs a reference point", apperr.ErrMissingRelativeTo, largest)
	}
	return nil
}

// RoundDuration rounds and rebalances d. Calendar units and zoned days are
// measured from rel.
func RoundDuration(d duration.Fields, o options.DurationRoundOptions, rel *RelativeTo) (duration.Fields, error) {
	if err := d.Validate(); err != nil {
		return duration.Zero, err
	}
	own := d.LargestUnit()
	s, err := options.RefineDurationRoundOptions(o, own)
	if err != nil {
		return duration.Zero, fmt.Errorf("engine: %w", err)
	}
	maxUnit := units.Max(own, s.LargestUnit)
	if dayTimeOnly(maxUnit, rel) {
		return RoundDayTimeDuration(d, s.LargestUnit, s.SmallestUnit, s.RoundingIncrement, s.RoundingMode)
	}
	if err := requireRelativeTo(rel, maxUnit); err != nil {
		return duration.Zero, err
	}
	var transplanted int64
	if d.Weeks != 0 && s.SmallestUnit == units.Week {
		transplanted, d = d.Weeks, d.With(units.Week, 0)
	}
	m := NewMarker(*rel)
	balanced, endEpoch, err := SpanDuration(m, d, nil, s.LargestUnit)
	if err != nil {
		return duration.Zero, err
	}
	origSign, balancedSign := d.Sign(), balanced.Sign()
	if origSign != 0 && balancedSign != 0 && origSign != balancedSign {
		return duration.Zero, fmt.Errorf("engine: %w: %s rebalanced to %s", apperr.ErrFaultyCalendarResult, d, balanced)
	}
	if balancedSign != 0 && !skipsRounding(s, units.Nanosecond) {
		balanced, err = RoundRelativeDuration(balanced, endEpoch, m,
			s.LargestUnit, s.SmallestUnit, s.RoundingIncrement, s.RoundingMode)
		if err != nil {
			return duration.Zero, err
		}
	}
	return duration.NewBuilder(balanced).Add(units.Week, transplanted).Build()
}

// TotalDuration expresses d as a fractional count of unit. The result is
// the float64 nearest to the exact value.
func TotalDuration(d duration.Fields, o options.TotalOptions, rel *RelativeTo) (float64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	unit, err := options.RefineTotalOptions(o)
	if err != nil {
		return 0, fmt.Errorf("engine: %w", err)
	}
	maxUnit := units.Max(d.LargestUnit(), unit)
	if dayTimeOnly(maxUnit, rel) {
		return daytime.ToNumber(d.DayTime(), unit.Nanos(), true)
	}
	if err := requireRelativeTo(rel, maxUnit); err != nil {
		return 0, err
	}
	if d.IsZero() {
		return 0, nil
	}
	m := NewMarker(*rel)
	balanced, endEpoch, err := SpanDuration(m, d, nil, unit)
	if err != nil {
		return 0, err
	}
	sign := int64(d.Sign())
	start := balanced
	if unit > units.Nanosecond {
		start = balanced.ClearThrough(unit - 1)
	}
	whole := start.Get(unit)
	epoch0, err := moveEpoch(m, start)
	if err != nil {
		return 0, err
	}
	epoch1, err := moveEpoch(m, start.With(unit, whole+sign))
	if err != nil {
		return 0, err
	}
	num := daytime.Diff(epoch0, endEpoch).Big()
	den := daytime.Diff(epoch0, epoch1).Big()
	if den.Sign() == 0 {
		return 0, fmt.Errorf("engine: %w: one %s from %s has no length", apperr.ErrNonMonotonicCalendar, unit, start)
	}
	frac := new(big.Rat).SetFrac(num, den)
	total := new(big.Rat).SetInt64(whole)
	total.Add(total, frac.Mul(frac, big.NewRat(sign, 1)))
	f, _ := total.Float64()
	return f, nil
}

// AddDurations returns a + b (or a - b), balanced up to the larger of the
// two largest units.
func AddDurations(a, b duration.Fields, subtract bool, rel *RelativeTo) (duration.Fields, error) {
	if err := a.Validate(); err != nil {
		return duration.Zero, err
	}
	if err := b.Validate(); err != nil {
		return duration.Zero, err
	}
	if subtract {
		b = b.Negate()
	}
	largest := units.Max(a.LargestUnit(), b.LargestUnit())
	if dayTimeOnly(largest, rel) {
		return duration.FromDayTime(daytime.Add(a.DayTime(), b.DayTime(), 1), largest)
	}
	if err := requireRelativeTo(rel, largest); err != nil {
		return duration.Zero, err
	}
	d, _, err := SpanDuration(NewMarker(*rel), a, &b, largest)
	return d, err
}

// CompareDurations orders a and b by the instants they reach from rel.
func CompareDurations(a, b duration.Fields, rel *RelativeTo) (int, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}
	largest := units.Max(a.LargestUnit(), b.LargestUnit())
	if dayTimeOnly(largest, rel) {
		return daytime.Compare(a.DayTime(), b.DayTime()), nil
	}
	if err := requireRelativeTo(rel, largest); err != nil {
		return 0, err
	}
	m := NewMarker(*rel)
	ea, err := moveEpoch(m, a)
	if err != nil {
		return 0, err
	}
	eb, err := moveEpoch(m, b)
	if err != nil {
		return 0, err
	}
	return daytime.Compare(ea, eb), nil
}
