// Package daytime implements the exact (days, nanosecond-of-day) value used for
// instants and for day/time spans. Arithmetic never goes through floating point.
package daytime

import (
	"fmt"
	"math/big"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

// MaxEpochDays bounds the supported instant range on both sides of the epoch.
const MaxEpochDays int64 = 100_000_000

// Nano is a signed exact value. Nanos is always in [0, units.NanoInDay).
type Nano struct {
	Days  int64
	Nanos int64
}

var (
	Zero     = Nano{}
	MinEpoch = Nano{Days: -MaxEpochDays}
	MaxEpoch = Nano{Days: MaxEpochDays}
)

var bigNanoInDay = big.NewInt(units.NanoInDay)

// New builds a normalized value from possibly out-of-range parts.
func New(days, nanos int64) Nano {
	carry, rem := mathx.DivModFloor(nanos, units.NanoInDay)
	return Nano{Days: days + carry, Nanos: rem}
}

// FromNanos converts a plain nanosecond count.
func FromNanos(n int64) Nano { return New(0, n) }

// FromUnits converts count*unitNanos without intermediate overflow.
// unitNanos must divide a day.
func FromUnits(count, unitNanos int64) Nano {
	per := units.NanoInDay / unitNanos
	d, r := mathx.DivModTrunc(count, per)
	return New(d, r*unitNanos)
}

// FromBig converts an arbitrary precision nanosecond count.
func FromBig(n *big.Int) (Nano, error) {
	d, m := new(big.Int).DivMod(n, bigNanoInDay, new(big.Int))
	if !d.IsInt64() {
		return Zero, fmt.Errorf("daytime: %w: %s nanoseconds", apperr.ErrRangeOverflow, n)
	}
	return Nano{Days: d.Int64(), Nanos: m.Int64()}, nil
}

// Big returns the total nanosecond count.
func (v Nano) Big() *big.Int {
	b := new(big.Int).Mul(big.NewInt(v.Days), bigNanoInDay)
	return b.Add(b, big.NewInt(v.Nanos))
}

// Add returns a + sign*b.
func Add(a, b Nano, sign int) Nano {
	s := int64(sign)
	return New(a.Days+s*b.Days, a.Nanos+s*b.Nanos)
}

// Diff returns b - a.
func Diff(a, b Nano) Nano { return Add(b, a, -1) }

// Compare returns -1, 0 or 1.
func Compare(a, b Nano) int {
	if c := mathx.Sign(a.Days - b.Days); c != 0 {
		return c
	}
	return mathx.Sign(a.Nanos - b.Nanos)
}

// Sign returns the sign of v.
func (v Nano) Sign() int { return Compare(v, Zero) }

// Negate returns -v.
func (v Nano) Negate() Nano { return New(-v.Days, -v.Nanos) }

// Abs returns |v|.
func (v Nano) Abs() Nano {
	if v.Sign() < 0 {
		return v.Negate()
	}
	return v
}

// AddNanos is a shortcut for Add(v, FromNanos(n), 1).
func (v Nano) AddNanos(n int64) Nano { return New(v.Days, v.Nanos+n) }

// Validate fails with ErrRangeOverflow outside the supported instant range.
func (v Nano) Validate() error {
	if Compare(v, MinEpoch) < 0 || Compare(v, MaxEpoch) > 0 {
		return fmt.Errorf("daytime: %w: epoch %s outside ±%d days", apperr.ErrRangeOverflow, v, MaxEpochDays)
	}
	return nil
}

// Round rounds v to a multiple of incNanos.
func Round(v Nano, incNanos int64, mode options.RoundingMode) Nano {
	if incNanos <= 1 {
		return v
	}
	// Rounding the nanos alone is exact when whole days are whole increments,
	// except that halfEven parity also depends on the days when a day holds an
	// odd number of increments.
	if units.NanoInDay%incNanos == 0 && (v.Days >= 0 || v.Nanos == 0) &&
		(mode != options.HalfEven || (units.NanoInDay/incNanos)%2 == 0) {
		return New(v.Days, options.RoundInt64(v.Nanos, incNanos, mode))
	}
	r := options.RoundBig(v.Big(), big.NewInt(incNanos), mode)
	d, m := new(big.Int).DivMod(r, bigNanoInDay, new(big.Int))
	return Nano{Days: d.Int64(), Nanos: m.Int64()}
}

// RoundBy rounds v to a multiple of inc units of unitNanos each. The
// increment may exceed int64 nanoseconds (e.g. 10^9 days).
func RoundBy(v Nano, unitNanos, inc int64, mode options.RoundingMode) Nano {
	if !mathx.MulOverflows(unitNanos, inc) {
		return Round(v, unitNanos*inc, mode)
	}
	step := new(big.Int).Mul(big.NewInt(unitNanos), big.NewInt(inc))
	r := options.RoundBig(v.Big(), step, mode)
	d, m := new(big.Int).DivMod(r, bigNanoInDay, new(big.Int))
	return Nano{Days: d.Int64(), Nanos: m.Int64()}
}

// ToNumber converts v into a count of units of unitNanos.
// With exact=false the count is truncated toward zero and must be exactly
// representable as a float64. With exact=true the nearest float64 to the
// exact quotient is returned.
func ToNumber(v Nano, unitNanos int64, exact bool) (float64, error) {
	if exact {
		f, _ := new(big.Rat).SetFrac(v.Big(), big.NewInt(unitNanos)).Float64()
		return f, nil
	}
	q := new(big.Int).Quo(v.Big(), big.NewInt(unitNanos))
	if q.CmpAbs(maxSafeInteger) > 0 {
		return 0, fmt.Errorf("daytime: %w: %s units", apperr.ErrPrecisionLoss, q)
	}
	return float64(q.Int64()), nil
}

var maxSafeInteger = big.NewInt(1<<53 - 1)

// ToUnits truncates v toward zero into whole units and returns the remainder
// in nanoseconds (same sign as v).
func (v Nano) ToUnits(unitNanos int64) (int64, int64, error) {
	q, r := new(big.Int).QuoRem(v.Big(), big.NewInt(unitNanos), new(big.Int))
	if !q.IsInt64() {
		return 0, 0, fmt.Errorf("daytime: %w: %s units", apperr.ErrRangeOverflow, q)
	}
	return q.Int64(), r.Int64(), nil
}

func (v Nano) String() string {
	return fmt.Sprintf("%dd+%dns", v.Days, v.Nanos)
}
