package options

import (
	"fmt"
	"math/big"

	"github.com/starford/tempus/internal/apperr"
)

// RoundingMode selects how a remainder is resolved. The first four are
// ordered so that inverting the direction of travel maps m to (m+2)%4.
type RoundingMode int

const (
	Floor RoundingMode = iota
	HalfFloor
	Ceil
	HalfCeil
	Trunc
	HalfTrunc
	Expand
	HalfExpand
	HalfEven
)

var roundingModeNames = [...]string{
	Floor:      "floor",
	HalfFloor:  "halfFloor",
	Ceil:       "ceil",
	HalfCeil:   "halfCeil",
	Trunc:      "trunc",
	HalfTrunc:  "halfTrunc",
	Expand:     "expand",
	HalfExpand: "halfExpand",
	HalfEven:   "halfEven",
}

func (m RoundingMode) String() string {
	if m < Floor || m > HalfEven {
		return fmt.Sprintf("roundingMode(%d)", int(m))
	}
	return roundingModeNames[m]
}

// ParseRoundingMode accepts the exact option names, e.g. "halfExpand".
func ParseRoundingMode(s string) (RoundingMode, error) {
	for i, n := range roundingModeNames {
		if n == s {
			return RoundingMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: rounding mode %q", apperr.ErrInvalidOption, s)
}

// Invert swaps floor and ceil flavours, used when a diff is computed as
// "until" but reported as "since".
func (m RoundingMode) Invert() RoundingMode {
	if m < 4 {
		return (m + 2) % 4
	}
	return m
}

// unsignedMode is a rounding mode applied to a magnitude.
type unsignedMode int

const (
	towardZero unsignedMode = iota
	towardInfinity
	halfZero
	halfInfinity
	halfEven
)

func (m RoundingMode) unsigned(negative bool) unsignedMode {
	switch m {
	case Floor:
		if negative {
			return towardInfinity
		}
		return towardZero
	case Ceil:
		if negative {
			return towardZero
		}
		return towardInfinity
	case HalfFloor:
		if negative {
			return halfInfinity
		}
		return halfZero
	case HalfCeil:
		if negative {
			return halfZero
		}
		return halfInfinity
	case Trunc:
		return towardZero
	case Expand:
		return towardInfinity
	case HalfTrunc:
		return halfZero
	case HalfExpand:
		return halfInfinity
	}
	return halfEven
}

// RoundsUp reports whether a magnitude q + num/den (0 <= num <= den, den > 0)
// resolves to q+1 rather than q. negative is the sign of the original value.
func (m RoundingMode) RoundsUp(negative bool, qEven bool, num, den *big.Int) bool {
	if num.Sign() == 0 {
		return false
	}
	if num.Cmp(den) >= 0 {
		return true
	}
	um := m.unsigned(negative)
	switch um {
	case towardZero:
		return false
	case towardInfinity:
		return true
	}
	twice := new(big.Int).Lsh(num, 1)
	switch c := twice.Cmp(den); {
	case c < 0:
		return false
	case c > 0:
		return true
	}
	switch um {
	case halfZero:
		return false
	case halfInfinity:
		return true
	}
	return !qEven
}

// RoundBig rounds x to a multiple of inc (inc > 0).
func RoundBig(x, inc *big.Int, mode RoundingMode) *big.Int {
	neg := x.Sign() < 0
	ax := new(big.Int).Abs(x)
	q, r := new(big.Int).QuoRem(ax, inc, new(big.Int))
	if mode.RoundsUp(neg, q.Bit(0) == 0, r, inc) {
		q.Add(q, big.NewInt(1))
	}
	q.Mul(q, inc)
	if neg {
		q.Neg(q)
	}
	return q
}

// RoundInt64 rounds x to a multiple of inc (inc > 0) when the result fits int64.
func RoundInt64(x, inc int64, mode RoundingMode) int64 {
	return RoundBig(big.NewInt(x), big.NewInt(inc), mode).Int64()
}
