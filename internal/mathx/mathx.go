// Package mathx holds small generic integer helpers shared by the date math packages.
package mathx

import "golang.org/x/exp/constraints"

// FloorDiv divides a by b rounding toward negative infinity. b must be positive.
func FloorDiv[T constraints.Signed](a, b T) T {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}

// FloorMod returns the non-negative remainder of a divided by b. b must be positive.
func FloorMod[T constraints.Signed](a, b T) T {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// DivModFloor returns FloorDiv and FloorMod together.
func DivModFloor[T constraints.Signed](a, b T) (T, T) {
	return FloorDiv(a, b), FloorMod(a, b)
}

// DivModTrunc returns the quotient and remainder truncated toward zero.
func DivModTrunc[T constraints.Signed](a, b T) (T, T) {
	return a / b, a % b
}

// Sign returns -1, 0 or 1.
func Sign[T constraints.Signed | constraints.Float](v T) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Abs returns the absolute value of v.
func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InRange reports whether lo <= v <= hi.
func InRange[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

// MulOverflows reports whether a*b overflows int64.
func MulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	c := a * b
	return c/b != a || (a == -1 && b == minInt64) || (b == -1 && a == minInt64)
}

// AddOverflows reports whether a+b overflows int64.
func AddOverflows(a, b int64) bool {
	c := a + b
	return (c > a) != (b > 0)
}

const minInt64 = -1 << 63
