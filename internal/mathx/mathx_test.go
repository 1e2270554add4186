package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{-8, 2, -4, 0},
		{0, 5, 0, 0},
		{-1, 86400, -1, 86399},
	}
	for _, c := range cases {
		q, m := DivModFloor(c.a, c.b)
		assert.Equal(t, c.q, q, "floor div %d/%d", c.a, c.b)
		assert.Equal(t, c.m, m, "floor mod %d/%d", c.a, c.b)
	}
}

func TestDivModTrunc(t *testing.T) {
	q, r := DivModTrunc(-15, 7)
	assert.Equal(t, -2, q)
	assert.Equal(t, -1, r)
}

func TestSignAbsClamp(t *testing.T) {
	assert.Equal(t, -1, Sign(-3))
	assert.Equal(t, 0, Sign(0.0))
	assert.Equal(t, 1, Sign(int8(9)))
	assert.Equal(t, int64(4), Abs(int64(-4)))
	assert.Equal(t, 12, Clamp(40, 1, 12))
	assert.True(t, InRange(5, 1, 12))
}

func TestOverflowChecks(t *testing.T) {
	assert.True(t, AddOverflows(math.MaxInt64, 1))
	assert.False(t, AddOverflows(math.MaxInt64, -1))
	assert.True(t, MulOverflows(math.MaxInt64/2+1, 2))
	assert.True(t, MulOverflows(math.MinInt64, -1))
	assert.False(t, MulOverflows(1<<31, 1<<31))
}
