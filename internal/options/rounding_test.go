package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tempus/internal/apperr"
)

func TestRoundInt64Modes(t *testing.T) {
	// value, increment, then expected results in enum order
	cases := []struct {
		x    int64
		want [9]int64
	}{
		{15, [9]int64{10, 10, 20, 20, 10, 10, 20, 20, 20}},
		{25, [9]int64{20, 20, 30, 30, 20, 20, 30, 30, 20}},
		{-15, [9]int64{-20, -20, -10, -10, -10, -10, -20, -20, -20}},
		{12, [9]int64{10, 10, 20, 10, 10, 10, 20, 10, 10}},
		{-18, [9]int64{-20, -20, -10, -20, -10, -20, -20, -20, -20}},
		{30, [9]int64{30, 30, 30, 30, 30, 30, 30, 30, 30}},
	}
	for _, c := range cases {
		for m := Floor; m <= HalfEven; m++ {
			assert.Equal(t, c.want[m], RoundInt64(c.x, 10, m), "%d by %s", c.x, m)
		}
	}
}

func TestInvert(t *testing.T) {
	assert.Equal(t, Ceil, Floor.Invert())
	assert.Equal(t, Floor, Ceil.Invert())
	assert.Equal(t, HalfCeil, HalfFloor.Invert())
	assert.Equal(t, HalfFloor, HalfCeil.Invert())
	assert.Equal(t, Trunc, Trunc.Invert())
	assert.Equal(t, HalfEven, HalfEven.Invert())
}

func TestParseRoundingMode(t *testing.T) {
	m, err := ParseRoundingMode("halfExpand")
	require.NoError(t, err)
	assert.Equal(t, HalfExpand, m)
	for _, name := range []string{"nearest", "halfexpand", "HalfExpand"} {
		_, err = ParseRoundingMode(name)
		assert.ErrorIs(t, err, apperr.ErrInvalidOption, name)
	}
}
