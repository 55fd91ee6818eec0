package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaturatingAddInt32(t *testing.T) {
	cases := []struct {
		a, b, want int32
	}{
		{0, 0, 0},
		{3, -1, 2},
		{math.MaxInt32, 1, math.MaxInt32},
		{math.MaxInt32 - 1, math.MaxInt32, math.MaxInt32},
		{math.MinInt32, -1, math.MinInt32},
		{math.MinInt32 + 5, math.MinInt32, math.MinInt32},
		{math.MaxInt32, math.MinInt32, -1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, saturatingAddInt32(tc.a, tc.b), "%d + %d", tc.a, tc.b)
	}
}
