package harmonic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// barsFromCloses builds a series where each bar's high/low track the
// close, giving full control over pivot placement.
func barsFromCloses(closes []float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestFindPivots_Alternates(t *testing.T) {
	// One clean V: rally to 110, drop to 90, recover.
	closes := []float64{100, 104, 110, 104, 96, 90, 96, 102}
	pivots := FindPivots(barsFromCloses(closes), 2)

	require.Len(t, pivots, 2)
	assert.True(t, pivots[0].High)
	assert.Equal(t, 111.0, pivots[0].Price)
	assert.False(t, pivots[1].High)
	assert.Equal(t, 89.0, pivots[1].Price)
	for i := 1; i < len(pivots); i++ {
		assert.NotEqual(t, pivots[i-1].High, pivots[i].High, "pivots must alternate")
		assert.Greater(t, pivots[i].Index, pivots[i-1].Index)
	}
}

func TestFindPivots_InsufficientBars(t *testing.T) {
	assert.Nil(t, FindPivots(barsFromCloses([]float64{1, 2, 3}), 5))
	assert.Nil(t, FindPivots(nil, 2))
}

func TestLastSwing(t *testing.T) {
	closes := []float64{100, 104, 110, 104, 96, 90, 96, 102}
	pivots := FindPivots(barsFromCloses(closes), 2)

	high, low, dir, ok := LastSwing(pivots)
	require.True(t, ok)
	assert.Equal(t, 111.0, high)
	assert.Equal(t, 89.0, low)
	// Downswing ending on a low sets up sell retracements.
	assert.Equal(t, types.DirectionSell, dir)

	_, _, _, ok = LastSwing(pivots[:1])
	assert.False(t, ok)
}

func TestLastXABCD(t *testing.T) {
	pivots := []Pivot{
		{Index: 2, Price: 100, High: true},
		{Index: 5, Price: 50, High: false},
		{Index: 9, Price: 80.9, High: true},
		{Index: 12, Price: 61.8, High: false},
		{Index: 15, Price: 60.7, High: true},
	}

	x, a, b, c, d, ok := LastXABCD(pivots)
	require.True(t, ok)
	assert.Equal(t, []float64{100, 50, 80.9, 61.8, 60.7}, []float64{x, a, b, c, d})

	_, _, _, _, _, ok = LastXABCD(pivots[:4])
	assert.False(t, ok)
}
