package harmonic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

func TestValidatePattern_GartleyBuy(t *testing.T) {
	v := NewValidator(0)

	p, ok := v.ValidatePattern(100, 50, 80.9, 61.8, 60.7)
	require.True(t, ok)
	assert.Equal(t, PatternGartley, p.Type)
	assert.Equal(t, types.DirectionBuy, p.Direction)
	assert.InDelta(t, 60.7, p.PRD, 1e-9)
}

func TestValidatePattern_GartleySell(t *testing.T) {
	v := NewValidator(0)

	p, ok := v.ValidatePattern(50, 100, 69.1, 88.2, 89.3)
	require.True(t, ok)
	assert.Equal(t, PatternGartley, p.Type)
	assert.Equal(t, types.DirectionSell, p.Direction)
	assert.InDelta(t, 89.3, p.PRD, 1e-9)
}

func TestValidatePattern_ButterflyBuy(t *testing.T) {
	v := NewValidator(0)

	p, ok := v.ValidatePattern(100, 50, 89.3, 65.0, 36.4)
	require.True(t, ok)
	assert.Equal(t, PatternButterfly, p.Type)
	assert.Equal(t, types.DirectionBuy, p.Direction)
}

func TestValidatePattern_BatAndCrab(t *testing.T) {
	v := NewValidator(0)

	// AB/XA = 0.45, AD/XA = 0.886
	p, ok := v.ValidatePattern(100, 50, 72.5, 61.25, 55.7)
	require.True(t, ok)
	assert.Equal(t, PatternBat, p.Type)

	// Same AB leg but a 1.618 completion falls through Bat to Crab.
	p, ok = v.ValidatePattern(100, 50, 72.5, 61.25, 19.1)
	require.True(t, ok)
	assert.Equal(t, PatternCrab, p.Type)
}

func TestValidatePattern_DegenerateXA(t *testing.T) {
	v := NewValidator(0.1)

	_, ok := v.ValidatePattern(75, 75, 80, 70, 76)
	assert.False(t, ok)
}

func TestValidatePattern_NoMatch(t *testing.T) {
	v := NewValidator(0)

	_, ok := v.ValidatePattern(100, 50, 99, 51, 98)
	assert.False(t, ok)
}

func TestValidatePattern_Deterministic(t *testing.T) {
	v := NewValidator(0.05)

	first, ok1 := v.ValidatePattern(100, 50, 80.9, 61.8, 60.7)
	second, ok2 := v.ValidatePattern(100, 50, 80.9, 61.8, 60.7)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestValidatePattern_ToleranceWidensBands(t *testing.T) {
	// AB/XA = 0.63 misses the 0.618 Gartley point exactly but fits
	// with a 0.02 tolerance.
	exact := NewValidator(0)
	loose := NewValidator(0.02)

	_, ok := exact.ValidatePattern(100, 50, 81.5, 61.8, 60.7)
	assert.False(t, ok)

	p, ok := loose.ValidatePattern(100, 50, 81.5, 61.8, 60.7)
	require.True(t, ok)
	assert.Equal(t, PatternGartley, p.Type)
}

func TestCalculatePRD(t *testing.T) {
	v := NewValidator(0)

	tests := []struct {
		name    string
		x, a    float64
		pattern PatternType
		want    float64
		wantDir types.Direction
	}{
		{"gartley buy", 100, 50, PatternGartley, 60.7, types.DirectionBuy},
		{"gartley sell", 50, 100, PatternGartley, 89.3, types.DirectionSell},
		{"butterfly buy", 100, 50, PatternButterfly, 36.4, types.DirectionBuy},
		{"bat buy", 100, 50, PatternBat, 55.7, types.DirectionBuy},
		{"crab buy", 100, 50, PatternCrab, 19.1, types.DirectionBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, dir, ok := v.CalculatePRD(tt.x, tt.a, 0, 0, tt.pattern)
			require.True(t, ok)
			assert.InDelta(t, tt.want, price, 1e-9)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestCalculatePRD_UnknownPattern(t *testing.T) {
	v := NewValidator(0)

	_, _, ok := v.CalculatePRD(100, 50, 0, 0, PatternType("SHARK"))
	assert.False(t, ok)
}
