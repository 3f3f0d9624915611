package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

var filterStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func barAt(hour int, close float64) types.Bar {
	return types.Bar{
		Timestamp: filterStart.Add(time.Duration(hour) * time.Hour),
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    100,
	}
}

func TestSortByTimestamp(t *testing.T) {
	in := []types.Bar{barAt(2, 102), barAt(0, 100), barAt(1, 101)}

	out := SortByTimestamp(in)

	require.Len(t, out, 3)
	assert.Equal(t, 100.0, out[0].Close)
	assert.Equal(t, 101.0, out[1].Close)
	assert.Equal(t, 102.0, out[2].Close)
	// Input untouched.
	assert.Equal(t, 102.0, in[0].Close)
}

func TestRemoveDuplicates_KeepsFirst(t *testing.T) {
	dup := barAt(1, 999)
	out := RemoveDuplicates([]types.Bar{barAt(0, 100), barAt(1, 101), dup, barAt(2, 102)})

	require.Len(t, out, 3)
	assert.Equal(t, 101.0, out[1].Close)
}

func TestSliceRange_HalfOpen(t *testing.T) {
	bars := []types.Bar{barAt(0, 100), barAt(1, 101), barAt(2, 102), barAt(3, 103)}

	out := SliceRange(bars, filterStart.Add(time.Hour), filterStart.Add(3*time.Hour))

	require.Len(t, out, 2)
	assert.Equal(t, 101.0, out[0].Close)
	assert.Equal(t, 102.0, out[1].Close)
}

func TestSliceRange_Empty(t *testing.T) {
	bars := []types.Bar{barAt(0, 100), barAt(1, 101)}

	assert.Empty(t, SliceRange(bars, filterStart.Add(10*time.Hour), filterStart.Add(20*time.Hour)))
	assert.Empty(t, SliceRange(nil, filterStart, filterStart.Add(time.Hour)))
}

func TestValidateTimeSequence(t *testing.T) {
	good := []types.Bar{barAt(0, 100), barAt(1, 101)}
	assert.NoError(t, ValidateTimeSequence(good))

	outOfOrder := []types.Bar{barAt(1, 101), barAt(0, 100)}
	err := ValidateTimeSequence(outOfOrder)
	require.Error(t, err)
	assert.True(t, errors.IsDataError(err))

	duplicated := []types.Bar{barAt(0, 100), barAt(0, 100)}
	err = ValidateTimeSequence(duplicated)
	require.Error(t, err)
	assert.True(t, errors.IsDataError(err))
}

func TestPrepare_NormalizesRawBars(t *testing.T) {
	raw := []types.Bar{barAt(2, 102), barAt(0, 100), barAt(2, 999), barAt(1, 101)}

	out, err := Prepare(raw)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.NoError(t, ValidateTimeSequence(out))
	assert.Equal(t, 102.0, out[2].Close)
}
