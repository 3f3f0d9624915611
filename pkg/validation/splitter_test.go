package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
)

func TestWindows_RollingFolds(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * 24 * time.Hour)

	windows, err := Windows(start, end, 4*24*time.Hour, 2*24*time.Hour, 2*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	for i, w := range windows {
		assert.Equal(t, i, w.Index)
		assert.Equal(t, start.Add(time.Duration(i)*2*24*time.Hour), w.TrainStart)
		assert.Equal(t, w.TrainStart.Add(4*24*time.Hour), w.TrainEnd)
		assert.Equal(t, w.TrainEnd, w.TestStart)
		assert.Equal(t, w.TestStart.Add(2*24*time.Hour), w.TestEnd)
		assert.False(t, w.TestEnd.After(end))
	}
}

func TestWindows_SingleFoldExactFit(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)

	windows, err := Windows(start, end, 4*time.Hour, 2*time.Hour, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, end, windows[0].TestEnd)
}

func TestWindows_Rejections(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name                    string
		s, e                    time.Time
		train, test, step       time.Duration
	}{
		{"end before start", end, start, time.Hour, time.Hour, time.Hour},
		{"zero train", start, end, 0, time.Hour, time.Hour},
		{"zero test", start, end, time.Hour, 0, time.Hour},
		{"zero step", start, end, time.Hour, time.Hour, 0},
		{"window larger than range", start, end, 20 * time.Hour, 8 * time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Windows(tt.s, tt.e, tt.train, tt.test, tt.step)
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
		})
	}
}
