package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// SortByTimestamp returns a copy of bars sorted chronologically.
func SortByTimestamp(bars []types.Bar) []types.Bar {
	if len(bars) <= 1 {
		return bars
	}

	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates removes bars with repeated timestamps, keeping the
// first occurrence.
func RemoveDuplicates(bars []types.Bar) []types.Bar {
	if len(bars) <= 1 {
		return bars
	}

	var filtered []types.Bar
	seen := make(map[int64]bool)

	for _, b := range bars {
		ts := b.Timestamp.UnixNano()
		if !seen[ts] {
			seen[ts] = true
			filtered = append(filtered, b)
		}
	}

	return filtered
}

// SliceRange returns the bars whose timestamps fall in the half-open
// range [start, end). Bars must already be sorted.
func SliceRange(bars []types.Bar, start, end time.Time) []types.Bar {
	lo := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Timestamp.Before(end)
	})
	return bars[lo:hi]
}

// ValidateTimeSequence ensures bars are strictly chronological with no
// duplicate timestamps.
func ValidateTimeSequence(bars []types.Bar) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Before(bars[i-1].Timestamp) {
			return errors.NewDataError(fmt.Sprintf("bars not in chronological order at index %d: %s comes after %s",
				i, bars[i].Timestamp.Format(time.RFC3339), bars[i-1].Timestamp.Format(time.RFC3339)))
		}
		if bars[i].Timestamp.Equal(bars[i-1].Timestamp) {
			return errors.NewDataError(fmt.Sprintf("duplicate timestamp at index %d: %s",
				i, bars[i].Timestamp.Format(time.RFC3339)))
		}
	}
	return nil
}

// Prepare sorts, deduplicates and validates raw bars in one pass, the
// normalization every loader output goes through before a backtest.
func Prepare(bars []types.Bar) ([]types.Bar, error) {
	out := RemoveDuplicates(SortByTimestamp(bars))
	if err := ValidateTimeSequence(out); err != nil {
		return nil, err
	}
	return out, nil
}
