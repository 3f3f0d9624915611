package data

import (
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// Provider interface for loading historical bars from various sources
type Provider interface {
	// LoadBars loads historical bars from the specified source
	LoadBars(source string) ([]types.Bar, error)

	// ValidateBars validates the integrity of the loaded bars
	ValidateBars(bars []types.Bar) error

	// GetName returns the name of the data provider
	GetName() string
}

// Cache interface for caching loaded bars
type Cache interface {
	// Get retrieves bars from cache if available
	Get(key string) ([]types.Bar, bool)

	// Set stores bars in cache
	Set(key string, bars []types.Bar)

	// Clear removes all cached entries
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// ColumnMapping defines the column positions for different CSV formats
type ColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// Predefined CSV formats
var (
	DefaultCSVFormat = ColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
		DateFormat:   "2006-01-02 15:04:05",
	}

	RFC3339CSVFormat = ColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
		DateFormat:   "2006-01-02T15:04:05Z07:00",
	}
)
