package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// CSVProvider implements Provider for CSV files
type CSVProvider struct {
	format ColumnMapping
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{
		format: DefaultCSVFormat,
	}
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format ColumnMapping) *CSVProvider {
	return &CSVProvider{
		format: format,
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadBars loads historical bars from a CSV file. Rows that cannot be
// parsed or fail basic OHLC sanity checks are skipped with a warning.
func (p *CSVProvider) LoadBars(source string) ([]types.Bar, error) {
	file, err := os.Open(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewDataError(fmt.Sprintf("historical data file not found: %s", source))
		}
		return nil, errors.WrapDataError("opening data file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, errors.WrapDataError("reading CSV header", err)
	}

	var bars []types.Bar

	lineNum := 1 // header already consumed
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.WrapDataError(fmt.Sprintf("reading CSV at line %d", lineNum), err)
		}
		lineNum++

		if len(record) < p.format.MinColumns {
			log.Printf("⚠️ Insufficient columns at line %d (expected %d, got %d), skipping", lineNum, p.format.MinColumns, len(record))
			continue
		}

		timestamp, err := time.Parse(p.format.DateFormat, record[p.format.TimestampCol])
		if err != nil {
			log.Printf("⚠️ Invalid timestamp '%s' at line %d, skipping: %v", record[p.format.TimestampCol], lineNum, err)
			continue
		}

		open, err := strconv.ParseFloat(record[p.format.OpenCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid open price '%s' at line %d, skipping: %v", record[p.format.OpenCol], lineNum, err)
			continue
		}

		high, err := strconv.ParseFloat(record[p.format.HighCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid high price '%s' at line %d, skipping: %v", record[p.format.HighCol], lineNum, err)
			continue
		}

		low, err := strconv.ParseFloat(record[p.format.LowCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid low price '%s' at line %d, skipping: %v", record[p.format.LowCol], lineNum, err)
			continue
		}

		close, err := strconv.ParseFloat(record[p.format.CloseCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid close price '%s' at line %d, skipping: %v", record[p.format.CloseCol], lineNum, err)
			continue
		}

		volume, err := strconv.ParseFloat(record[p.format.VolumeCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid volume '%s' at line %d, skipping: %v", record[p.format.VolumeCol], lineNum, err)
			continue
		}

		if open <= 0 || high <= 0 || low <= 0 || close <= 0 {
			log.Printf("⚠️ Invalid price data (negative or zero) at line %d, skipping", lineNum)
			continue
		}

		if high < open || high < close || high < low {
			log.Printf("⚠️ High price is lower than other prices at line %d, skipping", lineNum)
			continue
		}

		if low > open || low > close {
			log.Printf("⚠️ Low price is higher than other prices at line %d, skipping", lineNum)
			continue
		}

		bars = append(bars, types.Bar{
			Timestamp: timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
	}

	if len(bars) == 0 {
		return nil, errors.NewDataError(fmt.Sprintf("no usable rows in %s", source))
	}

	return bars, nil
}

// ValidateBars validates the integrity of loaded bars
func (p *CSVProvider) ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return errors.NewDataError("no bars provided")
	}

	for i, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return errors.NewDataError(fmt.Sprintf("invalid price data at index %d: prices must be positive", i))
		}

		if b.High < b.Low {
			return errors.NewDataError(fmt.Sprintf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, b.High, b.Low))
		}

		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return errors.NewDataError(fmt.Sprintf("invalid timestamp sequence at index %d: timestamps must be strictly increasing", i))
		}
	}

	return nil
}
