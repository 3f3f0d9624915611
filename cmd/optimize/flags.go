package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/pkg/optimization"
)

// OptimizeFlags holds all command line flags for the optimize command
type OptimizeFlags struct {
	// Configuration
	EnvFile   *string
	Symbol    *string
	HigherTF  *string
	LowerTF   *string
	StartDate *string
	EndDate   *string

	// Data source
	LowerData  *string
	HigherData *string
	Fetch      *bool

	// Walk-forward settings
	TrainDays *int
	TestDays  *int
	StepDays  *int
	Objective *string
	Workers   *int

	// Parameter grid, e.g. "stop_multiplier:1:3:0.5,rvol_threshold:0.5:1.5:0.25"
	Grid *string

	// Output
	OutputFile *string
	SaveResult *bool

	ShowVersion *bool
}

// NewOptimizeFlags creates and registers all command line flags
func NewOptimizeFlags() *OptimizeFlags {
	return &OptimizeFlags{
		EnvFile:   flag.String("env", ".env", "Environment file to load"),
		Symbol:    flag.String("symbol", "BTCUSDT", "Trading pair symbol"),
		HigherTF:  flag.String("higher-tf", "4h", "Higher timeframe for price structure"),
		LowerTF:   flag.String("lower-tf", "1h", "Lower timeframe for execution bars"),
		StartDate: flag.String("start", "", "Start date (YYYY-MM-DD)"),
		EndDate:   flag.String("end", "", "End date (YYYY-MM-DD)"),

		LowerData:  flag.String("lower-data", "", "CSV file with lower timeframe bars"),
		HigherData: flag.String("higher-data", "", "CSV file with higher timeframe bars"),
		Fetch:      flag.Bool("fetch", false, "Fetch bars from Bybit instead of CSV files"),

		TrainDays: flag.Int("train-days", 60, "Training window length in days"),
		TestDays:  flag.Int("test-days", 20, "Test window length in days"),
		StepDays:  flag.Int("step-days", 20, "Days to advance between windows"),
		Objective: flag.String("objective", "total_pnl", "Metric to maximize on the train range"),
		Workers:   flag.Int("workers", 0, "Worker pool size (0 = number of CPUs)"),

		Grid: flag.String("grid", "stop_multiplier:1:3:0.5",
			"Parameter grid as name:min:max:step, comma separated"),

		OutputFile: flag.String("output-file", "", "Write the full result JSON to this path"),
		SaveResult: flag.Bool("save", false, "Save the run into the results store"),

		ShowVersion: flag.Bool("version", false, "Show version and exit"),
	}
}

// ValidateOptimizeFlags checks flag combinations before running
func ValidateOptimizeFlags(flags *OptimizeFlags) error {
	if *flags.ShowVersion {
		return nil
	}
	if strings.TrimSpace(*flags.Symbol) == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if *flags.StartDate == "" || *flags.EndDate == "" {
		return fmt.Errorf("walk-forward runs require -start and -end dates")
	}
	if !*flags.Fetch && (*flags.LowerData == "" || *flags.HigherData == "") {
		return fmt.Errorf("provide -lower-data and -higher-data CSV files, or use -fetch")
	}
	if *flags.TrainDays <= 0 || *flags.TestDays <= 0 || *flags.StepDays <= 0 {
		return fmt.Errorf("train, test and step days must all be positive")
	}
	if strings.TrimSpace(*flags.Grid) == "" {
		return fmt.Errorf("parameter grid must not be empty")
	}
	return nil
}

// parseGrid parses "name:min:max:step" specs into grid parameters.
func parseGrid(spec string) ([]optimization.Parameter, error) {
	var out []optimization.Parameter
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 4 {
			return nil, fmt.Errorf("invalid grid entry %q (want name:min:max:step)", part)
		}
		min, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min in %q: %w", part, err)
		}
		max, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max in %q: %w", part, err)
		}
		step, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid step in %q: %w", part, err)
		}
		out = append(out, optimization.Parameter{
			Name: fields[0],
			Min:  min,
			Max:  max,
			Step: step,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parameter grid must not be empty")
	}
	return out, nil
}

// parseDate parses YYYY-MM-DD dates, returning the zero time for "".
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
