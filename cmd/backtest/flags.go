package main

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

// BacktestFlags holds all command line flags for the backtest command
type BacktestFlags struct {
	// Configuration
	EnvFile    *string
	Symbol     *string
	HigherTF   *string
	LowerTF    *string
	StartDate  *string
	EndDate    *string

	// Data source
	LowerData  *string
	HigherData *string
	Fetch      *bool

	// Strategy parameters
	FibTolerance     *float64
	PatternTolerance *float64
	StopMultiplier   *float64
	TargetMultiplier *float64
	MaxHoldingBars   *int
	VolumeMAPeriod   *int
	RVOLThreshold    *float64

	// Output
	OutputFormat *string
	OutputFile   *string
	SaveResult   *bool
	ShowTrades   *bool

	ShowVersion *bool
}

// NewBacktestFlags creates and registers all command line flags
func NewBacktestFlags() *BacktestFlags {
	return &BacktestFlags{
		EnvFile:   flag.String("env", ".env", "Environment file to load"),
		Symbol:    flag.String("symbol", "BTCUSDT", "Trading pair symbol"),
		HigherTF:  flag.String("higher-tf", "4h", "Higher timeframe for price structure"),
		LowerTF:   flag.String("lower-tf", "1h", "Lower timeframe for execution bars"),
		StartDate: flag.String("start", "", "Start date (YYYY-MM-DD, optional for CSV data)"),
		EndDate:   flag.String("end", "", "End date (YYYY-MM-DD, optional for CSV data)"),

		LowerData:  flag.String("lower-data", "", "CSV file with lower timeframe bars"),
		HigherData: flag.String("higher-data", "", "CSV file with higher timeframe bars"),
		Fetch:      flag.Bool("fetch", false, "Fetch bars from Bybit instead of CSV files"),

		FibTolerance:     flag.Float64("fib-tolerance", 0.003, "Relative tolerance for collapsing nearby levels"),
		PatternTolerance: flag.Float64("pattern-tolerance", 0.05, "Tolerance for harmonic ratio matching"),
		StopMultiplier:   flag.Float64("stop-mult", 1.5, "Stop distance in volatility units"),
		TargetMultiplier: flag.Float64("target-mult", 3.0, "Target distance in volatility units"),
		MaxHoldingBars:   flag.Int("max-holding", 48, "Maximum bars to hold a position"),
		VolumeMAPeriod:   flag.Int("volume-period", 20, "Volume moving average period"),
		RVOLThreshold:    flag.Float64("rvol", 1.0, "Minimum relative volume to confirm a signal"),

		OutputFormat: flag.String("output", "console", "Output format: console, json, excel"),
		OutputFile:   flag.String("output-file", "", "Output file path (defaults under results/)"),
		SaveResult:   flag.Bool("save", false, "Persist the result to the results store"),
		ShowTrades:   flag.Bool("trades", false, "Print the individual trades"),

		ShowVersion: flag.Bool("version", false, "Show version and exit"),
	}
}

// ValidateBacktestFlags checks flag combinations before running
func ValidateBacktestFlags(flags *BacktestFlags) error {
	if *flags.ShowVersion {
		return nil
	}
	if strings.TrimSpace(*flags.Symbol) == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if !*flags.Fetch && (*flags.LowerData == "" || *flags.HigherData == "") {
		return fmt.Errorf("provide -lower-data and -higher-data CSV files, or use -fetch")
	}
	if *flags.Fetch && (*flags.StartDate == "" || *flags.EndDate == "") {
		return fmt.Errorf("-fetch requires -start and -end dates")
	}
	switch *flags.OutputFormat {
	case "console", "json", "excel":
	default:
		return fmt.Errorf("unknown output format %q", *flags.OutputFormat)
	}
	return nil
}

// parseDate parses YYYY-MM-DD dates, returning the zero time for "".
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
