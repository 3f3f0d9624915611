package reporting

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultOutputDir returns the conventional results directory for a
// symbol/timeframe pair.
func DefaultOutputDir(symbol, timeframe string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	if s == "" {
		s = "UNKNOWN"
	}
	if tf == "" {
		tf = "unknown"
	}
	return filepath.Join("results", fmt.Sprintf("%s_%s", s, tf))
}

// DefaultWorkbookPath returns the conventional trades workbook path.
func DefaultWorkbookPath(symbol, timeframe string) string {
	return filepath.Join(DefaultOutputDir(symbol, timeframe), "trades.xlsx")
}

// DefaultResultPath returns the conventional result JSON path.
func DefaultResultPath(symbol, timeframe string) string {
	return filepath.Join(DefaultOutputDir(symbol, timeframe), "result.json")
}
