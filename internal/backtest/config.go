package backtest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
)

// supportedTimeframes maps a timeframe label to its bar duration.
var supportedTimeframes = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// TimeframeDuration returns the bar duration for a timeframe label.
func TimeframeDuration(tf string) (time.Duration, bool) {
	d, ok := supportedTimeframes[tf]
	return d, ok
}

// Config holds all parameters of one backtest run.
type Config struct {
	Symbol           string    `json:"symbol"`
	HigherTimeframe  string    `json:"higher_timeframe"`
	LowerTimeframe   string    `json:"lower_timeframe"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	FibTolerance     float64   `json:"fib_tolerance"`
	PatternTolerance float64   `json:"pattern_tolerance"`
	StopMultiplier   float64   `json:"stop_multiplier"`
	TargetMultiplier float64   `json:"target_multiplier"`
	MaxHoldingBars   int       `json:"max_holding_bars"`
	VolumeMAPeriod   int       `json:"volume_ma_period"`
	RVOLThreshold    float64   `json:"rvol_threshold"`
}

// DefaultConfig returns a config with sensible defaults for symbol:
// 4h structure over 1h execution bars.
func DefaultConfig(symbol string) Config {
	return Config{
		Symbol:           symbol,
		HigherTimeframe:  "4h",
		LowerTimeframe:   "1h",
		FibTolerance:     0.003,
		PatternTolerance: 0.05,
		StopMultiplier:   1.5,
		TargetMultiplier: 3.0,
		MaxHoldingBars:   48,
		VolumeMAPeriod:   20,
		RVOLThreshold:    1.0,
	}
}

// Validate checks the config before a run. All violations are
// configuration errors and abort the run.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return errors.NewConfigError("symbol", "must not be empty")
	}
	if _, ok := supportedTimeframes[c.HigherTimeframe]; !ok {
		return errors.NewConfigError("higher_timeframe", fmt.Sprintf("unknown timeframe %q", c.HigherTimeframe))
	}
	if _, ok := supportedTimeframes[c.LowerTimeframe]; !ok {
		return errors.NewConfigError("lower_timeframe", fmt.Sprintf("unknown timeframe %q", c.LowerTimeframe))
	}
	if supportedTimeframes[c.HigherTimeframe] < supportedTimeframes[c.LowerTimeframe] {
		return errors.NewConfigError("higher_timeframe", "must be at least as long as the lower timeframe")
	}
	if !c.StartDate.IsZero() && !c.EndDate.After(c.StartDate) {
		return errors.NewConfigError("end_date", "must be after start_date")
	}
	if c.FibTolerance < 0 {
		return errors.NewConfigError("fib_tolerance", "must not be negative")
	}
	if c.PatternTolerance < 0 {
		return errors.NewConfigError("pattern_tolerance", "must not be negative")
	}
	if c.StopMultiplier <= 0 {
		return errors.NewConfigError("stop_multiplier", "must be positive")
	}
	if c.TargetMultiplier <= 0 {
		return errors.NewConfigError("target_multiplier", "must be positive")
	}
	if c.MaxHoldingBars < 1 {
		return errors.NewConfigError("max_holding_bars", "must be at least 1")
	}
	if c.VolumeMAPeriod < 1 {
		return errors.NewConfigError("volume_ma_period", "must be at least 1")
	}
	if c.RVOLThreshold < 0 {
		return errors.NewConfigError("rvol_threshold", "must not be negative")
	}
	return nil
}

// WithParameter returns a copy of the config with one tunable numeric
// parameter replaced. Used by the optimizer to expand grid points.
func (c Config) WithParameter(name string, value float64) (Config, error) {
	switch name {
	case "fib_tolerance":
		c.FibTolerance = value
	case "pattern_tolerance":
		c.PatternTolerance = value
	case "stop_multiplier":
		c.StopMultiplier = value
	case "target_multiplier":
		c.TargetMultiplier = value
	case "max_holding_bars":
		c.MaxHoldingBars = int(value)
	case "volume_ma_period":
		c.VolumeMAPeriod = int(value)
	case "rvol_threshold":
		c.RVOLThreshold = value
	default:
		return c, errors.NewConfigError(name, "unknown tunable parameter")
	}
	return c, nil
}

// ToMap flattens the config into JSON-compatible primitives.
func (c Config) ToMap() (map[string]interface{}, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfigFromMap rebuilds a config from its ToMap form.
func ConfigFromMap(m map[string]interface{}) (Config, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
