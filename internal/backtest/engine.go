package backtest

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
	"github.com/ducminhle1904/harmonic-backtest/internal/fibonacci"
	"github.com/ducminhle1904/harmonic-backtest/internal/harmonic"
	"github.com/ducminhle1904/harmonic-backtest/internal/signal"
	"github.com/ducminhle1904/harmonic-backtest/internal/volume"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// pivotLookback is the swing detection window on the higher timeframe.
const pivotLookback = 2

// Engine drives one backtest: it rebuilds the higher-timeframe price
// structure as bars arrive, detects signals at the active levels on
// the lower timeframe, confirms them with volume and feeds the
// simulator. Runs are deterministic: the same inputs always produce
// the same result.
type Engine struct {
	cfg       Config
	validator *harmonic.Validator
	calc      *Calculator
}

// NewEngine validates the config and creates an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		validator: harmonic.NewValidator(cfg.PatternTolerance),
		calc:      NewCalculator(),
	}, nil
}

// Run executes the backtest over the lower-timeframe execution bars,
// using the higher-timeframe bars for structure. Both series must be
// strictly time-ordered.
func (e *Engine) Run(lower, higher []types.Bar) (*Result, error) {
	if err := checkMonotonic(lower, "lower"); err != nil {
		return nil, err
	}
	if err := checkMonotonic(higher, "higher"); err != nil {
		return nil, err
	}
	if len(lower) < e.cfg.VolumeMAPeriod {
		return nil, errors.NewDataError(fmt.Sprintf(
			"need at least %d lower timeframe bars, got %d", e.cfg.VolumeMAPeriod, len(lower)))
	}

	sim := NewSimulator(e.cfg.StopMultiplier, e.cfg.TargetMultiplier, e.cfg.MaxHoldingBars)
	volumes := make([]float64, 0, len(lower))

	// Bars are stamped at interval start, so a structure bar only
	// becomes usable once its full interval has elapsed. Reading it
	// earlier would leak its final high and low into the past.
	htfDur, _ := TimeframeDuration(e.cfg.HigherTimeframe)

	var levels []float64
	htfSeen := 0

	for _, bar := range lower {
		// Rebuild structure whenever new higher-timeframe bars have closed.
		next := htfSeen
		for next < len(higher) && !higher[next].Timestamp.Add(htfDur).After(bar.Timestamp) {
			next++
		}
		if next != htfSeen {
			htfSeen = next
			levels = e.buildLevels(higher[:htfSeen])
		}

		volumes = append(volumes, bar.Volume)

		sig := e.strongestSignal(bar, levels)
		if sig != nil && !e.volumeConfirmed(volumes) {
			sig = nil
		}

		sim.OnBar(bar, sig)
	}

	sim.Finish(lower[len(lower)-1])

	trades := sim.Trades()
	equity := sim.EquityCurve()
	return &Result{
		Config:      e.cfg,
		Metrics:     e.calc.Calculate(trades, equity),
		Trades:      trades,
		EquityCurve: equity,
	}, nil
}

// buildLevels derives the active price levels from the higher
// timeframe: retracements of the latest completed swing, plus the
// pattern completion level when the last five pivots validate as a
// harmonic pattern. Near-duplicate levels are collapsed, keeping the
// earlier one.
func (e *Engine) buildLevels(higher []types.Bar) []float64 {
	pivots := harmonic.FindPivots(higher, pivotLookback)
	if pivots == nil {
		return nil
	}

	var out []float64

	if high, low, dir, ok := harmonic.LastSwing(pivots); ok && high > low {
		prices := fibonacci.Retracement(high, low, dir)
		for _, lvl := range fibonacci.RetracementLevels {
			out = appendLevel(out, prices[lvl], e.cfg.FibTolerance)
		}
	}

	if x, a, b, c, d, ok := harmonic.LastXABCD(pivots); ok {
		if p, valid := e.validator.ValidatePattern(x, a, b, c, d); valid {
			out = appendLevel(out, p.PRD, e.cfg.FibTolerance)
		}
	}

	return out
}

// appendLevel adds price unless an existing level lies within the
// relative tolerance of it.
func appendLevel(levels []float64, price, tolerance float64) []float64 {
	for _, l := range levels {
		if math.Abs(l-price) <= tolerance*math.Abs(price) {
			return levels
		}
	}
	return append(levels, price)
}

// strongestSignal evaluates the bar against every level and keeps the
// strongest hit. Ties resolve to the earliest level so runs stay
// deterministic.
func (e *Engine) strongestSignal(bar types.Bar, levels []float64) *signal.Signal {
	var best *signal.Signal
	for _, level := range levels {
		s := signal.Detect(bar, level)
		if s == nil {
			continue
		}
		if best == nil || s.Strength > best.Strength {
			best = s
		}
	}
	return best
}

// volumeConfirmed accepts a signal only when relative volume clears
// the configured threshold.
func (e *Engine) volumeConfirmed(volumes []float64) bool {
	a := volume.Analyze(volumes, e.cfg.VolumeMAPeriod)
	return a != nil && a.RelativeVolume >= e.cfg.RVOLThreshold
}

// checkMonotonic rejects bar series whose timestamps are not strictly
// increasing.
func checkMonotonic(bars []types.Bar, name string) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return errors.NewDataError(fmt.Sprintf(
				"%s timeframe bars not strictly time-ordered at index %d", name, i))
		}
	}
	return nil
}
