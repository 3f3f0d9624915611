package optimization

import (
	"context"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
	"github.com/ducminhle1904/harmonic-backtest/pkg/data"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
	"github.com/ducminhle1904/harmonic-backtest/pkg/validation"
)

// objectives maps a metric name to its score extractor. Scores are
// maximized, so drawdown enters negated.
var objectives = map[string]func(backtest.Metrics) float64{
	"total_pnl":     func(m backtest.Metrics) float64 { return m.TotalPnL },
	"win_rate":      func(m backtest.Metrics) float64 { return m.WinRate },
	"profit_factor": func(m backtest.Metrics) float64 { return m.ProfitFactor },
	"sharpe_ratio":  func(m backtest.Metrics) float64 { return m.SharpeRatio },
	"expectancy":    func(m backtest.Metrics) float64 { return m.Expectancy },
	"max_drawdown":  func(m backtest.Metrics) float64 { return -m.MaxDrawdown },
}

// Config drives one walk-forward optimization.
type Config struct {
	Backtest      backtest.Config `json:"backtest"`
	Parameters    []Parameter     `json:"parameters"`
	TrainDuration time.Duration   `json:"train_duration"`
	TestDuration  time.Duration   `json:"test_duration"`
	StepDuration  time.Duration   `json:"step_duration"`
	Objective     string          `json:"objective"`
	Workers       int             `json:"workers"`
}

// Validate checks everything that can be checked before touching data.
func (c Config) Validate() error {
	if err := c.Backtest.Validate(); err != nil {
		return err
	}
	if c.Backtest.StartDate.IsZero() || c.Backtest.EndDate.IsZero() {
		return errors.NewConfigError("start_date", "walk-forward runs need an explicit date range")
	}
	if _, ok := objectives[c.Objective]; !ok {
		return errors.NewConfigError("objective", "unknown objective metric "+c.Objective)
	}
	if _, err := Combinations(c.Parameters); err != nil {
		return err
	}
	// Trial-apply every parameter name so an unknown one fails here,
	// not in the middle of a run.
	for _, p := range c.Parameters {
		if _, err := c.Backtest.WithParameter(p.Name, p.Min); err != nil {
			return err
		}
	}
	return nil
}

// WindowResult is the outcome of one fold: the parameters chosen on
// the train range and how they performed out-of-sample.
type WindowResult struct {
	Window       validation.Window         `json:"window"`
	BestParams   map[string]float64        `json:"best_params"`
	TrainMetrics backtest.Metrics          `json:"train_metrics"`
	TestMetrics  backtest.Metrics          `json:"test_metrics"`
	TestTrades   []backtest.SimulatedTrade `json:"test_trades"`
	TestEquity   []backtest.EquityPoint    `json:"test_equity"`
}

// FailedWindow records a fold skipped because its data was unusable.
type FailedWindow struct {
	Window validation.Window `json:"window"`
	Reason string            `json:"reason"`
}

// Result is the full walk-forward outcome. Aggregate recomputes the
// metrics over every out-of-sample trade chained chronologically, and
// Incomplete marks a run cut short by cancellation.
type Result struct {
	Windows    []WindowResult   `json:"windows"`
	Failed     []FailedWindow   `json:"failed_windows"`
	Aggregate  backtest.Metrics `json:"aggregate"`
	Incomplete bool             `json:"incomplete"`
}

// Optimizer runs grid search per fold over a bounded worker pool.
type Optimizer struct {
	cfg       Config
	combos    []map[string]float64
	pool      *Pool
	objective func(backtest.Metrics) float64
}

// NewOptimizer validates the config and creates an optimizer.
func NewOptimizer(cfg Config) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	combos, err := Combinations(cfg.Parameters)
	if err != nil {
		return nil, err
	}
	return &Optimizer{
		cfg:       cfg,
		combos:    combos,
		pool:      NewPool(cfg.Workers),
		objective: objectives[cfg.Objective],
	}, nil
}

// Run walks the folds over the given bar series. A fold whose data
// cannot support a backtest is recorded in Failed and skipped; the
// remaining folds still run. Cancellation is honored at fold
// boundaries and marks the result incomplete.
func (o *Optimizer) Run(ctx context.Context, lower, higher []types.Bar) (*Result, error) {
	windows, err := validation.Windows(
		o.cfg.Backtest.StartDate, o.cfg.Backtest.EndDate,
		o.cfg.TrainDuration, o.cfg.TestDuration, o.cfg.StepDuration)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, w := range windows {
		if ctx.Err() != nil {
			res.Incomplete = true
			break
		}

		wr, err := o.evaluateWindow(ctx, w, lower, higher)
		if err != nil {
			if errors.IsDataError(err) {
				res.Failed = append(res.Failed, FailedWindow{Window: w, Reason: err.Error()})
				continue
			}
			if ctx.Err() != nil {
				res.Incomplete = true
				break
			}
			return nil, err
		}
		res.Windows = append(res.Windows, *wr)
	}

	res.Aggregate = aggregateWindows(res.Windows)
	return res, nil
}

// evaluateWindow grid-searches the train range and replays the best
// combination on the unseen test range.
func (o *Optimizer) evaluateWindow(ctx context.Context, w validation.Window, lower, higher []types.Bar) (*WindowResult, error) {
	trainLower := data.SliceRange(lower, w.TrainStart, w.TrainEnd)
	trainHigher := data.SliceRange(higher, w.TrainStart, w.TrainEnd)

	type outcome struct {
		metrics backtest.Metrics
		err     error
	}
	outcomes := make([]outcome, len(o.combos))

	poolErr := o.pool.Run(ctx, len(o.combos), func(i int) {
		m, err := o.runCombo(o.combos[i], w.TrainStart, w.TrainEnd, trainLower, trainHigher)
		outcomes[i] = outcome{metrics: m, err: err}
	})
	if poolErr != nil {
		return nil, poolErr
	}

	// The data is shared across combinations, so the first failure
	// fails the whole fold. Ties on the objective go to the earliest
	// combination in grid order.
	best := -1
	bestScore := 0.0
	for i, oc := range outcomes {
		if oc.err != nil {
			return nil, oc.err
		}
		score := o.objective(oc.metrics)
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	testLower := data.SliceRange(lower, w.TestStart, w.TestEnd)
	testHigher := data.SliceRange(higher, w.TestStart, w.TestEnd)

	testCfg, err := o.comboConfig(o.combos[best], w.TestStart, w.TestEnd)
	if err != nil {
		return nil, err
	}
	eng, err := backtest.NewEngine(testCfg)
	if err != nil {
		return nil, err
	}
	testRes, err := eng.Run(testLower, testHigher)
	if err != nil {
		return nil, err
	}

	return &WindowResult{
		Window:       w,
		BestParams:   o.combos[best],
		TrainMetrics: outcomes[best].metrics,
		TestMetrics:  testRes.Metrics,
		TestTrades:   testRes.Trades,
		TestEquity:   testRes.EquityCurve,
	}, nil
}

func (o *Optimizer) runCombo(combo map[string]float64, start, end time.Time, lower, higher []types.Bar) (backtest.Metrics, error) {
	cfg, err := o.comboConfig(combo, start, end)
	if err != nil {
		return backtest.Metrics{}, err
	}
	eng, err := backtest.NewEngine(cfg)
	if err != nil {
		return backtest.Metrics{}, err
	}
	res, err := eng.Run(lower, higher)
	if err != nil {
		return backtest.Metrics{}, err
	}
	return res.Metrics, nil
}

func (o *Optimizer) comboConfig(combo map[string]float64, start, end time.Time) (backtest.Config, error) {
	cfg := o.cfg.Backtest
	cfg.StartDate = start
	cfg.EndDate = end
	for name, value := range combo {
		next, err := cfg.WithParameter(name, value)
		if err != nil {
			return cfg, err
		}
		cfg = next
	}
	return cfg, nil
}

// aggregateWindows chains the out-of-sample equity of every fold into
// one running curve and recomputes the metrics over it, so the
// aggregate drawdown spans fold boundaries.
func aggregateWindows(windows []WindowResult) backtest.Metrics {
	var trades []backtest.SimulatedTrade
	var equity []backtest.EquityPoint

	offset := 0.0
	peak := 0.0
	for _, w := range windows {
		trades = append(trades, w.TestTrades...)
		for _, p := range w.TestEquity {
			eq := offset + p.Equity
			if eq > peak {
				peak = eq
			}
			equity = append(equity, backtest.EquityPoint{
				Timestamp: p.Timestamp,
				Equity:    eq,
				Drawdown:  peak - eq,
			})
		}
		offset += w.TestMetrics.TotalPnL
	}

	return backtest.NewCalculator().Calculate(trades, equity)
}
