package backtest

import (
	"encoding/json"
	"math"
)

// Metrics is the aggregate performance summary of one backtest run.
type Metrics struct {
	TotalPnL     float64 `json:"total_pnl"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	TradeCount   int     `json:"trade_count"`
	Expectancy   float64 `json:"expectancy"`
}

// MarshalJSON caps an infinite profit factor at the largest finite
// float so results stay representable in JSON.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	a := alias(m)
	if math.IsInf(a.ProfitFactor, 1) {
		a.ProfitFactor = math.MaxFloat64
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores the infinite profit factor from its capped
// encoding.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	type alias Metrics
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.ProfitFactor == math.MaxFloat64 {
		a.ProfitFactor = math.Inf(1)
	}
	*m = Metrics(a)
	return nil
}

// Calculator derives performance metrics from closed trades and an
// equity curve. The annualization factor scales the Sharpe ratio and
// defaults to 1 (per-bar Sharpe).
type Calculator struct {
	annualization float64
}

// NewCalculator creates a calculator with no Sharpe annualization.
func NewCalculator() *Calculator {
	return &Calculator{annualization: 1.0}
}

// NewCalculatorWithAnnualization creates a calculator that scales the
// Sharpe ratio by factor, e.g. sqrt(365*24) for hourly bars.
func NewCalculatorWithAnnualization(factor float64) *Calculator {
	if factor <= 0 {
		factor = 1.0
	}
	return &Calculator{annualization: factor}
}

// Calculate computes the metrics for a run. With no trades every
// trade-derived metric is zero; with no losing trades the profit
// factor is +Inf when any profit exists and zero otherwise.
func (c *Calculator) Calculate(trades []SimulatedTrade, equity []EquityPoint) Metrics {
	var m Metrics
	m.TradeCount = len(trades)

	wins := 0
	grossProfit, grossLoss := 0.0, 0.0
	for _, t := range trades {
		m.TotalPnL += t.PnL
		if t.PnL > 0 {
			wins++
			grossProfit += t.PnL
		} else if t.PnL < 0 {
			grossLoss += -t.PnL
		}
	}

	if m.TradeCount > 0 {
		m.WinRate = float64(wins) / float64(m.TradeCount)
		m.Expectancy = m.TotalPnL / float64(m.TradeCount)
	}

	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		m.ProfitFactor = math.Inf(1)
	}

	m.SharpeRatio = c.sharpe(equity)
	for _, p := range equity {
		if p.Drawdown > m.MaxDrawdown {
			m.MaxDrawdown = p.Drawdown
		}
	}
	return m
}

// sharpe is the mean bar-to-bar equity change over its standard
// deviation, scaled by the annualization factor. Zero when fewer than
// two return samples exist or the returns never vary.
func (c *Calculator) sharpe(equity []EquityPoint) float64 {
	if len(equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		returns = append(returns, equity[i].Equity-equity[i-1].Equity)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * c.annualization
}
