package backtest

import (
	"time"

	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// TradeDirection is the side of a simulated position.
type TradeDirection string

const (
	TradeLong  TradeDirection = "LONG"
	TradeShort TradeDirection = "SHORT"
)

// directionToTrade maps a signal side to a position side.
func directionToTrade(d types.Direction) TradeDirection {
	if d == types.DirectionBuy {
		return TradeLong
	}
	return TradeShort
}

// TradeStatus is the lifecycle stage of a simulated trade. A trade is
// created PENDING on a confirmed signal, becomes OPEN on fill and is
// CLOSED exactly once; closed trades are never mutated again.
type TradeStatus string

const (
	StatusPending TradeStatus = "PENDING"
	StatusOpen    TradeStatus = "OPEN"
	StatusClosed  TradeStatus = "CLOSED"
)

// ExitReason records which exit condition closed a trade.
type ExitReason string

const (
	ExitStopLoss       ExitReason = "STOP_LOSS"
	ExitTakeProfit     ExitReason = "TAKE_PROFIT"
	ExitTimeout        ExitReason = "TIMEOUT"
	ExitSignalReversal ExitReason = "SIGNAL_REVERSAL"
	ExitEndOfData      ExitReason = "END_OF_DATA"
)

// SimulatedTrade is one position produced by the simulator.
type SimulatedTrade struct {
	ID         int            `json:"id"`
	Direction  TradeDirection `json:"direction"`
	EntryTime  time.Time      `json:"entry_time"`
	EntryPrice float64        `json:"entry_price"`
	ExitTime   time.Time      `json:"exit_time"`
	ExitPrice  float64        `json:"exit_price"`
	ExitReason ExitReason     `json:"exit_reason"`
	Status     TradeStatus    `json:"status"`
	PnL        float64        `json:"pnl"`
}

// pnlAt returns the per-unit profit of the trade marked at price.
func (t *SimulatedTrade) pnlAt(price float64) float64 {
	if t.Direction == TradeLong {
		return price - t.EntryPrice
	}
	return t.EntryPrice - price
}

// EquityPoint is one mark-to-market sample of the equity curve.
// The sequence is strictly time-ordered and append-only during a run.
type EquityPoint struct {
	Timestamp time.Time `json:"time"`
	Equity    float64   `json:"equity"`
	Drawdown  float64   `json:"drawdown"`
}
