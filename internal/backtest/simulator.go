package backtest

import (
	"math"

	"github.com/ducminhle1904/harmonic-backtest/internal/signal"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// atrPeriod is the window of the true-range proxy used to size stops
// and targets when no better volatility estimate exists.
const atrPeriod = 14

// Simulator runs the trade lifecycle state machine over a bar stream.
// At most one position exists per run: a confirmed signal arms a
// PENDING entry that fills at the next bar's open, and new signals
// arriving while a position is open are discarded.
type Simulator struct {
	stopMultiplier   float64
	targetMultiplier float64
	maxHoldingBars   int

	pending     *SimulatedTrade
	open        *SimulatedTrade
	stop        float64
	target      float64
	holdingBars int

	realized float64
	peak     float64
	trades   []SimulatedTrade
	equity   []EquityPoint
	nextID   int

	trueRanges []float64
	lastClose  float64
	hasClose   bool
}

// NewSimulator creates a simulator with the given stop/target
// multipliers (applied to the true-range proxy) and holding limit.
func NewSimulator(stopMultiplier, targetMultiplier float64, maxHoldingBars int) *Simulator {
	return &Simulator{
		stopMultiplier:   stopMultiplier,
		targetMultiplier: targetMultiplier,
		maxHoldingBars:   maxHoldingBars,
		nextID:           1,
	}
}

// OnBar advances the state machine by one bar. sig is the confirmed,
// volume-accepted signal for this bar, or nil.
func (s *Simulator) OnBar(bar types.Bar, sig *signal.Signal) {
	justFilled := s.fillPending(bar)
	wasOpen := s.open != nil && !justFilled

	if s.open != nil {
		if !justFilled {
			s.holdingBars++
		}
		s.checkExits(bar, sig)
	}

	// Arm a new entry only if we came into this bar flat; a reversal
	// signal that just closed a position is consumed by the exit.
	if !wasOpen && !justFilled && s.open == nil && s.pending == nil && sig != nil {
		s.pending = &SimulatedTrade{
			ID:        s.nextID,
			Direction: directionToTrade(sig.Direction),
			Status:    StatusPending,
		}
		s.nextID++
	}

	s.updateTrueRange(bar)
	s.markEquity(bar)
}

// Finish force-closes any still-open position at the final bar's close.
// An armed entry that never filled is dropped.
func (s *Simulator) Finish(last types.Bar) {
	s.pending = nil
	if s.open != nil {
		s.closeTrade(last, last.Close, ExitEndOfData)
	}
}

// Trades returns the closed trades in entry order.
func (s *Simulator) Trades() []SimulatedTrade {
	return s.trades
}

// EquityCurve returns the mark-to-market equity samples.
func (s *Simulator) EquityCurve() []EquityPoint {
	return s.equity
}

// fillPending opens the armed trade at this bar's open, deriving the
// stop and target from the volatility proxy. Reports whether a fill
// happened on this bar.
func (s *Simulator) fillPending(bar types.Bar) bool {
	if s.pending == nil || s.open != nil {
		return false
	}

	t := s.pending
	s.pending = nil

	t.Status = StatusOpen
	t.EntryTime = bar.Timestamp
	t.EntryPrice = bar.Open

	proxy := s.rangeProxy(bar)
	if t.Direction == TradeLong {
		s.stop = t.EntryPrice - s.stopMultiplier*proxy
		s.target = t.EntryPrice + s.targetMultiplier*proxy
	} else {
		s.stop = t.EntryPrice + s.stopMultiplier*proxy
		s.target = t.EntryPrice - s.targetMultiplier*proxy
	}

	s.open = t
	s.holdingBars = 0
	return true
}

// checkExits applies the exit conditions in fixed priority: stop-loss,
// take-profit, timeout, opposing-signal reversal. A bar breaching both
// stop and target resolves to the stop.
func (s *Simulator) checkExits(bar types.Bar, sig *signal.Signal) {
	t := s.open

	stopHit := (t.Direction == TradeLong && bar.Low <= s.stop) ||
		(t.Direction == TradeShort && bar.High >= s.stop)
	if stopHit {
		s.closeTrade(bar, s.stop, ExitStopLoss)
		return
	}

	targetHit := (t.Direction == TradeLong && bar.High >= s.target) ||
		(t.Direction == TradeShort && bar.Low <= s.target)
	if targetHit {
		s.closeTrade(bar, s.target, ExitTakeProfit)
		return
	}

	if s.maxHoldingBars > 0 && s.holdingBars >= s.maxHoldingBars {
		s.closeTrade(bar, bar.Close, ExitTimeout)
		return
	}

	if sig != nil && directionToTrade(sig.Direction) != t.Direction {
		s.closeTrade(bar, bar.Close, ExitSignalReversal)
	}
}

func (s *Simulator) closeTrade(bar types.Bar, price float64, reason ExitReason) {
	t := s.open
	t.ExitTime = bar.Timestamp
	t.ExitPrice = price
	t.ExitReason = reason
	t.Status = StatusClosed
	t.PnL = t.pnlAt(price)

	s.realized += t.PnL
	s.trades = append(s.trades, *t)
	s.open = nil
}

// markEquity appends the mark-to-market sample for this bar: realized
// PnL plus the open position's unrealized PnL at the close.
func (s *Simulator) markEquity(bar types.Bar) {
	equity := s.realized
	if s.open != nil {
		equity += s.open.pnlAt(bar.Close)
	}
	if equity > s.peak {
		s.peak = equity
	}
	s.equity = append(s.equity, EquityPoint{
		Timestamp: bar.Timestamp,
		Equity:    equity,
		Drawdown:  s.peak - equity,
	})
}

// rangeProxy estimates volatility as the mean true range of the recent
// bars, falling back to the current bar's range before any history
// exists.
func (s *Simulator) rangeProxy(bar types.Bar) float64 {
	if len(s.trueRanges) == 0 {
		return bar.Range()
	}
	sum := 0.0
	for _, tr := range s.trueRanges {
		sum += tr
	}
	return sum / float64(len(s.trueRanges))
}

func (s *Simulator) updateTrueRange(bar types.Bar) {
	tr := bar.Range()
	if s.hasClose {
		tr = math.Max(tr, math.Max(
			math.Abs(bar.High-s.lastClose),
			math.Abs(bar.Low-s.lastClose),
		))
	}
	s.trueRanges = append(s.trueRanges, tr)
	if len(s.trueRanges) > atrPeriod {
		s.trueRanges = s.trueRanges[1:]
	}
	s.lastClose = bar.Close
	s.hasClose = true
}
