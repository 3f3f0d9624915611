package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/harmonic-backtest/internal/signal"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

var simStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func simBar(i int, open, high, low, close float64) types.Bar {
	return types.Bar{
		Timestamp: simStart.Add(time.Duration(i) * time.Hour),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    100,
	}
}

func buySignal() *signal.Signal {
	return &signal.Signal{Direction: types.DirectionBuy, Type: signal.Type1, Strength: 0.8}
}

func sellSignal() *signal.Signal {
	return &signal.Signal{Direction: types.DirectionSell, Type: signal.Type1, Strength: 0.8}
}

func TestSimulator_FillsAtNextOpenAndTakesProfit(t *testing.T) {
	sim := NewSimulator(1.0, 2.0, 10)

	sim.OnBar(simBar(0, 100, 101, 99, 100), nil)
	sim.OnBar(simBar(1, 100, 101, 99, 100), buySignal())
	// proxy = mean TR = 2, so stop 98 and target 104 from the 100 open.
	sim.OnBar(simBar(2, 100, 106, 99.5, 105), nil)

	trades := sim.Trades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, TradeLong, tr.Direction)
	assert.Equal(t, StatusClosed, tr.Status)
	assert.Equal(t, ExitTakeProfit, tr.ExitReason)
	assert.InDelta(t, 100, tr.EntryPrice, 1e-9)
	assert.InDelta(t, 104, tr.ExitPrice, 1e-9)
	assert.InDelta(t, 4, tr.PnL, 1e-9)
	assert.Equal(t, simStart.Add(2*time.Hour), tr.EntryTime)
}

func TestSimulator_ShortStopLoss(t *testing.T) {
	sim := NewSimulator(1.0, 2.0, 10)

	sim.OnBar(simBar(0, 100, 102, 98, 100), nil)
	sim.OnBar(simBar(1, 100, 101, 99, 100), sellSignal())
	// proxy = (4+2)/2 = 3, short from 100: stop 103, target 94.
	sim.OnBar(simBar(2, 100, 104, 99, 103), nil)

	trades := sim.Trades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, TradeShort, tr.Direction)
	assert.Equal(t, ExitStopLoss, tr.ExitReason)
	assert.InDelta(t, 103, tr.ExitPrice, 1e-9)
	assert.InDelta(t, -3, tr.PnL, 1e-9)
}

func TestSimulator_StopWinsWhenBothBreached(t *testing.T) {
	sim := NewSimulator(1.0, 2.0, 10)

	sim.OnBar(simBar(0, 100, 101, 99, 100), nil)
	sim.OnBar(simBar(1, 100, 101, 99, 100), buySignal())
	// Stop 98 and target 104 both inside this bar's range.
	sim.OnBar(simBar(2, 100, 105, 97, 101), nil)

	trades := sim.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, ExitStopLoss, trades[0].ExitReason)
	assert.InDelta(t, -2, trades[0].PnL, 1e-9)
}

func TestSimulator_Timeout(t *testing.T) {
	// Multipliers wide enough that price never reaches stop or target.
	sim := NewSimulator(10, 20, 2)

	sim.OnBar(simBar(0, 100, 101, 99, 100), buySignal())
	sim.OnBar(simBar(1, 100, 101, 99, 100), nil) // fill, holding 0
	sim.OnBar(simBar(2, 100, 101, 99, 100), nil) // holding 1
	sim.OnBar(simBar(3, 100, 101, 99, 101), nil) // holding 2, timeout

	trades := sim.Trades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, ExitTimeout, tr.ExitReason)
	assert.InDelta(t, 101, tr.ExitPrice, 1e-9)
	assert.InDelta(t, 1, tr.PnL, 1e-9)
}

func TestSimulator_ReversalClosesWithoutReentry(t *testing.T) {
	sim := NewSimulator(10, 20, 100)

	sim.OnBar(simBar(0, 100, 101, 99, 100), buySignal())
	sim.OnBar(simBar(1, 100, 101, 99, 100), nil)
	sim.OnBar(simBar(2, 100, 101, 99, 100), sellSignal())
	sim.OnBar(simBar(3, 100, 101, 99, 100), nil)
	sim.OnBar(simBar(4, 100, 101, 99, 100), nil)

	trades := sim.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, ExitSignalReversal, trades[0].ExitReason)
	assert.Equal(t, simStart.Add(2*time.Hour), trades[0].ExitTime)
}

func TestSimulator_SameDirectionSignalIgnoredWhileOpen(t *testing.T) {
	sim := NewSimulator(10, 20, 100)

	sim.OnBar(simBar(0, 100, 101, 99, 100), buySignal())
	sim.OnBar(simBar(1, 100, 101, 99, 100), buySignal())
	sim.OnBar(simBar(2, 100, 101, 99, 100), buySignal())
	sim.Finish(simBar(2, 100, 101, 99, 100))

	trades := sim.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, ExitEndOfData, trades[0].ExitReason)
}

func TestSimulator_UnfilledPendingDropped(t *testing.T) {
	sim := NewSimulator(1, 2, 10)

	last := simBar(0, 100, 101, 99, 100)
	sim.OnBar(last, buySignal())
	sim.Finish(last)

	assert.Empty(t, sim.Trades())
}

func TestSimulator_TradesNeverOverlap(t *testing.T) {
	sim := NewSimulator(1, 2, 3)

	bars := []types.Bar{
		simBar(0, 100, 101, 99, 100),
		simBar(1, 100, 103, 99, 102),
		simBar(2, 102, 104, 100, 103),
		simBar(3, 103, 104, 98, 99),
		simBar(4, 99, 100, 96, 97),
		simBar(5, 97, 99, 95, 98),
		simBar(6, 98, 102, 97, 101),
		simBar(7, 101, 103, 99, 100),
	}
	sigs := []*signal.Signal{buySignal(), nil, sellSignal(), nil, buySignal(), nil, nil, sellSignal()}

	for i, b := range bars {
		sim.OnBar(b, sigs[i])
	}
	sim.Finish(bars[len(bars)-1])

	trades := sim.Trades()
	for i := 1; i < len(trades); i++ {
		assert.False(t, trades[i].EntryTime.Before(trades[i-1].ExitTime),
			"trade %d entered before trade %d exited", i, i-1)
	}
	for _, tr := range trades {
		assert.Equal(t, StatusClosed, tr.Status)
		assert.NotEmpty(t, tr.ExitReason)
	}
}

func TestSimulator_EquityCurveTracksDrawdown(t *testing.T) {
	sim := NewSimulator(1.0, 2.0, 10)

	sim.OnBar(simBar(0, 100, 101, 99, 100), nil)
	sim.OnBar(simBar(1, 100, 101, 99, 100), buySignal())
	sim.OnBar(simBar(2, 100, 106, 99.5, 105), nil) // +4 realized
	sim.OnBar(simBar(3, 100, 101, 99, 100), nil)

	curve := sim.EquityCurve()
	require.Len(t, curve, 4)
	assert.InDelta(t, 0, curve[0].Equity, 1e-9)
	assert.InDelta(t, 4, curve[2].Equity, 1e-9)
	assert.InDelta(t, 0, curve[2].Drawdown, 1e-9)
	assert.InDelta(t, 4, curve[3].Equity, 1e-9)

	for i := 1; i < len(curve); i++ {
		assert.True(t, curve[i].Timestamp.After(curve[i-1].Timestamp))
	}
}
