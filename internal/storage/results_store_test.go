package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
)

func storedResult(symbol string, pnl float64) *backtest.Result {
	cfg := backtest.DefaultConfig(symbol)
	return &backtest.Result{
		Config: cfg,
		Metrics: backtest.Metrics{
			TotalPnL:   pnl,
			TradeCount: 1,
		},
		Trades: []backtest.SimulatedTrade{{
			ID:        1,
			Direction: backtest.TradeLong,
			Status:    backtest.StatusClosed,
			PnL:       pnl,
		}},
		EquityCurve: []backtest.EquityPoint{{
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Equity:    pnl,
		}},
	}
}

func newStore(t *testing.T) *ResultsStore {
	t.Helper()
	store, err := NewResultsStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestResultsStore_SaveAndGet(t *testing.T) {
	store := newStore(t)

	id, err := store.Save(storedResult("BTCUSDT", 42))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "BTCUSDT", got.Result.Config.Symbol)
	assert.InDelta(t, 42, got.Result.Metrics.TotalPnL, 1e-9)
	require.Len(t, got.Result.Trades, 1)
	assert.Equal(t, backtest.StatusClosed, got.Result.Trades[0].Status)
}

func TestResultsStore_SaveNil(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(nil)
	assert.Error(t, err)
}

func TestResultsStore_GetMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Get("nope")
	assert.Error(t, err)
}

func TestResultsStore_ListAndFilter(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(storedResult("BTCUSDT", 10))
	require.NoError(t, err)
	_, err = store.Save(storedResult("ETHUSDT", 20))
	require.NoError(t, err)
	_, err = store.Save(storedResult("BTCUSDT", 30))
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].SavedAt.Before(all[i-1].SavedAt))
	}

	btc, err := store.ListBySymbol("BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, btc, 2)

	none, err := store.ListBySymbol("SOLUSDT")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResultsStore_Best(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(storedResult("BTCUSDT", 10))
	require.NoError(t, err)
	_, err = store.Save(storedResult("ETHUSDT", 50))
	require.NoError(t, err)
	_, err = store.Save(storedResult("BTCUSDT", 30))
	require.NoError(t, err)

	best, err := store.Best("total_pnl")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", best.Result.Config.Symbol)
	assert.InDelta(t, 50, best.Result.Metrics.TotalPnL, 1e-9)
}

func TestResultsStore_BestByDrawdown(t *testing.T) {
	store := newStore(t)

	deep := storedResult("BTCUSDT", 10)
	deep.Metrics.MaxDrawdown = 25
	shallow := storedResult("ETHUSDT", 5)
	shallow.Metrics.MaxDrawdown = 3

	_, err := store.Save(deep)
	require.NoError(t, err)
	_, err = store.Save(shallow)
	require.NoError(t, err)

	best, err := store.Best("max_drawdown")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", best.Result.Config.Symbol)
}

func TestResultsStore_BestUnknownMetric(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(storedResult("BTCUSDT", 10))
	require.NoError(t, err)

	_, err = store.Best("alpha")
	assert.Error(t, err)
}

func TestResultsStore_BestOnEmptyStore(t *testing.T) {
	store := newStore(t)

	_, err := store.Best("total_pnl")
	assert.Error(t, err)
}

func TestResultsStore_Delete(t *testing.T) {
	store := newStore(t)

	id, err := store.Save(storedResult("BTCUSDT", 10))
	require.NoError(t, err)

	require.NoError(t, store.Delete(id))

	_, err = store.Get(id)
	assert.Error(t, err)
	assert.Error(t, store.Delete(id))
}
