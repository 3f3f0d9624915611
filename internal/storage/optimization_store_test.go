package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
	"github.com/ducminhle1904/harmonic-backtest/pkg/optimization"
)

func storedOptimization(symbol string) (optimization.Config, *optimization.Result) {
	cfg := optimization.Config{
		Backtest: backtest.DefaultConfig(symbol),
		Parameters: []optimization.Parameter{
			{Name: "stop_multiplier", Min: 1, Max: 2, Step: 0.5},
		},
		TrainDuration: 60 * 24 * time.Hour,
		TestDuration:  20 * 24 * time.Hour,
		StepDuration:  20 * 24 * time.Hour,
		Objective:     "total_pnl",
	}
	result := &optimization.Result{
		Windows: []optimization.WindowResult{{
			BestParams:  map[string]float64{"stop_multiplier": 1.5},
			TestMetrics: backtest.Metrics{TotalPnL: 7, TradeCount: 2},
		}},
		Aggregate: backtest.Metrics{TotalPnL: 7, TradeCount: 2},
	}
	return cfg, result
}

func TestOptimizationStore_SaveAndGet(t *testing.T) {
	store := newStore(t)

	cfg, result := storedOptimization("BTCUSDT")
	id, err := store.SaveOptimization(cfg, result)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.GetOptimization(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "BTCUSDT", got.Config.Backtest.Symbol)
	require.Len(t, got.Result.Windows, 1)
	assert.InDelta(t, 1.5, got.Result.Windows[0].BestParams["stop_multiplier"], 1e-9)
	assert.InDelta(t, 7, got.Result.Aggregate.TotalPnL, 1e-9)
}

func TestOptimizationStore_SaveNil(t *testing.T) {
	store := newStore(t)

	cfg, _ := storedOptimization("BTCUSDT")
	_, err := store.SaveOptimization(cfg, nil)
	assert.Error(t, err)
}

func TestOptimizationStore_GetMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.GetOptimization("wf_nope")
	assert.Error(t, err)
}

func TestOptimizationStore_SeparateFromBacktestListing(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(storedResult("BTCUSDT", 10))
	require.NoError(t, err)

	cfg, result := storedOptimization("BTCUSDT")
	_, err = store.SaveOptimization(cfg, result)
	require.NoError(t, err)

	backtests, err := store.List()
	require.NoError(t, err)
	assert.Len(t, backtests, 1)

	runs, err := store.ListOptimizations()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
