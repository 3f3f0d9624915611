package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
)

func sampleResult() *backtest.Result {
	entry := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	return &backtest.Result{
		Config: backtest.DefaultConfig("BTCUSDT"),
		Metrics: backtest.Metrics{
			TotalPnL:     12.5,
			WinRate:      1.0,
			ProfitFactor: 3.0,
			TradeCount:   1,
			Expectancy:   12.5,
		},
		Trades: []backtest.SimulatedTrade{{
			ID:         1,
			Direction:  backtest.TradeLong,
			EntryTime:  entry,
			EntryPrice: 100,
			ExitTime:   entry.Add(4 * time.Hour),
			ExitPrice:  112.5,
			ExitReason: backtest.ExitTakeProfit,
			Status:     backtest.StatusClosed,
			PnL:        12.5,
		}},
		EquityCurve: []backtest.EquityPoint{
			{Timestamp: entry, Equity: 0},
			{Timestamp: entry.Add(4 * time.Hour), Equity: 12.5},
		},
	}
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("results", "BTCUSDT_1h"), DefaultOutputDir(" btcusdt ", "1H"))
	assert.Equal(t, filepath.Join("results", "UNKNOWN_unknown"), DefaultOutputDir("", ""))
	assert.Equal(t, filepath.Join("results", "ETHUSDT_4h", "trades.xlsx"), DefaultWorkbookPath("ETHUSDT", "4h"))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.json")

	require.NoError(t, WriteJSON(sampleResult(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var back backtest.Result
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "BTCUSDT", back.Config.Symbol)
	require.Len(t, back.Trades, 1)
	assert.Equal(t, backtest.ExitTakeProfit, back.Trades[0].ExitReason)
}

func TestExcelReporter_WriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.xlsx")

	require.NoError(t, NewExcelReporter().WriteWorkbook(sampleResult(), path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	sheets := fx.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Trades")
	assert.Contains(t, sheets, "Equity")

	symbol, err := fx.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", symbol)

	side, err := fx.GetCellValue("Trades", "B2")
	require.NoError(t, err)
	assert.Equal(t, "LONG", side)

	reason, err := fx.GetCellValue("Trades", "G2")
	require.NoError(t, err)
	assert.Equal(t, "TAKE_PROFIT", reason)
}

func TestConsoleReporter_PrintDoesNotPanic(t *testing.T) {
	r := NewConsoleReporter()
	res := sampleResult()

	assert.NotPanics(t, func() {
		r.PrintResult(res)
		r.PrintTrades(res)
	})
}

func TestFormatParams_StableOrder(t *testing.T) {
	got := formatParams(map[string]float64{"b": 2, "a": 1.5, "c": 3})
	assert.Equal(t, "a=1.5 b=2 c=3", got)
}
