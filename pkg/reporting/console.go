// Package reporting renders backtest and walk-forward results to the
// console, JSON files and Excel workbooks.
package reporting

import (
	"fmt"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
	"github.com/ducminhle1904/harmonic-backtest/pkg/optimization"
)

// ConsoleReporter renders results as rounded tables on stdout.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintResult prints the metrics of one backtest run.
func (r *ConsoleReporter) PrintResult(res *backtest.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("BACKTEST RESULTS %s", res.Config.Symbol))
	t.SetStyle(table.StyleRounded)

	m := res.Metrics
	t.AppendRows([]table.Row{
		{"💰 Total PnL", fmt.Sprintf("%.4f", m.TotalPnL)},
		{"📈 Win Rate", fmt.Sprintf("%.1f%%", m.WinRate*100)},
		{"💹 Profit Factor", formatProfitFactor(m.ProfitFactor)},
		{"📊 Sharpe Ratio", fmt.Sprintf("%.2f", m.SharpeRatio)},
		{"📉 Max Drawdown", fmt.Sprintf("%.4f", m.MaxDrawdown)},
		{"🔄 Trades", fmt.Sprintf("%d", m.TradeCount)},
		{"🎯 Expectancy", fmt.Sprintf("%.4f", m.Expectancy)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 14, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}

// PrintTrades prints the closed trades of a run.
func (r *ConsoleReporter) PrintTrades(res *backtest.Result) {
	if len(res.Trades) == 0 {
		fmt.Println("No trades were simulated.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADES")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Side", "Entry", "Exit", "PnL", "Reason"})

	for _, tr := range res.Trades {
		t.AppendRow(table.Row{
			tr.ID,
			tr.Direction,
			fmt.Sprintf("%.4f", tr.EntryPrice),
			fmt.Sprintf("%.4f", tr.ExitPrice),
			fmt.Sprintf("%+.4f", tr.PnL),
			tr.ExitReason,
		})
	}

	t.Render()
	fmt.Println()
}

// PrintWalkForward prints the per-window results and the out-of-sample
// aggregate of a walk-forward run.
func (r *ConsoleReporter) PrintWalkForward(res *optimization.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("WALK-FORWARD WINDOWS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Train PnL", "Test PnL", "Test Trades", "Best Params"})

	for _, w := range res.Windows {
		t.AppendRow(table.Row{
			w.Window.Index,
			fmt.Sprintf("%.4f", w.TrainMetrics.TotalPnL),
			fmt.Sprintf("%.4f", w.TestMetrics.TotalPnL),
			w.TestMetrics.TradeCount,
			formatParams(w.BestParams),
		})
	}
	t.Render()

	for _, f := range res.Failed {
		fmt.Printf("⚠️ Window %d skipped: %s\n", f.Window.Index, f.Reason)
	}
	if res.Incomplete {
		fmt.Println("⚠️ Run was cancelled before all windows completed.")
	}

	agg := table.NewWriter()
	agg.SetOutputMirror(os.Stdout)
	agg.SetTitle("OUT-OF-SAMPLE AGGREGATE")
	agg.SetStyle(table.StyleRounded)
	agg.AppendRows([]table.Row{
		{"💰 Total PnL", fmt.Sprintf("%.4f", res.Aggregate.TotalPnL)},
		{"📈 Win Rate", fmt.Sprintf("%.1f%%", res.Aggregate.WinRate*100)},
		{"💹 Profit Factor", formatProfitFactor(res.Aggregate.ProfitFactor)},
		{"📉 Max Drawdown", fmt.Sprintf("%.4f", res.Aggregate.MaxDrawdown)},
		{"🔄 Trades", fmt.Sprintf("%d", res.Aggregate.TradeCount)},
	})
	agg.Render()
	fmt.Println()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}

func formatParams(params map[string]float64) string {
	out := ""
	for _, name := range sortedKeys(params) {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%g", name, params[name])
	}
	return out
}

// Package-level convenience function
func PrintResult(res *backtest.Result) {
	NewConsoleReporter().PrintResult(res)
}
