package reporting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
)

// ExcelReporter writes a backtest result as an Excel workbook with
// summary, trades and equity sheets.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteWorkbook writes the result to path, creating parent directories
// as needed.
func (r *ExcelReporter) WriteWorkbook(res *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const tradesSheet = "Trades"
	const equitySheet = "Equity"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(tradesSheet)
	fx.NewSheet(equitySheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, summarySheet, res, headerStyle); err != nil {
		return err
	}
	if err := r.writeTradesSheet(fx, tradesSheet, res, headerStyle); err != nil {
		return err
	}
	if err := r.writeEquitySheet(fx, equitySheet, res, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, res *backtest.Result, headerStyle int) error {
	if err := fx.SetSheetRow(sheet, "A1", &[]interface{}{"Metric", "Value"}); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	m := res.Metrics
	pf := m.ProfitFactor
	if math.IsInf(pf, 1) {
		pf = math.MaxFloat64
	}

	rows := [][]interface{}{
		{"Symbol", res.Config.Symbol},
		{"Higher Timeframe", res.Config.HigherTimeframe},
		{"Lower Timeframe", res.Config.LowerTimeframe},
		{"Total PnL", m.TotalPnL},
		{"Win Rate", m.WinRate},
		{"Profit Factor", pf},
		{"Sharpe Ratio", m.SharpeRatio},
		{"Max Drawdown", m.MaxDrawdown},
		{"Trade Count", m.TradeCount},
		{"Expectancy", m.Expectancy},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (r *ExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, res *backtest.Result, headerStyle int) error {
	header := []interface{}{"ID", "Direction", "Entry Time", "Entry Price", "Exit Time", "Exit Price", "Exit Reason", "PnL"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "H1", headerStyle); err != nil {
		return err
	}

	for i, tr := range res.Trades {
		row := []interface{}{
			tr.ID,
			string(tr.Direction),
			tr.EntryTime.Format(time.RFC3339),
			tr.EntryPrice,
			tr.ExitTime.Format(time.RFC3339),
			tr.ExitPrice,
			string(tr.ExitReason),
			tr.PnL,
		}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func (r *ExcelReporter) writeEquitySheet(fx *excelize.File, sheet string, res *backtest.Result, headerStyle int) error {
	header := []interface{}{"Time", "Equity", "Drawdown"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return err
	}

	for i, p := range res.EquityCurve {
		row := []interface{}{
			p.Timestamp.Format(time.RFC3339),
			p.Equity,
			p.Drawdown,
		}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTradesXLSX is a package-level convenience wrapper.
func WriteTradesXLSX(res *backtest.Result, path string) error {
	return NewExcelReporter().WriteWorkbook(res, path)
}
