package data

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
	"github.com/ducminhle1904/harmonic-backtest/internal/exchange/bybit"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// KlineFetcher is the slice of the exchange client the provider needs.
type KlineFetcher interface {
	GetKlines(ctx context.Context, params bybit.KlineParams) ([]bybit.Kline, error)
}

// BybitProvider loads historical bars straight from the Bybit market
// data API, paging through the kline endpoint.
type BybitProvider struct {
	client   KlineFetcher
	category string
}

// NewBybitProvider creates a provider over the given exchange client.
// Category defaults to spot.
func NewBybitProvider(client KlineFetcher, category string) *BybitProvider {
	if category == "" {
		category = "spot"
	}
	return &BybitProvider{client: client, category: category}
}

// GetName returns the name of the data provider
func (p *BybitProvider) GetName() string {
	return "Bybit Provider"
}

// FetchBars downloads the bars for symbol at the given timeframe over
// [start, end), oldest first. The endpoint caps each page at 1000
// klines, so long ranges are fetched in several requests.
func (p *BybitProvider) FetchBars(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]types.Bar, error) {
	interval, ok := bybit.IntervalFromTimeframe(timeframe)
	if !ok {
		return nil, errors.NewConfigError("timeframe", fmt.Sprintf("unknown timeframe %q", timeframe))
	}
	if !end.After(start) {
		return nil, errors.NewConfigError("end", "must be after start")
	}

	var bars []types.Bar
	cursor := start

	for cursor.Before(end) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		klines, err := p.client.GetKlines(ctx, bybit.KlineParams{
			Category: p.category,
			Symbol:   symbol,
			Interval: interval,
			Start:    &cursor,
			End:      &end,
			Limit:    1000,
		})
		if err != nil {
			return nil, errors.WrapDataError(fmt.Sprintf("fetching %s %s klines", symbol, timeframe), err)
		}
		if len(klines) == 0 {
			break
		}

		// Bybit returns klines newest first.
		progressed := false
		for i := len(klines) - 1; i >= 0; i-- {
			k := klines[i]
			if k.StartTime.Before(cursor) || !k.StartTime.Before(end) {
				continue
			}
			bars = append(bars, types.Bar{
				Timestamp: k.StartTime,
				Open:      k.OpenPrice,
				High:      k.HighPrice,
				Low:       k.LowPrice,
				Close:     k.ClosePrice,
				Volume:    k.Volume,
			})
			if !k.StartTime.Before(cursor) {
				cursor = k.StartTime.Add(time.Millisecond)
				progressed = true
			}
		}
		if !progressed {
			break
		}

		log.Printf("🔄 Fetched %d %s %s klines up to %s", len(klines), symbol, timeframe, cursor.Format(time.RFC3339))
	}

	if len(bars) == 0 {
		return nil, errors.NewDataError(fmt.Sprintf("no %s klines returned for %s", timeframe, symbol))
	}

	return Prepare(bars)
}
