package harmonic

import (
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// Pivot is one zig-zag turning point in a bar series.
type Pivot struct {
	Index int
	Price float64
	High  bool
}

// FindPivots reduces a bar series to an alternating sequence of swing
// highs and lows. An index is a swing high when its high strictly
// exceeds every high within ±lookback bars (lows symmetric). Adjacent
// pivots of the same kind collapse to the more extreme one, so the
// returned sequence alternates high/low in time order.
func FindPivots(bars []types.Bar, lookback int) []Pivot {
	if lookback < 1 || len(bars) < 2*lookback+1 {
		return nil
	}

	var raw []Pivot
	for i := lookback; i < len(bars)-lookback; i++ {
		if isSwingHigh(bars, i, lookback) {
			raw = append(raw, Pivot{Index: i, Price: bars[i].High, High: true})
		}
		if isSwingLow(bars, i, lookback) {
			raw = append(raw, Pivot{Index: i, Price: bars[i].Low, High: false})
		}
	}

	// Collapse runs of same-kind pivots, keeping the extreme.
	var pivots []Pivot
	for _, p := range raw {
		if len(pivots) == 0 {
			pivots = append(pivots, p)
			continue
		}
		last := &pivots[len(pivots)-1]
		if p.High != last.High {
			pivots = append(pivots, p)
			continue
		}
		if (p.High && p.Price > last.Price) || (!p.High && p.Price < last.Price) {
			*last = p
		}
	}

	return pivots
}

// LastSwing returns the high/low prices of the most recent completed
// swing and the side it sets up: an upswing ending on a high is a buy
// retracement, a downswing ending on a low is a sell retracement.
func LastSwing(pivots []Pivot) (high, low float64, dir types.Direction, ok bool) {
	if len(pivots) < 2 {
		return 0, 0, "", false
	}
	last := pivots[len(pivots)-1]
	prev := pivots[len(pivots)-2]
	if last.High {
		return last.Price, prev.Price, types.DirectionBuy, true
	}
	return prev.Price, last.Price, types.DirectionSell, true
}

// LastXABCD returns the prices of the last five alternating pivots,
// oldest first, for harmonic validation.
func LastXABCD(pivots []Pivot) (x, a, b, c, d float64, ok bool) {
	if len(pivots) < 5 {
		return 0, 0, 0, 0, 0, false
	}
	p := pivots[len(pivots)-5:]
	return p[0].Price, p[1].Price, p[2].Price, p[3].Price, p[4].Price, true
}

func isSwingHigh(bars []types.Bar, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j == i {
			continue
		}
		if bars[j].High >= bars[i].High {
			return false
		}
	}
	return true
}

func isSwingLow(bars []types.Bar, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j == i {
			continue
		}
		if bars[j].Low <= bars[i].Low {
			return false
		}
	}
	return true
}
