package fibonacci

import (
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// Level is a fibonacci ratio tag. The value is the ratio itself so the
// tag doubles as the multiplier.
type Level float64

// Retracement levels
const (
	Level382 Level = 0.382
	Level500 Level = 0.5
	Level618 Level = 0.618
	Level786 Level = 0.786
)

// Extension levels
const (
	Ext1272 Level = 1.272
	Ext1618 Level = 1.618
	Ext2618 Level = 2.618
)

// RetracementLevels lists the supported retracement ratios in ascending order.
var RetracementLevels = []Level{Level382, Level500, Level618, Level786}

// ExtensionLevels lists the supported extension ratios in ascending order.
var ExtensionLevels = []Level{Ext1272, Ext1618, Ext2618}

// Retracement maps each retracement level to its price for the given
// swing. Buy levels step down from the high, sell levels step up from
// the low. A zero-range swing (high == low) maps every level to that
// common price.
func Retracement(high, low float64, dir types.Direction) map[Level]float64 {
	return priceLevels(high, low, dir, RetracementLevels)
}

// Extension maps each extension level to its projected price beyond the
// swing range, with the same direction convention as Retracement.
func Extension(high, low float64, dir types.Direction) map[Level]float64 {
	return priceLevels(high, low, dir, ExtensionLevels)
}

func priceLevels(high, low float64, dir types.Direction, levels []Level) map[Level]float64 {
	span := high - low
	prices := make(map[Level]float64, len(levels))
	for _, lvl := range levels {
		if dir == types.DirectionBuy {
			prices[lvl] = high - span*float64(lvl)
		} else {
			prices[lvl] = low + span*float64(lvl)
		}
	}
	return prices
}
