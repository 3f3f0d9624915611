package signal

import (
	"math"

	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// Type classifies how a bar interacted with its reference level.
// Type 1 bars penetrated the level before closing beyond it and score
// a higher base strength than Type 2 bars that never crossed it.
type Type string

const (
	Type1 Type = "TYPE_1"
	Type2 Type = "TYPE_2"
)

// Base strength per signal type and the maximum close-distance bonus.
const (
	type1Base     = 0.7
	type2Base     = 0.5
	distanceBonus = 0.3
)

// Signal is one confirmed bar-level interaction.
type Signal struct {
	Direction types.Direction `json:"direction"`
	Bar       types.Bar       `json:"bar"`
	Level     float64         `json:"level"`
	Type      Type            `json:"signal_type"`
	Strength  float64         `json:"strength"`
}

// Detect classifies a bar relative to a price level. A bullish close
// above the level is a buy candidate, a bearish close below it a sell
// candidate; a doji never signals. Returns nil when the bar does not
// qualify.
func Detect(bar types.Bar, level float64) *Signal {
	if bar.Open == bar.Close {
		return nil
	}

	var dir types.Direction
	var penetrated bool
	var closeDistance float64

	switch {
	case bar.IsBullish() && bar.Close > level:
		dir = types.DirectionBuy
		penetrated = bar.Low < level
		closeDistance = bar.Close - level
	case bar.IsBearish() && bar.Close < level:
		dir = types.DirectionSell
		penetrated = bar.High > level
		closeDistance = level - bar.Close
	default:
		return nil
	}

	sigType := Type2
	base := type2Base
	if penetrated {
		sigType = Type1
		base = type1Base
	}

	strength := base
	if r := bar.Range(); r > 0 {
		strength += distanceBonus * math.Min(closeDistance/r, 1.0)
	}
	strength = math.Max(0, math.Min(1, strength))

	return &Signal{
		Direction: dir,
		Bar:       bar,
		Level:     level,
		Type:      sigType,
		Strength:  strength,
	}
}
