package volume

import "math"

// Relative-volume thresholds for the interpretation bands.
const (
	veryHighRVOL = 2.0
	highRVOL     = 1.5
	normalRVOL   = 1.0
	cautionRVOL  = 0.7
)

// Analysis summarizes the latest volume sample against its moving
// average.
type Analysis struct {
	VolumeMA       float64 `json:"volume_ma"`
	CurrentVolume  float64 `json:"current_volume"`
	RelativeVolume float64 `json:"relative_volume"`
	IsHighVolume   bool    `json:"is_high_volume"`
	IsAboveAverage bool    `json:"is_above_average"`
	Interpretation string  `json:"interpretation"`
}

// MovingAverage computes a simple moving average over the volume
// series. The leading period-1 entries have no value and are NaN until
// the window fills. NaN inputs are treated as missing and skipped.
func MovingAverage(volumes []float64, period int) []float64 {
	out := make([]float64, len(volumes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 {
		return out
	}

	valid := validSamples(volumes)
	if len(valid) < period {
		return out
	}

	sum := 0.0
	count := 0
	for i, v := range volumes {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
		if count > period {
			sum -= oldestInWindow(volumes, i, period)
		}
		if count >= period {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// Analyze computes the volume picture from the latest sample. It
// returns nil when fewer than period valid samples exist or the moving
// average is not positive.
func Analyze(volumes []float64, period int) *Analysis {
	valid := validSamples(volumes)
	if period < 1 || len(valid) < period {
		return nil
	}

	current := valid[len(valid)-1]
	ma := 0.0
	for _, v := range valid[len(valid)-period:] {
		ma += v
	}
	ma /= float64(period)

	if ma <= 0 {
		return nil
	}

	rvol := current / ma
	return &Analysis{
		VolumeMA:       ma,
		CurrentVolume:  current,
		RelativeVolume: rvol,
		IsHighVolume:   rvol >= highRVOL,
		IsAboveAverage: rvol >= normalRVOL,
		Interpretation: interpret(rvol),
	}
}

// Trend compares consecutive increases against decreases over the last
// lookback valid samples. Increases beating decreases by more than one
// reads "increasing", the symmetric case "decreasing", else "flat".
func Trend(volumes []float64, lookback int) string {
	valid := validSamples(volumes)
	if lookback < 2 || len(valid) < 2 {
		return "flat"
	}
	if len(valid) > lookback {
		valid = valid[len(valid)-lookback:]
	}

	ups, downs := 0, 0
	for i := 1; i < len(valid); i++ {
		switch {
		case valid[i] > valid[i-1]:
			ups++
		case valid[i] < valid[i-1]:
			downs++
		}
	}

	switch {
	case ups > downs+1:
		return "increasing"
	case downs > ups+1:
		return "decreasing"
	default:
		return "flat"
	}
}

func interpret(rvol float64) string {
	switch {
	case rvol >= veryHighRVOL:
		return "very high volume - strong conviction"
	case rvol >= highRVOL:
		return "high volume - good confirmation"
	case rvol >= normalRVOL:
		return "normal volume"
	case rvol >= cautionRVOL:
		return "below average volume - caution"
	default:
		return "low volume - weak signal"
	}
}

func validSamples(volumes []float64) []float64 {
	out := make([]float64, 0, len(volumes))
	for _, v := range volumes {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// oldestInWindow finds the sample leaving the rolling window when the
// count exceeds the period, skipping missing entries.
func oldestInWindow(volumes []float64, current, period int) float64 {
	seen := 0
	for i := current; i >= 0; i-- {
		if math.IsNaN(volumes[i]) {
			continue
		}
		seen++
		if seen == period+1 {
			return volumes[i]
		}
	}
	return 0
}
