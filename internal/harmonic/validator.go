package harmonic

import (
	"math"

	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// PatternType identifies a named harmonic pattern template.
type PatternType string

const (
	PatternGartley   PatternType = "GARTLEY"
	PatternButterfly PatternType = "BUTTERFLY"
	PatternBat       PatternType = "BAT"
	PatternCrab      PatternType = "CRAB"
)

// Pattern is a validated XABCD swing: its template, the trade side
// implied by the XA leg, and the projected completion price (PRD).
type Pattern struct {
	Type      PatternType     `json:"pattern_type"`
	Direction types.Direction `json:"direction"`
	PRD       float64         `json:"prd"`
}

// ratioBand is a closed interval on a leg ratio. Point targets use
// min == max and rely on the validator tolerance.
type ratioBand struct {
	min, max float64
}

func point(v float64) ratioBand        { return ratioBand{min: v, max: v} }
func between(lo, hi float64) ratioBand { return ratioBand{min: lo, max: hi} }

func (b ratioBand) contains(r, tol float64) bool {
	return r >= b.min-tol && r <= b.max+tol
}

// template holds the tolerance bands for one pattern. All ratios are
// taken as absolute values, so templates are sign-independent. The
// completion ratio (adxa) measures the distance of D from X relative
// to the XA leg.
type template struct {
	name PatternType
	abxa ratioBand
	bcab ratioBand
	adxa ratioBand
}

// Templates are tested in this fixed order; the first match wins.
var templates = []template{
	{name: PatternGartley, abxa: point(0.618), bcab: between(0.382, 0.886), adxa: point(0.786)},
	{name: PatternButterfly, abxa: point(0.786), bcab: between(0.382, 0.886), adxa: between(1.272, 1.618)},
	{name: PatternBat, abxa: between(0.382, 0.5), bcab: between(0.382, 0.886), adxa: point(0.886)},
	{name: PatternCrab, abxa: between(0.382, 0.618), bcab: between(0.382, 0.886), adxa: point(1.618)},
}

// defaultTolerance absorbs float64 noise when the configured tolerance
// asks for exact ratio matches.
const defaultTolerance = 1e-9

// Validator classifies five-point swings against the pattern templates.
type Validator struct {
	tolerance float64
}

// NewValidator creates a validator with the given ratio tolerance.
// A non-positive tolerance means exact matching (up to float noise).
func NewValidator(tolerance float64) *Validator {
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	return &Validator{tolerance: tolerance}
}

// ValidatePattern classifies the swing (x,a,b,c,d). It returns the
// first template whose three leg ratios fall within tolerance, or
// ok=false when no template matches or the XA leg is degenerate.
// Identical inputs always yield identical results.
func (v *Validator) ValidatePattern(x, a, b, c, d float64) (Pattern, bool) {
	xa := math.Abs(a - x)
	if xa == 0 {
		return Pattern{}, false
	}

	ab := math.Abs(b - a)
	bc := math.Abs(c - b)
	abxa := ab / xa
	adxa := math.Abs(d-x) / xa

	var bcab float64
	if ab > 0 {
		bcab = bc / ab
	}

	for _, tpl := range templates {
		if !tpl.abxa.contains(abxa, v.tolerance) {
			continue
		}
		if !tpl.bcab.contains(bcab, v.tolerance) {
			continue
		}
		if !tpl.adxa.contains(adxa, v.tolerance) {
			continue
		}
		return Pattern{
			Type:      tpl.name,
			Direction: directionFromXA(x, a),
			PRD:       projectD(x, a, tpl.adxa.min),
		}, true
	}

	return Pattern{}, false
}

// CalculatePRD projects the completion price D for a named pattern
// from the X and A anchors, using that pattern's completion ratio.
// B and C are accepted for interface symmetry but do not influence the
// projection. The direction is inferred from the XA leg exactly as in
// ValidatePattern.
func (v *Validator) CalculatePRD(x, a, b, c float64, pt PatternType) (price float64, dir types.Direction, ok bool) {
	_ = b
	_ = c
	for _, tpl := range templates {
		if tpl.name == pt {
			return projectD(x, a, tpl.adxa.min), directionFromXA(x, a), true
		}
	}
	return 0, "", false
}

// directionFromXA maps a downswing XA (a below x) to a buy setup and
// an upswing to a sell setup.
func directionFromXA(x, a float64) types.Direction {
	if a < x {
		return types.DirectionBuy
	}
	return types.DirectionSell
}

// projectD walks the completion ratio along the XA direction from X.
func projectD(x, a, ratio float64) float64 {
	return x + ratio*(a-x)
}
