// Package optimization implements grid search over strategy
// parameters with rolling walk-forward validation.
package optimization

import (
	"fmt"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
)

// Parameter defines one tunable dimension of the search grid. Values
// run from Min to Max inclusive in increments of Step.
type Parameter struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// values expands the parameter into its grid points.
func (p Parameter) values() ([]float64, error) {
	if p.Name == "" {
		return nil, errors.NewConfigError("parameter", "name must not be empty")
	}
	if p.Step <= 0 {
		return nil, errors.NewConfigError(p.Name, "step must be positive")
	}
	if p.Min > p.Max {
		return nil, errors.NewConfigError(p.Name, fmt.Sprintf("min %v exceeds max %v", p.Min, p.Max))
	}

	var out []float64
	for i := 0; ; i++ {
		v := p.Min + float64(i)*p.Step
		if v > p.Max+1e-9 {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

// Combinations enumerates the cartesian product of the parameter
// grids. The order is deterministic: the first parameter varies
// slowest, so earlier combinations hold lower values of earlier
// parameters. Ties during selection resolve to the earliest
// combination in this order.
func Combinations(params []Parameter) ([]map[string]float64, error) {
	if len(params) == 0 {
		return nil, errors.NewConfigError("parameters", "grid must not be empty")
	}

	grids := make([][]float64, len(params))
	for i, p := range params {
		vals, err := p.values()
		if err != nil {
			return nil, err
		}
		grids[i] = vals
	}

	total := 1
	for _, g := range grids {
		total *= len(g)
	}

	out := make([]map[string]float64, 0, total)
	idx := make([]int, len(params))
	for {
		combo := make(map[string]float64, len(params))
		for i, p := range params {
			combo[p.Name] = grids[i][idx[i]]
		}
		out = append(out, combo)

		// Advance like an odometer, last parameter fastest.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(grids[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}
