package backtest

import "encoding/json"

// Result is the immutable outcome of one backtest run.
type Result struct {
	Config      Config           `json:"config"`
	Metrics     Metrics          `json:"metrics"`
	Trades      []SimulatedTrade `json:"trades"`
	EquityCurve []EquityPoint    `json:"equity_curve"`
}

// ToMap flattens the result into nested JSON-compatible primitives for
// storage and reporting.
func (r *Result) ToMap() (map[string]interface{}, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResultFromMap rebuilds a result from its ToMap form.
func ResultFromMap(m map[string]interface{}) (*Result, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
