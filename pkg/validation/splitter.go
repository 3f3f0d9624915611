// Package validation provides rolling walk-forward window splitting
// for out-of-sample strategy evaluation.
package validation

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/internal/errors"
)

// Window is one walk-forward fold. Ranges are half-open: a bar belongs
// to the range when its timestamp is >= the start and < the end. The
// test range starts exactly where the train range ends.
type Window struct {
	Index      int       `json:"index"`
	TrainStart time.Time `json:"train_start"`
	TrainEnd   time.Time `json:"train_end"`
	TestStart  time.Time `json:"test_start"`
	TestEnd    time.Time `json:"test_end"`
}

// Windows splits [start, end) into rolling train/test folds. Each
// window trains over train and tests over the test duration that
// follows, and consecutive windows advance by step. At least one full
// window must fit in the range.
func Windows(start, end time.Time, train, test, step time.Duration) ([]Window, error) {
	if !end.After(start) {
		return nil, errors.NewConfigError("end", "must be after start")
	}
	if train <= 0 {
		return nil, errors.NewConfigError("train", "duration must be positive")
	}
	if test <= 0 {
		return nil, errors.NewConfigError("test", "duration must be positive")
	}
	if step <= 0 {
		return nil, errors.NewConfigError("step", "duration must be positive")
	}
	if start.Add(train + test).After(end) {
		return nil, errors.NewConfigError("train", fmt.Sprintf(
			"train+test (%s) does not fit in the %s range", train+test, end.Sub(start)))
	}

	var out []Window
	for ts := start; !ts.Add(train + test).After(end); ts = ts.Add(step) {
		trainEnd := ts.Add(train)
		out = append(out, Window{
			Index:      len(out),
			TrainStart: ts,
			TrainEnd:   trainEnd,
			TestStart:  trainEnd,
			TestEnd:    trainEnd.Add(test),
		})
	}
	return out, nil
}
