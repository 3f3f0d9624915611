// Package storage persists backtest results as JSON files so runs can
// be compared and re-ranked without re-running them.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
)

// StoredResult wraps a backtest result with its storage identity.
type StoredResult struct {
	ID      string           `json:"id"`
	SavedAt time.Time        `json:"saved_at"`
	Result  backtest.Result  `json:"result"`
}

// ResultsStore is a file-backed store of backtest results, one JSON
// file per run.
type ResultsStore struct {
	mu  sync.RWMutex
	dir string
}

// NewResultsStore creates a store rooted at dir, creating it if
// needed.
func NewResultsStore(dir string) (*ResultsStore, error) {
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &ResultsStore{dir: dir}, nil
}

// Save persists a result and returns its generated ID.
func (s *ResultsStore) Save(result *backtest.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result == nil {
		return "", fmt.Errorf("cannot save nil result")
	}

	now := time.Now().UTC()
	id := fmt.Sprintf("%s_%s", result.Config.Symbol, now.Format("20060102T150405.000000000"))

	stored := StoredResult{
		ID:      id,
		SavedAt: now,
		Result:  *result,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity.
	path := s.path(id)
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write temporary result file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to commit result file: %w", err)
	}

	return id, nil
}

// Get loads a stored result by ID.
func (s *ResultsStore) Get(id string) (*StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("result %s does not exist", id)
		}
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var stored StoredResult
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result %s: %w", id, err)
	}
	return &stored, nil
}

// List returns every stored result, oldest first.
func (s *ResultsStore) List() ([]StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var out []StoredResult
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		// Walk-forward runs live in the same directory under a wf_
		// prefix and have their own listing.
		if strings.HasPrefix(e.Name(), optimizationPrefix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		var stored StoredResult
		if err := json.Unmarshal(data, &stored); err != nil {
			// Skip files that are not results.
			continue
		}
		out = append(out, stored)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SavedAt.Before(out[j].SavedAt)
	})
	return out, nil
}

// ListBySymbol returns the stored results for one symbol, oldest
// first.
func (s *ResultsStore) ListBySymbol(symbol string) ([]StoredResult, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var out []StoredResult
	for _, r := range all {
		if r.Result.Config.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out, nil
}

// rankings maps metric names to a score where higher is better.
var rankings = map[string]func(backtest.Metrics) float64{
	"total_pnl":     func(m backtest.Metrics) float64 { return m.TotalPnL },
	"win_rate":      func(m backtest.Metrics) float64 { return m.WinRate },
	"profit_factor": func(m backtest.Metrics) float64 { return m.ProfitFactor },
	"sharpe_ratio":  func(m backtest.Metrics) float64 { return m.SharpeRatio },
	"expectancy":    func(m backtest.Metrics) float64 { return m.Expectancy },
	"max_drawdown":  func(m backtest.Metrics) float64 { return -m.MaxDrawdown },
}

// Best returns the stored result ranked highest by the named metric
// (max_drawdown ranks lower values first). It errors on an unknown
// metric or an empty store.
func (s *ResultsStore) Best(metric string) (*StoredResult, error) {
	score, ok := rankings[metric]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	all, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no stored results")
	}

	best := 0
	for i := 1; i < len(all); i++ {
		if score(all[i].Result.Metrics) > score(all[best].Result.Metrics) {
			best = i
		}
	}
	return &all[best], nil
}

// Delete removes a stored result.
func (s *ResultsStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("result %s does not exist", id)
		}
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

func (s *ResultsStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
