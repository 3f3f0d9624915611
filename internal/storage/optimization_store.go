package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ducminhle1904/harmonic-backtest/pkg/optimization"
)

// optimizationPrefix namespaces walk-forward run files inside the
// results directory.
const optimizationPrefix = "wf_"

// StoredOptimization wraps a walk-forward result with the config that
// produced it and its storage identity.
type StoredOptimization struct {
	ID      string              `json:"id"`
	SavedAt time.Time           `json:"saved_at"`
	Config  optimization.Config `json:"config"`
	Result  optimization.Result `json:"result"`
}

// SaveOptimization persists a walk-forward run and returns its ID.
func (s *ResultsStore) SaveOptimization(cfg optimization.Config, result *optimization.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result == nil {
		return "", fmt.Errorf("cannot save nil result")
	}

	now := time.Now().UTC()
	id := fmt.Sprintf("%s%s_%s", optimizationPrefix, cfg.Backtest.Symbol, now.Format("20060102T150405.000000000"))

	stored := StoredOptimization{
		ID:      id,
		SavedAt: now,
		Config:  cfg,
		Result:  *result,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal optimization result: %w", err)
	}

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

// GetOptimization loads a stored walk-forward run by ID.
func (s *ResultsStore) GetOptimization(id string) (*StoredOptimization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !strings.HasPrefix(id, optimizationPrefix) {
		return nil, fmt.Errorf("optimization result %s does not exist", id)
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("optimization result %s does not exist", id)
		}
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var stored StoredOptimization
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimization result %s: %w", id, err)
	}
	return &stored, nil
}

// ListOptimizations returns every stored walk-forward run, oldest
// first.
func (s *ResultsStore) ListOptimizations() ([]StoredOptimization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var out []StoredOptimization
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), optimizationPrefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		var stored StoredOptimization
		if err := json.Unmarshal(data, &stored); err != nil {
			continue
		}
		out = append(out, stored)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SavedAt.Before(out[j].SavedAt)
	})
	return out, nil
}
