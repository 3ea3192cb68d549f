package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nomadicsynth/orp/pkg/models"
)

// FileStore files results as one JSON document per experiment under
// <base>/{queue,completed,failed}/<experiment_id>.json. Saves are
// append-only: a second save of the same id into a different set leaves
// both files in place.
type FileStore struct {
	base string
}

// NewFileStore creates a filesystem-backed store rooted at base and
// eagerly creates the result set directories. Creation is idempotent.
func NewFileStore(base string) (*FileStore, error) {
	for _, set := range Sets {
		if err := os.MkdirAll(filepath.Join(base, string(set)), 0755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", set, err)
		}
	}
	return &FileStore{base: base}, nil
}

// Base returns the store's root directory.
func (s *FileStore) Base() string {
	return s.base
}

// Save writes the result to <base>/<set>/<experiment_id>.json.
func (s *FileStore) Save(result *models.ExperimentResult) error {
	set, err := SetFor(result.Status)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result %s: %w", result.ExperimentID, err)
	}

	path := filepath.Join(s.base, string(set), result.ExperimentID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write result %s: %w", result.ExperimentID, err)
	}
	return nil
}

// List reads every result filed under the given set.
func (s *FileStore) List(set ResultSet) ([]*models.ExperimentResult, error) {
	dir := filepath.Join(s.base, string(set))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s directory: %w", set, err)
	}

	var results []*models.ExperimentResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read result %s: %w", entry.Name(), err)
		}
		var r models.ExperimentResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", entry.Name(), err)
		}
		results = append(results, &r)
	}
	return results, nil
}

// Get searches all result sets for the experiment id.
func (s *FileStore) Get(experimentID string) (*models.ExperimentResult, ResultSet, error) {
	for _, set := range Sets {
		path := filepath.Join(s.base, string(set), experimentID+".json")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("read result %s: %w", experimentID, err)
		}
		var r models.ExperimentResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, "", fmt.Errorf("decode result %s: %w", experimentID, err)
		}
		return &r, set, nil
	}
	return nil, "", ErrNotFound
}

// Verify FileStore implements ResultStore at compile time.
var _ ResultStore = (*FileStore)(nil)
