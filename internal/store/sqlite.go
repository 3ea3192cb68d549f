package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nomadicsynth/orp/pkg/models"
)

// SQLiteStore files results in an SQLite database. It implements the
// same append-only semantics as the filesystem store: the primary key is
// (experiment_id, result_set), so the same id can appear in both the
// completed and failed sets.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens (creating if necessary) the results database at path.
// WAL mode is enabled for concurrent reads.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			experiment_id TEXT NOT NULL,
			result_set TEXT NOT NULL,
			status TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT,
			deliverables TEXT,
			error_message TEXT,
			artifacts_path TEXT,
			stdout_ref TEXT,
			stderr_ref TEXT,
			warnings TEXT,
			metadata TEXT,
			PRIMARY KEY (experiment_id, result_set)
		)
	`)
	if err != nil {
		return fmt.Errorf("create results table: %w", err)
	}
	return nil
}

// Save inserts the result into the set matching its status.
func (s *SQLiteStore) Save(result *models.ExperimentResult) error {
	set, err := SetFor(result.Status)
	if err != nil {
		return err
	}

	deliverables, err := json.Marshal(result.DeliverablesStatus)
	if err != nil {
		return fmt.Errorf("encode deliverables for %s: %w", result.ExperimentID, err)
	}
	warnings, err := json.Marshal(result.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings for %s: %w", result.ExperimentID, err)
	}
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", result.ExperimentID, err)
	}

	var endTime string
	if result.EndTime != nil {
		endTime = result.EndTime.Format(time.RFC3339Nano)
	}

	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO results
			(experiment_id, result_set, status, start_time, end_time,
			 deliverables, error_message, artifacts_path, stdout_ref, stderr_ref,
			 warnings, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.ExperimentID, string(set), string(result.Status),
		result.StartTime.Format(time.RFC3339Nano), endTime,
		string(deliverables), result.ErrorMessage, result.ArtifactsPath,
		result.StdoutRef, result.StderrRef, string(warnings), string(metadata))
	if err != nil {
		return fmt.Errorf("save result %s: %w", result.ExperimentID, err)
	}
	return nil
}

// List returns every result filed under the given set, ordered by start
// time so the timestamped ids come back chronologically.
func (s *SQLiteStore) List(set ResultSet) ([]*models.ExperimentResult, error) {
	rows, err := s.conn.Query(`
		SELECT experiment_id, status, start_time, end_time, deliverables,
		       error_message, artifacts_path, stdout_ref, stderr_ref, warnings, metadata
		FROM results WHERE result_set = ? ORDER BY start_time
	`, string(set))
	if err != nil {
		return nil, fmt.Errorf("list %s results: %w", set, err)
	}
	defer rows.Close()

	var results []*models.ExperimentResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Get looks up a result by id, searching the sets in their fixed order
// so an id filed under more than one set resolves the same way as the
// filesystem store.
func (s *SQLiteStore) Get(experimentID string) (*models.ExperimentResult, ResultSet, error) {
	for _, set := range Sets {
		row := s.conn.QueryRow(`
			SELECT experiment_id, status, start_time, end_time, deliverables,
			       error_message, artifacts_path, stdout_ref, stderr_ref, warnings, metadata
			FROM results WHERE experiment_id = ? AND result_set = ?
		`, experimentID, string(set))

		r, err := scanResult(row)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("get result %s: %w", experimentID, err)
		}
		return r, set, nil
	}
	return nil, "", ErrNotFound
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*models.ExperimentResult, error) {
	var (
		r           models.ExperimentResult
		startTime   string
		endTime     sql.NullString
		deliverable sql.NullString
		warnings    sql.NullString
		metadata    sql.NullString
	)
	err := row.Scan(&r.ExperimentID, &r.Status, &startTime, &endTime, &deliverable,
		&r.ErrorMessage, &r.ArtifactsPath, &r.StdoutRef, &r.StderrRef, &warnings, &metadata)
	if err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}
	if err := fillResult(&r, startTime, endTime, deliverable, warnings, metadata); err != nil {
		return nil, err
	}
	return &r, nil
}

func fillResult(r *models.ExperimentResult, startTime string, endTime, deliverables, warnings, metadata sql.NullString) error {
	t, err := time.Parse(time.RFC3339Nano, startTime)
	if err != nil {
		return fmt.Errorf("parse start time for %s: %w", r.ExperimentID, err)
	}
	r.StartTime = t

	if endTime.Valid && endTime.String != "" {
		et, err := time.Parse(time.RFC3339Nano, endTime.String)
		if err != nil {
			return fmt.Errorf("parse end time for %s: %w", r.ExperimentID, err)
		}
		r.EndTime = &et
	}

	if deliverables.Valid && deliverables.String != "" && deliverables.String != "null" {
		if err := json.Unmarshal([]byte(deliverables.String), &r.DeliverablesStatus); err != nil {
			return fmt.Errorf("decode deliverables for %s: %w", r.ExperimentID, err)
		}
	}
	if warnings.Valid && warnings.String != "" && warnings.String != "null" {
		if err := json.Unmarshal([]byte(warnings.String), &r.Warnings); err != nil {
			return fmt.Errorf("decode warnings for %s: %w", r.ExperimentID, err)
		}
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &r.Metadata); err != nil {
			return fmt.Errorf("decode metadata for %s: %w", r.ExperimentID, err)
		}
	}
	return nil
}

// Verify SQLiteStore implements ResultStore at compile time.
var _ ResultStore = (*SQLiteStore)(nil)
