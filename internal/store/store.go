// Package store persists experiment results into named result sets.
//
// The store is a capability interface so the filesystem layout required
// by the pipeline can later be swapped for a database without touching
// the orchestrator. Both backends share the same semantics: results are
// write-once, filed under exactly one result set, and a transient
// (running) result is never accepted.
package store

import (
	"errors"
	"fmt"

	"github.com/nomadicsynth/orp/pkg/models"
)

// ResultSet names one of the categories a result can be filed under.
type ResultSet string

const (
	// SetQueued holds not-yet-started work. Nothing in the pipeline
	// writes here; it exists as the intake location for the watcher.
	SetQueued ResultSet = "queue"
	// SetCompleted holds results of successful runs.
	SetCompleted ResultSet = "completed"
	// SetFailed holds results of failed runs.
	SetFailed ResultSet = "failed"
)

// Sets lists all result sets in display order.
var Sets = []ResultSet{SetQueued, SetCompleted, SetFailed}

// ErrTransientStatus is returned when a caller tries to persist a result
// that has not reached a terminal status.
var ErrTransientStatus = errors.New("running results are in-memory only and cannot be persisted")

// ErrNotFound is returned by Get when no result matches the id.
var ErrNotFound = errors.New("experiment result not found")

// SetFor maps a terminal status to its result set.
func SetFor(status models.Status) (ResultSet, error) {
	switch status {
	case models.StatusCompleted:
		return SetCompleted, nil
	case models.StatusFailed:
		return SetFailed, nil
	default:
		return "", fmt.Errorf("status %q: %w", status, ErrTransientStatus)
	}
}

// ResultStore persists terminal experiment results.
type ResultStore interface {
	// Save files the result under the set matching its status.
	// Saving a non-terminal result is an error.
	Save(result *models.ExperimentResult) error

	// List returns all results filed under the given set.
	List(set ResultSet) ([]*models.ExperimentResult, error)

	// Get looks up a result by experiment id across all sets and
	// reports which set it was found in. Returns ErrNotFound when the
	// id is unknown.
	Get(experimentID string) (*models.ExperimentResult, ResultSet, error)
}
