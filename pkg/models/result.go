package models

import "time"

// Status represents the lifecycle state of an experiment run.
type Status string

const (
	// StatusRunning indicates the run is in progress. It is transient,
	// in-memory state and is never persisted as a terminal status.
	StatusRunning Status = "running"
	// StatusCompleted indicates the run finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the run terminated with an error.
	StatusFailed Status = "failed"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DeliverableState is the per-deliverable outcome of validation.
type DeliverableState string

const (
	// DeliverableDelivered means the deliverable was found.
	DeliverableDelivered DeliverableState = "delivered"
	// DeliverableMissing means the deliverable was not found, or a
	// structured deliverable had an unrecognized extension.
	DeliverableMissing DeliverableState = "missing"
	// DeliverableError means the deliverable exists but could not be
	// parsed for key validation.
	DeliverableError DeliverableState = "error"
)

// DeliverableStatus records the validation outcome for one deliverable.
type DeliverableStatus struct {
	// Status is the delivery state.
	Status DeliverableState `json:"status"`
	// Path is the resolved path that was checked.
	Path string `json:"path"`
	// Validated is true when the deliverable passed its validation rule.
	Validated bool `json:"validated"`
	// MissingKeys lists required keys absent from a contains_keys
	// deliverable, in required-key order.
	MissingKeys []string `json:"missing_keys,omitempty"`
	// Error holds the parse failure message for error-state deliverables.
	Error string `json:"error,omitempty"`
}

// ExperimentResult is the durable record of one experiment run. It is
// created in running status at orchestration start, transitions exactly
// once into a terminal status, and is write-once thereafter.
type ExperimentResult struct {
	// ExperimentID uniquely identifies this run.
	ExperimentID string `json:"experiment_id"`
	// Status is the run's lifecycle state.
	Status Status `json:"status"`
	// StartTime is when orchestration began.
	StartTime time.Time `json:"start_time"`
	// EndTime is when the run reached a terminal status. Absent while
	// the run is in progress.
	EndTime *time.Time `json:"end_time,omitempty"`
	// DeliverablesStatus maps deliverable type to its validation outcome.
	DeliverablesStatus map[string]DeliverableStatus `json:"deliverables_status,omitempty"`
	// ErrorMessage is set only when the run failed.
	ErrorMessage string `json:"error_message,omitempty"`
	// ArtifactsPath points at the packaged archive when packaging
	// succeeded, including on the failure path when logs were preserved.
	ArtifactsPath string `json:"artifacts_path,omitempty"`
	// StdoutRef locates the captured stdout inside the archive, in the
	// form "<archive_path>::<entry_name>". Set only when the log exists.
	StdoutRef string `json:"stdout_ref,omitempty"`
	// StderrRef locates the captured stderr inside the archive.
	StderrRef string `json:"stderr_ref,omitempty"`
	// Warnings records best-effort steps that failed without changing
	// the run's terminal status (packaging on the failure path, tracker
	// updates), so partial success is observable.
	Warnings []string `json:"warnings,omitempty"`
	// Metadata is the opaque metadata carried over from the config.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Warn appends a degraded-outcome warning to the result.
func (r *ExperimentResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
