// Package runner orchestrates a single experiment run: supervise the
// training command, validate deliverables, package artifacts, and record
// a durable result.
package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nomadicsynth/orp/internal/experiment"
	"github.com/nomadicsynth/orp/internal/logging"
	"github.com/nomadicsynth/orp/internal/store"
	"github.com/nomadicsynth/orp/pkg/models"
)

// Runner executes experiments inside scoped scratch directories and
// files their results with the configured result store.
//
// Execution is synchronous: one orchestration runs to completion before
// the next begins, and the scratch directory is exclusively owned by one
// run for its lifetime.
type Runner struct {
	baseDir      string
	artifactsDir string
	workRoot     string
	store        store.ResultStore
	log          *logging.DebugLogger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithWorkRoot places scratch working directories under dir instead of
// the system temp directory. Mainly used by tests.
func WithWorkRoot(dir string) Option {
	return func(r *Runner) { r.workRoot = dir }
}

// WithLogger attaches a debug logger.
func WithLogger(log *logging.DebugLogger) Option {
	return func(r *Runner) { r.log = log }
}

// New creates a Runner rooted at baseDir and eagerly creates the
// pipeline directory layout (queue, completed, failed, artifacts).
// Creation is idempotent.
func New(baseDir string, st store.ResultStore, opts ...Option) (*Runner, error) {
	for _, dir := range []string{"queue", "completed", "failed", "artifacts"} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", dir, err)
		}
	}

	r := &Runner{
		baseDir:      baseDir,
		artifactsDir: filepath.Join(baseDir, "artifacts"),
		store:        st,
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// BaseDir returns the pipeline's base directory.
func (r *Runner) BaseDir() string {
	return r.baseDir
}

// NewExperimentID generates a run identifier. The timestamp prefix keeps
// ids sortable and human-readable; the random suffix removes the
// collision window of a purely time-derived token.
func NewExperimentID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("exp_%s_%s", now.Format("20060102_150405"), suffix)
}

// Run executes one experiment and returns its terminal result. Run never
// returns an error: every failure is encoded in the result's status and
// error message, with logs preserved in the archive when packaging
// succeeded. The scratch working directory is deleted on every exit
// path; deletion failures never mask the primary result.
func (r *Runner) Run(cfg *models.ExperimentConfig) *models.ExperimentResult {
	start := time.Now()
	result := &models.ExperimentResult{
		ExperimentID: NewExperimentID(start),
		Status:       models.StatusRunning,
		StartTime:    start,
		Metadata:     cfg.Metadata,
	}

	r.log.Log("starting experiment %s (%s)", result.ExperimentID, cfg.Name)

	workDir, err := os.MkdirTemp(r.workRoot, "orp-run-")
	if err != nil {
		r.fail(result, fmt.Errorf("allocate working directory: %w", err))
		return result
	}
	defer os.RemoveAll(workDir)

	if err := cfg.Validate(); err != nil {
		// Config errors are raised before any subprocess spawns.
		r.failWithLogs(result, err, cfg.Deliverables, workDir)
		return result
	}

	command := experiment.RenderCommand(cfg)
	r.log.Log("experiment %s: running %q in %s", result.ExperimentID, strings.Join(command, " "), workDir)

	if err := superviseCommand(command, workDir); err != nil {
		r.failWithLogs(result, err, cfg.Deliverables, workDir)
		return result
	}

	result.DeliverablesStatus = validateDeliverables(cfg.Deliverables, workDir)

	archivePath, err := packageArtifacts(r.artifactsDir, result.ExperimentID, cfg.Deliverables, workDir)
	if err != nil {
		// Packaging is fatal on the success path, but one more
		// best-effort attempt is made to preserve the logs.
		r.failWithLogs(result, fmt.Errorf("package artifacts: %w", err), cfg.Deliverables, workDir)
		return result
	}

	result.ArtifactsPath = archivePath
	r.setLogRefs(result, workDir)

	end := time.Now()
	result.Status = models.StatusCompleted
	result.EndTime = &end
	r.log.Log("experiment %s completed", result.ExperimentID)
	return result
}

// Execute runs the experiment and files the terminal result with the
// result store. The returned error covers persistence only; the run
// outcome itself is always in the result.
func (r *Runner) Execute(cfg *models.ExperimentConfig) (*models.ExperimentResult, error) {
	result := r.Run(cfg)
	if err := r.store.Save(result); err != nil {
		return result, fmt.Errorf("save result %s: %w", result.ExperimentID, err)
	}
	r.log.Log("experiment %s result filed as %s", result.ExperimentID, result.Status)
	return result, nil
}

// fail transitions the result to its terminal failed status.
func (r *Runner) fail(result *models.ExperimentResult, cause error) {
	end := time.Now()
	result.Status = models.StatusFailed
	result.EndTime = &end
	result.ErrorMessage = cause.Error()
	r.log.Log("experiment %s failed: %v", result.ExperimentID, cause)
}

// failWithLogs fails the result after a best-effort packaging pass so
// partial outputs and captured logs survive the run. A packaging failure
// here is recorded as a warning rather than masking the original error.
// When the run produced nothing worth keeping, no archive is created.
func (r *Runner) failWithLogs(result *models.ExperimentResult, cause error, deliverables []models.Deliverable, workDir string) {
	if !anythingToPackage(deliverables, workDir) {
		r.fail(result, cause)
		return
	}

	archivePath, err := packageArtifacts(r.artifactsDir, result.ExperimentID, deliverables, workDir)
	if err != nil {
		result.Warn(fmt.Sprintf("packaging logs after failure: %v", err))
	} else {
		result.ArtifactsPath = archivePath
		r.setLogRefs(result, workDir)
	}
	r.fail(result, cause)
}

// anythingToPackage reports whether a best-effort archive would have at
// least one entry: a captured log or a partially produced deliverable.
func anythingToPackage(deliverables []models.Deliverable, workDir string) bool {
	if pathExists(filepath.Join(workDir, StdoutFileName)) || pathExists(filepath.Join(workDir, StderrFileName)) {
		return true
	}
	for _, d := range deliverables {
		if pathExists(filepath.Join(workDir, d.Path)) {
			return true
		}
	}
	return false
}

// setLogRefs records archive-qualified locators for whichever log files
// the run produced.
func (r *Runner) setLogRefs(result *models.ExperimentResult, workDir string) {
	if result.ArtifactsPath == "" {
		return
	}
	if pathExists(filepath.Join(workDir, StdoutFileName)) {
		result.StdoutRef = ArchiveRef(result.ArtifactsPath, StdoutFileName)
	}
	if pathExists(filepath.Join(workDir, StderrFileName)) {
		result.StderrRef = ArchiveRef(result.ArtifactsPath, StderrFileName)
	}
}
