package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nomadicsynth/orp/pkg/models"
)

func terminalResult(id string, status models.Status) *models.ExperimentResult {
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)
	return &models.ExperimentResult{
		ExperimentID: id,
		Status:       status,
		StartTime:    start,
		EndTime:      &end,
		DeliverablesStatus: map[string]models.DeliverableStatus{
			"metrics": {
				Status:      models.DeliverableDelivered,
				Path:        "/work/output/metrics.json",
				Validated:   false,
				MissingKeys: []string{"loss"},
			},
		},
		ArtifactsPath: "/data/artifacts/" + id + "_artifacts.zip",
		Warnings:      []string{"tracker update skipped"},
		Metadata:      map[string]interface{}{"owner": "research"},
	}
}

func TestSetFor(t *testing.T) {
	if set, err := SetFor(models.StatusCompleted); err != nil || set != SetCompleted {
		t.Errorf("SetFor(completed) = %s, %v", set, err)
	}
	if set, err := SetFor(models.StatusFailed); err != nil || set != SetFailed {
		t.Errorf("SetFor(failed) = %s, %v", set, err)
	}
	if _, err := SetFor(models.StatusRunning); !errors.Is(err, ErrTransientStatus) {
		t.Errorf("SetFor(running) error = %v, want ErrTransientStatus", err)
	}
}

func TestFileStoreSaveAndGet(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	want := terminalResult("exp_20250314_090000_abcd1234", models.StatusCompleted)
	if err := st.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(st.Base(), "completed", want.ExperimentID+".json")); err != nil {
		t.Fatalf("result file not written: %v", err)
	}

	got, set, err := st.Get(want.ExperimentID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if set != SetCompleted {
		t.Errorf("set = %s, want completed", set)
	}
	if got.Status != models.StatusCompleted || got.ArtifactsPath != want.ArtifactsPath {
		t.Errorf("got = %+v", got)
	}
	metrics := got.DeliverablesStatus["metrics"]
	if len(metrics.MissingKeys) != 1 || metrics.MissingKeys[0] != "loss" {
		t.Errorf("missing keys = %v, want [loss]", metrics.MissingKeys)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("warnings = %v", got.Warnings)
	}
}

func TestFileStoreRejectsTransientResult(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	r := terminalResult("exp_running", models.StatusRunning)
	if err := st.Save(r); !errors.Is(err, ErrTransientStatus) {
		t.Errorf("Save(running) error = %v, want ErrTransientStatus", err)
	}
}

func TestFileStoreList(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	for _, r := range []*models.ExperimentResult{
		terminalResult("exp_a", models.StatusCompleted),
		terminalResult("exp_b", models.StatusCompleted),
		terminalResult("exp_c", models.StatusFailed),
	} {
		if err := st.Save(r); err != nil {
			t.Fatalf("Save(%s) error = %v", r.ExperimentID, err)
		}
	}

	completed, err := st.List(SetCompleted)
	if err != nil {
		t.Fatalf("List(completed) error = %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("got %d completed results, want 2", len(completed))
	}

	failed, err := st.List(SetFailed)
	if err != nil {
		t.Fatalf("List(failed) error = %v", err)
	}
	if len(failed) != 1 {
		t.Errorf("got %d failed results, want 1", len(failed))
	}

	queued, err := st.List(SetQueued)
	if err != nil {
		t.Fatalf("List(queue) error = %v", err)
	}
	if len(queued) != 0 {
		t.Errorf("got %d queued results, want 0", len(queued))
	}
}

func TestFileStoreAppendOnlyAcrossSets(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	// The same id filed under two sets leaves both records in place.
	if err := st.Save(terminalResult("exp_x", models.StatusFailed)); err != nil {
		t.Fatalf("Save(failed) error = %v", err)
	}
	if err := st.Save(terminalResult("exp_x", models.StatusCompleted)); err != nil {
		t.Fatalf("Save(completed) error = %v", err)
	}

	for _, set := range []ResultSet{SetCompleted, SetFailed} {
		results, err := st.List(set)
		if err != nil {
			t.Fatalf("List(%s) error = %v", set, err)
		}
		if len(results) != 1 {
			t.Errorf("%s has %d results, want 1", set, len(results))
		}
	}

	_, set, err := st.Get("exp_x")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if set != SetCompleted {
		t.Errorf("Get() set = %s, want completed to win over failed", set)
	}
}

func TestFileStoreGetNotFound(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if _, _, err := st.Get("exp_unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
