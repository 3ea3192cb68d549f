package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nomadicsynth/orp/pkg/models"
)

// fakeStore is an in-memory WorkItemStore with per-operation fault
// injection and an optional hook between assign and verification to
// simulate a concurrent claimant.
type fakeStore struct {
	items    map[int]*models.WorkItem
	labels   map[string]string
	comments map[int][]string

	failAssign  error
	failGet     error
	failGetN    int // fail GetItem only on the Nth call (1-based)
	failAdd     error
	failComment error

	getCalls    int
	afterAssign func()
}

func newFakeStore(items ...*models.WorkItem) *fakeStore {
	s := &fakeStore{
		items:    make(map[int]*models.WorkItem),
		labels:   make(map[string]string),
		comments: make(map[int][]string),
	}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func (s *fakeStore) GetItem(ctx context.Context, id int) (*models.WorkItem, error) {
	s.getCalls++
	if s.failGet != nil && (s.failGetN == 0 || s.failGetN == s.getCalls) {
		return nil, s.failGet
	}
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("work item %d not found", id)
	}
	snapshot := *item
	snapshot.Labels = append([]string(nil), item.Labels...)
	return &snapshot, nil
}

func (s *fakeStore) ListItems(ctx context.Context, state string, labels []string) ([]*models.WorkItem, error) {
	var out []*models.WorkItem
	for _, item := range s.items {
		if state != "" && state != "all" && item.State != state {
			continue
		}
		match := true
		for _, l := range labels {
			if !item.HasLabel(l) {
				match = false
				break
			}
		}
		if match {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *fakeStore) Assign(ctx context.Context, id int, login string) error {
	if s.failAssign != nil {
		return s.failAssign
	}
	s.items[id].Assignee = login
	if s.afterAssign != nil {
		s.afterAssign()
	}
	return nil
}

func (s *fakeStore) Unassign(ctx context.Context, id int, login string) error {
	if s.items[id].Assignee == login {
		s.items[id].Assignee = ""
	}
	return nil
}

func (s *fakeStore) EnsureLabel(ctx context.Context, name, color string) error {
	if _, ok := s.labels[name]; !ok {
		s.labels[name] = color
	}
	return nil
}

func (s *fakeStore) AddLabel(ctx context.Context, id int, name string) error {
	if s.failAdd != nil {
		return s.failAdd
	}
	item := s.items[id]
	if !item.HasLabel(name) {
		item.Labels = append(item.Labels, name)
	}
	return nil
}

func (s *fakeStore) RemoveLabel(ctx context.Context, id int, name string) error {
	item := s.items[id]
	var kept []string
	for _, l := range item.Labels {
		if l != name {
			kept = append(kept, l)
		}
	}
	item.Labels = kept
	return nil
}

func (s *fakeStore) Comment(ctx context.Context, id int, body string) error {
	if s.failComment != nil {
		return s.failComment
	}
	s.comments[id] = append(s.comments[id], body)
	return nil
}

var _ WorkItemStore = (*fakeStore)(nil)

func experimentItem(id int) *models.WorkItem {
	return &models.WorkItem{
		ID:     id,
		Title:  "Baseline sweep",
		Labels: []string{LabelExperiment},
		State:  "open",
	}
}

func TestClaimSuccess(t *testing.T) {
	st := newFakeStore(experimentItem(7))
	c := NewCoordinator(st, nil)

	if !c.Claim(context.Background(), 7, "worker-1") {
		t.Fatal("expected claim to succeed")
	}

	item := st.items[7]
	if item.Assignee != "worker-1" {
		t.Errorf("assignee = %q, want worker-1", item.Assignee)
	}
	if !item.HasLabel(LabelClaimed) {
		t.Error("claimed label not applied")
	}
	if st.labels[LabelClaimed] != LabelColor(LabelClaimed) {
		t.Errorf("label color = %q", st.labels[LabelClaimed])
	}
	if len(st.comments[7]) != 1 || st.comments[7][0] != "Experiment claimed by @worker-1" {
		t.Errorf("comments = %v", st.comments[7])
	}
}

func TestClaimAlreadyAssigned(t *testing.T) {
	item := experimentItem(7)
	item.Assignee = "other-worker"
	st := newFakeStore(item)
	c := NewCoordinator(st, nil)

	if c.Claim(context.Background(), 7, "worker-1") {
		t.Fatal("expected claim of an assigned item to fail")
	}
	if st.items[7].Assignee != "other-worker" {
		t.Errorf("assignee = %q, existing claim must stand", st.items[7].Assignee)
	}
}

func TestClaimLostRace(t *testing.T) {
	st := newFakeStore(experimentItem(7))
	// A second claimant wins between our assign and our verification.
	st.afterAssign = func() {
		st.items[7].Assignee = "worker-2"
	}
	c := NewCoordinator(st, nil)

	if c.Claim(context.Background(), 7, "worker-1") {
		t.Fatal("expected a lost race to be reported as failure")
	}
	if st.items[7].HasLabel(LabelClaimed) {
		t.Error("loser must not apply the claimed label")
	}
	if st.items[7].Assignee != "worker-2" {
		t.Errorf("assignee = %q, winner must keep the claim", st.items[7].Assignee)
	}
}

func TestClaimVerifyErrorReleasesAssignment(t *testing.T) {
	st := newFakeStore(experimentItem(7))
	st.failGet = errors.New("store unavailable")
	st.failGetN = 2 // first read succeeds, verification read fails
	c := NewCoordinator(st, nil)

	if c.Claim(context.Background(), 7, "worker-1") {
		t.Fatal("expected claim to fail when verification errors")
	}
	if st.items[7].Assignee != "" {
		t.Errorf("assignee = %q, unverifiable claim must be released", st.items[7].Assignee)
	}
}

func TestClaimLabelFailureLeavesAssignment(t *testing.T) {
	st := newFakeStore(experimentItem(7))
	st.failAdd = errors.New("label service down")
	c := NewCoordinator(st, nil)

	if c.Claim(context.Background(), 7, "worker-1") {
		t.Fatal("expected claim to report failure")
	}
	// Post-verification failures are not rolled back.
	if st.items[7].Assignee != "worker-1" {
		t.Errorf("assignee = %q, verified assignment must stand", st.items[7].Assignee)
	}
}

func TestClaimCommentFailureLeavesAssignment(t *testing.T) {
	st := newFakeStore(experimentItem(7))
	st.failComment = errors.New("comments disabled")
	c := NewCoordinator(st, nil)

	if c.Claim(context.Background(), 7, "worker-1") {
		t.Fatal("expected claim to report failure")
	}
	if st.items[7].Assignee != "worker-1" {
		t.Errorf("assignee = %q, verified assignment must stand", st.items[7].Assignee)
	}
	if !st.items[7].HasLabel(LabelClaimed) {
		t.Error("label applied before the comment failure must stand")
	}
}

func TestUpdateStatusSwapsLabels(t *testing.T) {
	item := experimentItem(7)
	item.Labels = append(item.Labels, LabelClaimed, LabelInProgress)
	st := newFakeStore(item)
	c := NewCoordinator(st, nil)

	if err := c.UpdateStatus(context.Background(), 7, LabelCompleted, "Experiment exp_1 completed"); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got := st.items[7]
	if !got.HasLabel(LabelCompleted) {
		t.Error("completed label not applied")
	}
	for _, stale := range []string{LabelClaimed, LabelInProgress, LabelFailed} {
		if got.HasLabel(stale) {
			t.Errorf("stale status label %s still present", stale)
		}
	}
	if !got.HasLabel(LabelExperiment) {
		t.Error("non-status labels must be untouched")
	}
	if len(st.comments[7]) != 1 {
		t.Errorf("comments = %v", st.comments[7])
	}
}

func TestUpdateStatusIdempotent(t *testing.T) {
	item := experimentItem(7)
	item.Labels = append(item.Labels, LabelInProgress)
	st := newFakeStore(item)
	c := NewCoordinator(st, nil)

	if err := c.UpdateStatus(context.Background(), 7, LabelInProgress, ""); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	count := 0
	for _, l := range st.items[7].Labels {
		if l == LabelInProgress {
			count++
		}
	}
	if count != 1 {
		t.Errorf("in-progress label appears %d times, want 1", count)
	}
}

func TestUpdateStatusNoComment(t *testing.T) {
	st := newFakeStore(experimentItem(7))
	c := NewCoordinator(st, nil)

	if err := c.UpdateStatus(context.Background(), 7, LabelFailed, ""); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if len(st.comments[7]) != 0 {
		t.Errorf("comments = %v, want none", st.comments[7])
	}
}

func TestLabelColor(t *testing.T) {
	if got := LabelColor(LabelCompleted); got != "00FF00" {
		t.Errorf("LabelColor(completed) = %q", got)
	}
	if got := LabelColor("made-up"); got != "000000" {
		t.Errorf("LabelColor(unknown) = %q", got)
	}
}
