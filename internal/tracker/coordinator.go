package tracker

import (
	"context"
	"fmt"

	"github.com/nomadicsynth/orp/internal/logging"
)

// Status label names projected onto the work-item store, with their
// fixed colors. The labels are mutually exclusive: updating to one
// removes the others.
const (
	LabelClaimed    = "claimed"
	LabelInProgress = "in-progress"
	LabelCompleted  = "completed"
	LabelFailed     = "failed"

	// LabelExperiment marks work items that are runnable experiments.
	LabelExperiment = "experiment"
)

// statusLabels is the fixed, mutually-exclusive status label set.
var statusLabels = []string{LabelClaimed, LabelInProgress, LabelCompleted, LabelFailed}

// labelColors maps status labels to their creation colors.
var labelColors = map[string]string{
	LabelClaimed:    "FFA500",
	LabelInProgress: "FFFF00",
	LabelCompleted:  "00FF00",
	LabelFailed:     "FF0000",
	LabelExperiment: "0075CA",
}

// LabelColor returns the fixed color for a status label, defaulting to
// black for unknown labels.
func LabelColor(name string) string {
	if c, ok := labelColors[name]; ok {
		return c
	}
	return "000000"
}

// Coordinator implements the optimistic claim protocol over a work-item
// store. The check-then-assign sequence has an inherent race window, so
// a claim is confirmed by re-reading the item and verifying that the
// claimant ended up as the assignee of record; losing the race releases
// the claim.
type Coordinator struct {
	store WorkItemStore
	log   *logging.DebugLogger
}

// NewCoordinator creates a Coordinator over the given store.
func NewCoordinator(store WorkItemStore, log *logging.DebugLogger) *Coordinator {
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{store: store, log: log}
}

// Claim attempts to take ownership of the work item for claimant.
//
// Returns true only when the assignment was verified and the claimed
// label and audit comment were applied. Store failures after a verified
// assignment are not rolled back: the assignment stands, the claim is
// reported as not fully succeeded, and the cause is logged.
func (c *Coordinator) Claim(ctx context.Context, id int, claimant string) bool {
	item, err := c.store.GetItem(ctx, id)
	if err != nil {
		c.log.Log("claim %d: fetch work item: %v", id, err)
		return false
	}
	if item.Claimed() {
		c.log.Log("claim %d: already assigned to %s", id, item.Assignee)
		return false
	}

	if err := c.store.Assign(ctx, id, claimant); err != nil {
		c.log.Log("claim %d: assign %s: %v", id, claimant, err)
		return false
	}

	// The store is eventually consistent and last-write-wins, so the
	// only at-most-one-claimant guarantee comes from re-reading and
	// confirming we are the assignee of record.
	after, err := c.store.GetItem(ctx, id)
	if err != nil {
		c.log.Log("claim %d: verify assignment: %v", id, err)
		c.release(ctx, id, claimant)
		return false
	}
	if after.Assignee != claimant {
		c.log.Log("claim %d: lost race to %s", id, after.Assignee)
		return false
	}

	if err := c.store.EnsureLabel(ctx, LabelClaimed, LabelColor(LabelClaimed)); err != nil {
		c.log.Log("claim %d: ensure claimed label: %v", id, err)
		return false
	}
	if err := c.store.AddLabel(ctx, id, LabelClaimed); err != nil {
		c.log.Log("claim %d: add claimed label: %v", id, err)
		return false
	}
	if err := c.store.Comment(ctx, id, fmt.Sprintf("Experiment claimed by @%s", claimant)); err != nil {
		c.log.Log("claim %d: add claim comment: %v", id, err)
		return false
	}

	c.log.Log("claim %d: claimed by %s", id, claimant)
	return true
}

// release best-effort removes the claimant's assignment after a failed
// verification. Failures are logged and swallowed.
func (c *Coordinator) release(ctx context.Context, id int, claimant string) {
	if err := c.store.Unassign(ctx, id, claimant); err != nil {
		c.log.Log("claim %d: release assignment: %v", id, err)
	}
}

// UpdateStatus projects a run's state onto the work item: any status
// label currently on the item is removed, the label for status is added
// (created with its fixed color if absent), and an optional comment is
// appended. Each failure is reported so callers can record the degraded
// outcome, but a status update never blocks the run's own result.
func (c *Coordinator) UpdateStatus(ctx context.Context, id int, status string, comment string) error {
	item, err := c.store.GetItem(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch work item %d: %w", id, err)
	}

	for _, label := range statusLabels {
		if label == status || !item.HasLabel(label) {
			continue
		}
		if err := c.store.RemoveLabel(ctx, id, label); err != nil {
			return fmt.Errorf("remove label %s from %d: %w", label, id, err)
		}
	}

	if err := c.store.EnsureLabel(ctx, status, LabelColor(status)); err != nil {
		return fmt.Errorf("ensure label %s: %w", status, err)
	}
	if !item.HasLabel(status) {
		if err := c.store.AddLabel(ctx, id, status); err != nil {
			return fmt.Errorf("add label %s to %d: %w", status, id, err)
		}
	}

	if comment != "" {
		if err := c.store.Comment(ctx, id, comment); err != nil {
			return fmt.Errorf("comment on %d: %w", id, err)
		}
	}
	return nil
}

// Comment appends a comment to the work item.
func (c *Coordinator) Comment(ctx context.Context, id int, body string) error {
	if err := c.store.Comment(ctx, id, body); err != nil {
		return fmt.Errorf("comment on %d: %w", id, err)
	}
	return nil
}
