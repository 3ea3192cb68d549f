// Package tracker coordinates experiment claims through an external
// work-item store, using labels and assignment on the store as a
// poor-man's distributed queue.
package tracker

import (
	"context"

	"github.com/nomadicsynth/orp/pkg/models"
)

// WorkItemStore is the capability interface over the external tracker.
// The store is shared, multi-writer, and not transactional; implementors
// provide plain CRUD primitives and the coordinator layers the claim
// protocol on top.
type WorkItemStore interface {
	// GetItem fetches a point-in-time snapshot of a work item.
	GetItem(ctx context.Context, id int) (*models.WorkItem, error)

	// ListItems returns work items in the given state carrying all of
	// the given labels.
	ListItems(ctx context.Context, state string, labels []string) ([]*models.WorkItem, error)

	// Assign sets the item's assignee.
	Assign(ctx context.Context, id int, login string) error

	// Unassign removes the login from the item's assignees. Used to
	// release an item after a lost claim race.
	Unassign(ctx context.Context, id int, login string) error

	// EnsureLabel creates the label with the given color if the store
	// does not have it yet.
	EnsureLabel(ctx context.Context, name, color string) error

	// AddLabel attaches a label to the item.
	AddLabel(ctx context.Context, id int, name string) error

	// RemoveLabel detaches a label from the item.
	RemoveLabel(ctx context.Context, id int, name string) error

	// Comment appends a comment to the item.
	Comment(ctx context.Context, id int, body string) error
}
