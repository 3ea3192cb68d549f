package models

// WorkItem is an externally stored unit of requested work, typically an
// issue on the tracker. The external store is authoritative: a WorkItem
// is a point-in-time snapshot and is never cached across calls.
type WorkItem struct {
	// ID is the tracker's identifier for the item (issue number).
	ID int `json:"id"`
	// Title is the item's title.
	Title string `json:"title"`
	// Body is the free-text body, which may embed a metadata block
	// between marker lines.
	Body string `json:"body"`
	// Labels are the label names currently attached to the item.
	Labels []string `json:"labels"`
	// Assignee is the login of the current assignee, empty if unassigned.
	Assignee string `json:"assignee,omitempty"`
	// State is the item's open/closed state.
	State string `json:"state"`
}

// HasLabel reports whether the item carries the named label.
func (w *WorkItem) HasLabel(name string) bool {
	for _, l := range w.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Claimed reports whether the item already has an assignee.
func (w *WorkItem) Claimed() bool {
	return w.Assignee != ""
}
