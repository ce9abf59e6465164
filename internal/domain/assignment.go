package domain

import "time"

// CategoryAssignment is a proposed mapping of one bookmark to one category
// name, as produced by the upstream classifier. Immutable input to the
// synchronization engine.
type CategoryAssignment struct {
	ItemID            string `json:"item_id"`
	Title             string `json:"title"`
	URL               string `json:"url"`
	SuggestedCategory string `json:"suggested_category"`
	OriginalParentID  string `json:"original_parent_id,omitempty"`
}

// SyncRecord captures one successfully moved bookmark, including the parent
// it was moved out of so the move can be undone.
type SyncRecord struct {
	ItemID           string    `json:"item_id"`
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	Category         string    `json:"category"`
	OriginalParentID string    `json:"original_parent_id"`
	TargetParentID   string    `json:"target_parent_id"`
	Timestamp        time.Time `json:"timestamp"`
}

// SyncFailure records a bookmark that could not be moved.
type SyncFailure struct {
	ItemID    string    `json:"item_id"`
	Title     string    `json:"title"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncSkip records a bookmark that was not processed at all, e.g. because it
// vanished from the store between suggestion and sync.
type SyncSkip struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// SyncOutcome is the classified result of one synchronization run. Every
// input assignment lands in exactly one of Success, Failed, or Skipped.
type SyncOutcome struct {
	SyncID    string        `json:"sync_id"`
	Success   []SyncRecord  `json:"success"`
	Failed    []SyncFailure `json:"failed"`
	Skipped   []SyncSkip    `json:"skipped"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// Total returns the number of assignments the run classified.
func (o *SyncOutcome) Total() int {
	return len(o.Success) + len(o.Failed) + len(o.Skipped)
}

// DistinctCategories returns the unique suggested categories of a batch in
// first-seen order.
func DistinctCategories(assignments []CategoryAssignment) []string {
	seen := make(map[string]bool, len(assignments))
	var categories []string
	for _, a := range assignments {
		if a.SuggestedCategory == "" || seen[a.SuggestedCategory] {
			continue
		}
		seen[a.SuggestedCategory] = true
		categories = append(categories, a.SuggestedCategory)
	}
	return categories
}
