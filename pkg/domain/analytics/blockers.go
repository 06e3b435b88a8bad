package analytics

import (
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Blocker reasons inferred from tag keywords.
const (
	ReasonWaiting     = "Waiting for dependencies"
	ReasonApproval    = "Pending approval"
	ReasonResource    = "Resource constraints"
	ReasonTechnical   = "Technical blocker"
	ReasonUnspecified = "Unspecified blocker"
)

// Blocker is a non-terminal work item flagged as blocked.
type Blocker struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Assignee    string         `json:"assignee"`
	State       workitem.State `json:"state"`
	Reason      string         `json:"reason"`
	DaysBlocked int            `json:"days_blocked"`
}

// DetectBlockers returns every item tagged blocked or blocker whose state is
// not terminal, in first-seen order. DaysBlocked counts whole days since the
// item last changed.
func DetectBlockers(items []workitem.WorkItem, now time.Time) []Blocker {
	var blockers []Blocker
	for _, item := range items {
		if item.State.IsTerminal() {
			continue
		}
		if !item.HasAnyTag(workitem.TagBlocked, workitem.TagBlocker) {
			continue
		}
		blockers = append(blockers, Blocker{
			ID:          item.ID,
			Title:       item.Title,
			Assignee:    item.DisplayAssignee(),
			State:       item.State,
			Reason:      blockReason(item),
			DaysBlocked: daysBetween(item.ChangedDate, now),
		})
	}
	return blockers
}

// blockReason infers why an item is blocked from its tags, checking keywords
// in fixed priority order.
func blockReason(item workitem.WorkItem) string {
	switch {
	case item.HasTag(workitem.TagWaiting):
		return ReasonWaiting
	case item.HasTag(workitem.TagApproval):
		return ReasonApproval
	case item.HasTag(workitem.TagResource):
		return ReasonResource
	case item.HasTag(workitem.TagTechnical):
		return ReasonTechnical
	}
	return ReasonUnspecified
}

// daysBetween returns the whole days from earlier to later, never negative.
func daysBetween(earlier, later time.Time) int {
	if earlier.IsZero() || !later.After(earlier) {
		return 0
	}
	return int(later.Sub(earlier).Hours() / 24)
}
