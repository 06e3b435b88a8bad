// Package recommend scores open work items and picks the next task to work
// on. Lower scores are more urgent; selection is the minimum with stable
// first-seen tie-breaking.
package recommend

import (
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Scoring weights. The priority band dominates: every deduction is smaller
// than one priority step, so only stacked signals can outrank a higher
// priority.
const (
	priorityWeight    = 100
	bugBonus          = 50
	quickWinBonus     = 30
	urgencyBonus      = 75
	noDependencyBonus = 20

	// quickWinHours is the remaining-work ceiling below which an item counts
	// as a quick win.
	quickWinHours = 2.0
)

// ScoredItem pairs a candidate with its computed score.
type ScoredItem struct {
	Item  workitem.WorkItem `json:"item"`
	Score int               `json:"score"`
}

// baseScore computes the dependency-independent part of the score.
func baseScore(item workitem.WorkItem) int {
	score := item.EffectivePriority() * priorityWeight
	if item.Type == workitem.TypeBug {
		score -= bugBonus
	}
	if item.RemainingWork > 0 && item.RemainingWork <= quickWinHours {
		score -= quickWinBonus
	}
	if item.HasAnyTag(workitem.TagCritical, workitem.TagUrgent) {
		score -= urgencyBonus
	}
	return score
}
