package analytics

import (
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Input carries everything a report is derived from. Velocity history is an
// external input; the engine never reconstructs it from a single sprint.
type Input struct {
	Sprint         workitem.Sprint
	Items          []workitem.WorkItem
	History        []VelocityRecord
	VelocityWindow int
	Now            time.Time
}

// Report is the format-agnostic analytics bundle handed to renderers.
// Burndown is nil when the sprint bounds are unknown.
type Report struct {
	Sprint          workitem.Sprint                `json:"sprint"`
	GeneratedAt     time.Time                      `json:"generated_at"`
	Statistics      Statistics                     `json:"statistics"`
	ByState         map[string][]workitem.WorkItem `json:"by_state"`
	ByType          map[string][]workitem.WorkItem `json:"by_type"`
	ByAssignee      map[string][]workitem.WorkItem `json:"by_assignee"`
	Blockers        []Blocker                      `json:"blockers"`
	Risks           []Risk                         `json:"risks"`
	Burndown        *Burndown                      `json:"burndown,omitempty"`
	Velocity        Velocity                       `json:"velocity"`
	TeamPerformance TeamPerformance                `json:"team_performance"`
}

// BuildReport computes every analytics view for one sprint. A zero Now means
// the current time.
func BuildReport(in Input) Report {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	stats := ComputeStatistics(in.Items)
	report := Report{
		Sprint:          in.Sprint,
		GeneratedAt:     now,
		Statistics:      stats,
		ByState:         GroupByState(in.Items),
		ByType:          GroupByType(in.Items),
		ByAssignee:      GroupByAssignee(in.Items),
		Blockers:        DetectBlockers(in.Items, now),
		Risks:           AssessRisks(in.Items, stats),
		Velocity:        ComputeVelocity(in.History, in.VelocityWindow),
		TeamPerformance: ComputeTeamPerformance(in.Items),
	}

	if in.Sprint.HasDates() {
		burndown, err := ComputeBurndown(in.Items, in.Sprint, now)
		if err == nil {
			report.Burndown = &burndown
		}
	}
	return report
}

// GroupByState buckets items under their literal state label.
func GroupByState(items []workitem.WorkItem) map[string][]workitem.WorkItem {
	groups := make(map[string][]workitem.WorkItem)
	for _, item := range items {
		key := string(item.State)
		groups[key] = append(groups[key], item)
	}
	return groups
}

// GroupByType buckets items under their work-item type.
func GroupByType(items []workitem.WorkItem) map[string][]workitem.WorkItem {
	groups := make(map[string][]workitem.WorkItem)
	for _, item := range items {
		key := string(item.Type)
		groups[key] = append(groups[key], item)
	}
	return groups
}

// GroupByAssignee buckets items under their display assignee, including the
// Unassigned bucket.
func GroupByAssignee(items []workitem.WorkItem) map[string][]workitem.WorkItem {
	groups := make(map[string][]workitem.WorkItem)
	for _, item := range items {
		key := item.DisplayAssignee()
		groups[key] = append(groups[key], item)
	}
	return groups
}
