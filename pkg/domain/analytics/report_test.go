package analytics

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	items := []workitem.WorkItem{
		{ID: 1, Title: "API", Type: workitem.TypeTask, State: workitem.StateDone, Assignee: "Sam", OriginalEstimate: 60, RemainingWork: 40},
		{ID: 2, Title: "UI", Type: workitem.TypeBug, State: workitem.StateActive, Assignee: "Alex", OriginalEstimate: 40, RemainingWork: 30, Tags: []string{"blocked"}},
	}

	report := BuildReport(Input{
		Sprint:  tenDaySprint(),
		Items:   items,
		History: history(8, 10),
		Now:     now,
	})

	if report.GeneratedAt != now {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, now)
	}
	if report.Statistics.TotalItems != 2 {
		t.Errorf("Statistics.TotalItems = %d, want 2", report.Statistics.TotalItems)
	}
	if report.Burndown == nil {
		t.Fatal("Burndown should be computed when sprint dates are known")
	}
	if report.Burndown.Status != BurndownBehind {
		t.Errorf("Burndown.Status = %q, want %q", report.Burndown.Status, BurndownBehind)
	}
	if len(report.Blockers) != 1 || report.Blockers[0].ID != 2 {
		t.Errorf("Blockers = %v, want item 2 only", report.Blockers)
	}
	if report.Velocity.Trend != TrendImproving {
		t.Errorf("Velocity.Trend = %q, want %q", report.Velocity.Trend, TrendImproving)
	}
	if report.TeamPerformance.TeamSize != 2 {
		t.Errorf("TeamPerformance.TeamSize = %d, want 2", report.TeamPerformance.TeamSize)
	}

	if got := len(report.ByState["Done"]); got != 1 {
		t.Errorf("ByState[Done] has %d items, want 1", got)
	}
	if got := len(report.ByType["Bug"]); got != 1 {
		t.Errorf("ByType[Bug] has %d items, want 1", got)
	}
	if got := len(report.ByAssignee["Sam"]); got != 1 {
		t.Errorf("ByAssignee[Sam] has %d items, want 1", got)
	}
}

func TestBuildReport_NoSprintDates(t *testing.T) {
	report := BuildReport(Input{
		Sprint: workitem.Sprint{Name: "Backlog"},
		Items:  []workitem.WorkItem{{ID: 1, State: workitem.StateNew}},
		Now:    time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
	})

	if report.Burndown != nil {
		t.Errorf("Burndown = %+v, want nil without sprint dates", report.Burndown)
	}
	if report.Velocity.Trend != TrendInsufficient {
		t.Errorf("Velocity.Trend = %q, want %q without history", report.Velocity.Trend, TrendInsufficient)
	}
}

func TestGroupByAssignee_UnassignedBucket(t *testing.T) {
	items := []workitem.WorkItem{
		{ID: 1, Assignee: "Sam"},
		{ID: 2},
		{ID: 3},
	}

	groups := GroupByAssignee(items)
	if got := len(groups[workitem.Unassigned]); got != 2 {
		t.Errorf("Unassigned bucket has %d items, want 2", got)
	}
}
