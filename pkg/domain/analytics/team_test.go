package analytics

import (
	"testing"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

func TestComputeTeamPerformance(t *testing.T) {
	items := []workitem.WorkItem{
		{ID: 1, Assignee: "Sam", Type: workitem.TypeTask, State: workitem.StateDone, StoryPoints: 3, OriginalEstimate: 10, CompletedWork: 10},
		{ID: 2, Assignee: "Sam", Type: workitem.TypeBug, State: workitem.StateActive, StoryPoints: 2, OriginalEstimate: 10, CompletedWork: 5},
		{ID: 3, Assignee: "Alex", Type: workitem.TypeTask, State: workitem.StateDone, StoryPoints: 5, OriginalEstimate: 20, CompletedWork: 15},
		{ID: 4, Assignee: "", Type: workitem.TypeTask, State: workitem.StateNew, OriginalEstimate: 10},
	}

	perf := ComputeTeamPerformance(items)

	if perf.TeamSize != 2 {
		t.Errorf("TeamSize = %d, want 2 (Unassigned excluded)", perf.TeamSize)
	}
	if len(perf.Members) != 3 {
		t.Fatalf("got %d members, want 3", len(perf.Members))
	}

	// Members are sorted by assignee name.
	if perf.Members[0].Assignee != "Alex" || perf.Members[1].Assignee != "Sam" || perf.Members[2].Assignee != workitem.Unassigned {
		t.Errorf("member order = [%s %s %s], want [Alex Sam Unassigned]",
			perf.Members[0].Assignee, perf.Members[1].Assignee, perf.Members[2].Assignee)
	}

	sam := perf.Members[1]
	if sam.Items != 2 || sam.Completed != 1 || sam.Bugs != 1 {
		t.Errorf("Sam = %+v, want 2 items, 1 completed, 1 bug", sam)
	}
	if sam.StoryPoints != 5 || sam.CompletedPoints != 3 {
		t.Errorf("Sam points = %v/%v, want 5 total, 3 completed", sam.StoryPoints, sam.CompletedPoints)
	}

	// 30 completed of 50 estimated hours.
	if perf.CapacityUtilization != "60.0%" {
		t.Errorf("CapacityUtilization = %q, want 60.0%%", perf.CapacityUtilization)
	}
	// 1 bug of 4 items.
	if perf.DefectRate != 25.0 {
		t.Errorf("DefectRate = %v, want 25.0", perf.DefectRate)
	}
}

func TestComputeTeamPerformance_Empty(t *testing.T) {
	perf := ComputeTeamPerformance(nil)

	if perf.TeamSize != 0 {
		t.Errorf("TeamSize = %d, want 0", perf.TeamSize)
	}
	if len(perf.Members) != 0 {
		t.Errorf("got %d members, want 0", len(perf.Members))
	}
	if perf.CapacityUtilization != "N/A" {
		t.Errorf("CapacityUtilization = %q, want N/A", perf.CapacityUtilization)
	}
	if perf.DefectRate != 0 {
		t.Errorf("DefectRate = %v, want 0", perf.DefectRate)
	}
}
