package analytics

import (
	"sort"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// MemberPerformance aggregates one assignee's sprint contribution. Items
// without an assignee roll up under the Unassigned row.
type MemberPerformance struct {
	Assignee        string  `json:"assignee"`
	Items           int     `json:"items"`
	Completed       int     `json:"completed"`
	StoryPoints     float64 `json:"story_points"`
	CompletedPoints float64 `json:"completed_points"`
	Bugs            int     `json:"bugs"`
}

// TeamPerformance is the per-assignee breakdown plus team-level ratios.
type TeamPerformance struct {
	Members             []MemberPerformance `json:"members"`
	TeamSize            int                 `json:"team_size"`
	CapacityUtilization string              `json:"capacity_utilization"`
	DefectRate          float64             `json:"defect_rate"`
}

// ComputeTeamPerformance aggregates items per assignee. TeamSize counts
// distinct assignees excluding Unassigned; members are sorted by name for
// stable output.
func ComputeTeamPerformance(items []workitem.WorkItem) TeamPerformance {
	byAssignee := make(map[string]*MemberPerformance)
	var completedWork, originalEstimate float64
	var bugs int

	for _, item := range items {
		name := item.DisplayAssignee()
		member, ok := byAssignee[name]
		if !ok {
			member = &MemberPerformance{Assignee: name}
			byAssignee[name] = member
		}
		member.Items++
		member.StoryPoints += item.StoryPoints
		if item.IsCompleted() {
			member.Completed++
			member.CompletedPoints += item.StoryPoints
		}
		if item.Type == workitem.TypeBug {
			member.Bugs++
			bugs++
		}
		completedWork += item.CompletedWork
		originalEstimate += item.OriginalEstimate
	}

	perf := TeamPerformance{
		Members:             make([]MemberPerformance, 0, len(byAssignee)),
		CapacityUtilization: formatPercent(completedWork, originalEstimate),
		DefectRate:          percentOf(float64(bugs), float64(len(items))),
	}
	for name, member := range byAssignee {
		perf.Members = append(perf.Members, *member)
		if name != workitem.Unassigned {
			perf.TeamSize++
		}
	}
	sort.Slice(perf.Members, func(i, j int) bool {
		return perf.Members[i].Assignee < perf.Members[j].Assignee
	})
	return perf
}
