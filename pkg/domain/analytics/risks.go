package analytics

import (
	"fmt"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// RiskLevel ranks a detected sprint risk.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
)

// Risk is one detected sprint risk. Rules are evaluated independently, so a
// sprint can carry several at once.
type Risk struct {
	Level   RiskLevel `json:"level"`
	Message string    `json:"message"`
}

// AssessRisks applies the four risk rules to the computed statistics and the
// raw items. Results appear in fixed rule order.
func AssessRisks(items []workitem.WorkItem, stats Statistics) []Risk {
	var risks []Risk

	if stats.CompletionRate < 40 {
		risks = append(risks, Risk{
			Level:   RiskHigh,
			Message: fmt.Sprintf("Completion rate is %.1f%%: sprint goals at risk", stats.CompletionRate),
		})
	}

	if stats.TotalItems > 0 {
		newItems := stats.StateCounts[string(workitem.StateNew)]
		if float64(newItems) > float64(stats.TotalItems)*0.30 {
			risks = append(risks, Risk{
				Level:   RiskMedium,
				Message: fmt.Sprintf("%d of %d items are still New: scope may be unclear", newItems, stats.TotalItems),
			})
		}
	}

	var criticalUnassigned int
	for _, item := range items {
		if item.EffectivePriority() <= 1 && item.Assignee == "" {
			criticalUnassigned++
		}
	}
	if criticalUnassigned > 0 {
		risks = append(risks, Risk{
			Level:   RiskHigh,
			Message: fmt.Sprintf("%d critical items are unassigned", criticalUnassigned),
		})
	}

	if stats.BurndownTrend == TrendBehind {
		risks = append(risks, Risk{
			Level:   RiskHigh,
			Message: "Burndown shows the team is behind schedule",
		})
	}

	return risks
}
