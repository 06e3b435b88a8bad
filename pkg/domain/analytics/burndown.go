package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Burndown status values.
const (
	BurndownOnTrack = "On Track"
	BurndownBehind  = "Behind"

	// ProjectionUnknown is reported when no work has burned down yet, so no
	// completion date can be projected.
	ProjectionUnknown = "Unknown"
)

// Burndown measures actual against ideal burn rate over the sprint's
// elapsed days. Rates are hours per day.
type Burndown struct {
	TotalDays               int     `json:"total_days"`
	DaysElapsed             int     `json:"days_elapsed"`
	DaysRemaining           int     `json:"days_remaining"`
	OriginalEstimate        float64 `json:"original_estimate"`
	RemainingWork           float64 `json:"remaining_work"`
	IdealBurnRate           float64 `json:"ideal_burn_rate"`
	ActualBurnRate          float64 `json:"actual_burn_rate"`
	Status                  string  `json:"status"`
	ProjectedCompletionDays string  `json:"projected_completion_days"`
}

// ComputeBurndown derives burn rates from the sprint bounds and the item
// estimates. The burned-down amount is original minus remaining; completed
// work hours are deliberately not used because the tracker does not enforce
// remaining+completed == original.
func ComputeBurndown(items []workitem.WorkItem, sprint workitem.Sprint, now time.Time) (Burndown, error) {
	if !sprint.HasDates() {
		return Burndown{}, workitem.ErrNoSprintDates
	}

	b := Burndown{
		TotalDays:     sprint.TotalDays(),
		DaysElapsed:   sprint.DaysElapsed(now),
		DaysRemaining: sprint.DaysRemaining(now),
	}
	for _, item := range items {
		b.OriginalEstimate += item.OriginalEstimate
		b.RemainingWork += item.RemainingWork
	}

	if b.TotalDays > 0 {
		b.IdealBurnRate = b.OriginalEstimate / float64(b.TotalDays)
	}
	if b.DaysElapsed > 0 {
		b.ActualBurnRate = (b.OriginalEstimate - b.RemainingWork) / float64(b.DaysElapsed)
	}

	b.Status = BurndownBehind
	if b.ActualBurnRate >= b.IdealBurnRate {
		b.Status = BurndownOnTrack
	}

	b.ProjectedCompletionDays = ProjectionUnknown
	if b.ActualBurnRate > 0 {
		days := int(math.Ceil(b.RemainingWork / b.ActualBurnRate))
		b.ProjectedCompletionDays = strconv.Itoa(days)
	}
	return b, nil
}
