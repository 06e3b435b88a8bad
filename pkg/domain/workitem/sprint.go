package workitem

import (
	"math"
	"time"
)

// Sprint is a time-boxed iteration identified by a hierarchical path.
type Sprint struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// HasDates reports whether both sprint bounds are known. Burndown and
// day-based metrics require them.
func (s Sprint) HasDates() bool {
	return !s.StartDate.IsZero() && !s.EndDate.IsZero()
}

// TotalDays returns the sprint length in whole days, rounding partial days
// up. Zero when the bounds are unknown or inverted.
func (s Sprint) TotalDays() int {
	if !s.HasDates() || !s.EndDate.After(s.StartDate) {
		return 0
	}
	return ceilDays(s.EndDate.Sub(s.StartDate))
}

// DaysElapsed returns how many sprint days have passed at the given instant,
// clamped to [0, TotalDays].
func (s Sprint) DaysElapsed(now time.Time) int {
	total := s.TotalDays()
	if total == 0 {
		return 0
	}
	elapsed := ceilDays(now.Sub(s.StartDate))
	if elapsed < 0 {
		return 0
	}
	if elapsed > total {
		return total
	}
	return elapsed
}

// DaysRemaining returns the sprint days left at the given instant.
func (s Sprint) DaysRemaining(now time.Time) int {
	return s.TotalDays() - s.DaysElapsed(now)
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
