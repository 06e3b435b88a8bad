package analytics

import "time"

// VelocityTrend classifies the change between the two most recent sprints.
type VelocityTrend string

const (
	// TrendImproving means the latest sprint completed at least 10% more
	// points than the previous one.
	TrendImproving VelocityTrend = "Improving"
	// TrendDeclining means the latest sprint completed at least 10% fewer
	// points than the previous one.
	TrendDeclining VelocityTrend = "Declining"
	// TrendStable means the latest sprint is within 10% of the previous one.
	TrendStable VelocityTrend = "Stable"
	// TrendInsufficient means fewer than two historical sprints exist.
	TrendInsufficient VelocityTrend = "Insufficient data"
)

// DefaultVelocityWindow is the number of recent sprints averaged when the
// caller does not choose one.
const DefaultVelocityWindow = 3

// VelocityRecord is one completed sprint's point total. History is an
// external input recorded sprint by sprint, ordered oldest first.
type VelocityRecord struct {
	Sprint     string    `json:"sprint"`
	Points     float64   `json:"points"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Velocity is the averaged point throughput over the most recent sprints.
type Velocity struct {
	Average float64       `json:"average"`
	Trend   VelocityTrend `json:"trend"`
	Window  int           `json:"window"`
	Sprints int           `json:"sprints"`
}

// ComputeVelocity averages the last window records and classifies the trend
// from the two most recent. A window below 1 falls back to
// DefaultVelocityWindow.
func ComputeVelocity(history []VelocityRecord, window int) Velocity {
	if window < 1 {
		window = DefaultVelocityWindow
	}
	v := Velocity{Window: window, Trend: TrendInsufficient}

	n := len(history)
	if n == 0 {
		return v
	}

	start := n - window
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	var sum float64
	for _, r := range recent {
		sum += r.Points
	}
	v.Sprints = len(recent)
	v.Average = sum / float64(len(recent))

	if n < 2 {
		return v
	}
	latest, previous := history[n-1].Points, history[n-2].Points
	switch {
	case latest >= previous*1.10:
		v.Trend = TrendImproving
	case latest <= previous*0.90:
		v.Trend = TrendDeclining
	default:
		v.Trend = TrendStable
	}
	return v
}
