// Package analytics derives sprint metrics from a set of work items:
// completion statistics, burndown, velocity, team performance, blockers, and
// risks. All functions are pure; the package never mutates its inputs and
// never touches the cache.
package analytics

import (
	"fmt"
	"math"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Trend classifies overall sprint progress from the ratio of remaining to
// originally estimated work.
type Trend string

const (
	// TrendNoEstimates means no original estimates exist to measure against.
	TrendNoEstimates Trend = "No estimates"
	// TrendBehind means more than 70% of estimated work remains.
	TrendBehind Trend = "Behind schedule"
	// TrendOnTrack means 40-70% of estimated work remains.
	TrendOnTrack Trend = "On track"
	// TrendAhead means less than 40% of estimated work remains.
	TrendAhead Trend = "Ahead of schedule"
)

// Statistics summarizes completion progress for a set of work items.
// Rates are percentages rounded to one decimal place.
type Statistics struct {
	TotalItems            int            `json:"total_items"`
	CompletedItems        int            `json:"completed_items"`
	StateCounts           map[string]int `json:"state_counts"`
	TotalStoryPoints      float64        `json:"total_story_points"`
	CompletedStoryPoints  float64        `json:"completed_story_points"`
	TotalOriginalEstimate float64        `json:"total_original_estimate"`
	TotalRemainingWork    float64        `json:"total_remaining_work"`
	TotalCompletedWork    float64        `json:"total_completed_work"`
	CompletionRate        float64        `json:"completion_rate"`
	StoryPointsCompletion float64        `json:"story_points_completion"`
	WorkCompletion        string         `json:"work_completion"`
	BurndownTrend         Trend          `json:"burndown_trend"`
}

// ComputeStatistics aggregates per-state counts, story points, and work
// totals. States outside the canonical set pass through under their literal
// label.
func ComputeStatistics(items []workitem.WorkItem) Statistics {
	stats := Statistics{
		StateCounts: make(map[string]int),
	}
	for _, item := range items {
		stats.TotalItems++
		stats.StateCounts[string(item.State)]++
		stats.TotalStoryPoints += item.StoryPoints
		stats.TotalOriginalEstimate += item.OriginalEstimate
		stats.TotalRemainingWork += item.RemainingWork
		stats.TotalCompletedWork += item.CompletedWork
		if item.IsCompleted() {
			stats.CompletedItems++
			stats.CompletedStoryPoints += item.StoryPoints
		}
	}
	stats.CompletionRate = percentOf(float64(stats.CompletedItems), float64(stats.TotalItems))
	stats.StoryPointsCompletion = percentOf(stats.CompletedStoryPoints, stats.TotalStoryPoints)
	stats.WorkCompletion = formatPercent(stats.TotalCompletedWork, stats.TotalOriginalEstimate)
	stats.BurndownTrend = classifyTrend(stats.TotalRemainingWork, stats.TotalOriginalEstimate)
	return stats
}

// classifyTrend buckets the remaining/original ratio. The boundaries are
// inclusive on the On-track side: a ratio of exactly 0.70 or 0.40 is still
// On track.
func classifyTrend(remaining, original float64) Trend {
	if original == 0 {
		return TrendNoEstimates
	}
	ratio := remaining / original
	switch {
	case ratio > 0.70:
		return TrendBehind
	case ratio >= 0.40:
		return TrendOnTrack
	default:
		return TrendAhead
	}
}

// percentOf returns part/whole as a percentage rounded to one decimal place,
// 0 when whole is 0.
func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*1000) / 10
}

// formatPercent renders part/whole as a percentage string, "N/A" when whole
// is 0.
func formatPercent(part, whole float64) string {
	if whole == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", part/whole*100)
}
