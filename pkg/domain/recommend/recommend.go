package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// maxAlternatives caps how many runner-up candidates a recommendation lists.
const maxAlternatives = 3

// DependencyChecker reports whether a work item still has an unresolved
// predecessor link. Implementations usually query the tracker.
type DependencyChecker interface {
	HasOpenPredecessor(ctx context.Context, id int) (bool, error)
}

// PoolOptions narrows the candidate pool before scoring.
type PoolOptions struct {
	// IterationPath restricts candidates to one sprint when set.
	IterationPath string
	// Assignee keeps items assigned to this display name or unassigned when
	// set.
	Assignee string
}

// PoolAnalysis summarizes the candidate pool a recommendation was drawn
// from.
type PoolAnalysis struct {
	TotalTasks int     `json:"total_tasks"`
	TotalHours float64 `json:"total_hours"`
	P1Count    int     `json:"p1_count"`
	P2Count    int     `json:"p2_count"`
	BugCount   int     `json:"bug_count"`
}

// Recommendation is the selection result. Best is nil when the pool was
// empty; that is a valid outcome, not an error.
type Recommendation struct {
	Best         *ScoredItem  `json:"best,omitempty"`
	Alternatives []ScoredItem `json:"alternatives,omitempty"`
	Analysis     PoolAnalysis `json:"analysis"`
}

// Engine scores candidate pools. A nil DependencyChecker disables the
// dependency bonus entirely; a checker that fails is treated as having found
// no dependency so a broken link query can never block a recommendation.
type Engine struct {
	deps   DependencyChecker
	logger *slog.Logger
}

// NewEngine creates a recommendation engine. Both arguments may be nil.
func NewEngine(deps DependencyChecker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{deps: deps, logger: logger}
}

// FilterPool selects the open Task and Bug items eligible for
// recommendation, preserving input order.
func FilterPool(items []workitem.WorkItem, opts PoolOptions) []workitem.WorkItem {
	var pool []workitem.WorkItem
	for _, item := range items {
		if item.Type != workitem.TypeTask && item.Type != workitem.TypeBug {
			continue
		}
		if !isOpen(item.State) {
			continue
		}
		if opts.IterationPath != "" && item.IterationPath != opts.IterationPath {
			continue
		}
		if opts.Assignee != "" && item.Assignee != "" && item.Assignee != opts.Assignee {
			continue
		}
		pool = append(pool, item)
	}
	return pool
}

// Recommend scores the pool and returns the lowest-scored candidate plus up
// to three runners-up. Ties keep first-seen order.
func (e *Engine) Recommend(ctx context.Context, pool []workitem.WorkItem) Recommendation {
	rec := Recommendation{Analysis: analyzePool(pool)}
	if len(pool) == 0 {
		return rec
	}

	scored := make([]ScoredItem, len(pool))
	for i, item := range pool {
		scored[i] = ScoredItem{Item: item, Score: e.score(ctx, item)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})

	rec.Best = &scored[0]
	rest := scored[1:]
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	rec.Alternatives = rest
	return rec
}

func (e *Engine) score(ctx context.Context, item workitem.WorkItem) int {
	score := baseScore(item)
	if e.deps != nil && !e.hasOpenPredecessor(ctx, item.ID) {
		score -= noDependencyBonus
	}
	return score
}

func (e *Engine) hasOpenPredecessor(ctx context.Context, id int) bool {
	open, err := e.deps.HasOpenPredecessor(ctx, id)
	if err != nil {
		e.logger.Debug("dependency check failed, assuming no dependency",
			slog.Int("item", id), slog.Any("error", err))
		return false
	}
	return open
}

func isOpen(state workitem.State) bool {
	for _, s := range workitem.OpenStates() {
		if state == s {
			return true
		}
	}
	return false
}

func analyzePool(pool []workitem.WorkItem) PoolAnalysis {
	analysis := PoolAnalysis{TotalTasks: len(pool)}
	for _, item := range pool {
		analysis.TotalHours += item.RemainingWork
		switch item.EffectivePriority() {
		case 1:
			analysis.P1Count++
		case 2:
			analysis.P2Count++
		}
		if item.Type == workitem.TypeBug {
			analysis.BugCount++
		}
	}
	return analysis
}
