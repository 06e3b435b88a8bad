package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/recommend"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
)

// RecommendService picks the next task from the cached pool. With a tracker
// attached it consults live predecessor links; without one the dependency
// term is disabled and scoring runs on cached data alone.
type RecommendService struct {
	store  *storage.FilesystemStore
	engine *recommend.Engine
	logger *slog.Logger
}

func NewRecommendService(store *storage.FilesystemStore, trk tracker.Tracker, logger *slog.Logger) *RecommendService {
	if logger == nil {
		logger = slog.Default()
	}
	var checker recommend.DependencyChecker
	if trk != nil {
		checker = &trackerDependencyChecker{tracker: trk}
	}
	return &RecommendService{
		store:  store,
		engine: recommend.NewEngine(checker, logger),
		logger: logger,
	}
}

// Next scores the open tasks and bugs in the cache and returns the best
// candidate with up to three alternatives.
func (s *RecommendService) Next(ctx context.Context, opts recommend.PoolOptions) (recommend.Recommendation, error) {
	items, err := s.store.LoadAll()
	if err != nil {
		return recommend.Recommendation{}, fmt.Errorf("failed to load cached work items: %w", err)
	}

	pool := recommend.FilterPool(items, opts)
	rec := s.engine.Recommend(ctx, pool)

	if rec.Best != nil {
		s.logger.Info("next task selected",
			"id", rec.Best.Item.ID,
			"score", rec.Best.Score,
			"alternatives", len(rec.Alternatives),
		)
	} else {
		s.logger.Info("no open tasks in pool")
	}
	return rec, nil
}

// trackerDependencyChecker resolves predecessor links live. A predecessor
// counts as open until its state is terminal; a Removed predecessor never
// blocks its successor.
type trackerDependencyChecker struct {
	tracker tracker.Tracker
}

func (c *trackerDependencyChecker) HasOpenPredecessor(ctx context.Context, id int) (bool, error) {
	relations, err := c.tracker.Relations(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load relations for work item %d: %w", id, err)
	}

	for _, rel := range workitem.Predecessors(relations) {
		predecessor, err := c.tracker.GetItem(ctx, rel.TargetID)
		if err != nil {
			return false, fmt.Errorf("failed to fetch predecessor %d: %w", rel.TargetID, err)
		}
		if !predecessor.State.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}
