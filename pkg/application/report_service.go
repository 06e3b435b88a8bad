package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/analytics"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
)

// ReportOptions selects the sprint a report covers. An explicit sprint wins
// over current-sprint resolution; with neither, the report spans every
// cached item and carries no burndown.
type ReportOptions struct {
	Sprint         workitem.Sprint
	UseCurrent     bool
	VelocityWindow int
}

// ReportService assembles sprint reports from the local cache. It never
// talks to the tracker except to resolve the current iteration.
type ReportService struct {
	store    *storage.FilesystemStore
	resolver tracker.SprintResolver
	logger   *slog.Logger
}

func NewReportService(store *storage.FilesystemStore, resolver tracker.SprintResolver, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{store: store, resolver: resolver, logger: logger}
}

// Generate builds the full analytics report for the selected sprint.
func (s *ReportService) Generate(ctx context.Context, opts ReportOptions) (*analytics.Report, error) {
	sprint, err := s.resolveSprint(ctx, opts)
	if err != nil {
		return nil, err
	}

	items, err := s.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load cached work items: %w", err)
	}
	items = filterByIteration(items, sprint.Path)

	history, err := s.store.LoadVelocityHistory()
	if err != nil {
		s.logger.Warn("failed to load velocity history", "error", err)
		history = nil
	}

	report := analytics.BuildReport(analytics.Input{
		Sprint:         sprint,
		Items:          items,
		History:        history,
		VelocityWindow: opts.VelocityWindow,
	})

	s.logger.Info("report generated",
		"sprint", sprint.Name,
		"items", report.Statistics.TotalItems,
		"blockers", len(report.Blockers),
		"risks", len(report.Risks),
	)
	return &report, nil
}

// CurrentSprint resolves the active iteration from the tracker.
func (s *ReportService) CurrentSprint(ctx context.Context) (*workitem.Sprint, error) {
	if s.resolver == nil {
		return nil, fmt.Errorf("current sprint: %w", tracker.ErrNotSupported)
	}
	return s.resolver.CurrentSprint(ctx)
}

func (s *ReportService) resolveSprint(ctx context.Context, opts ReportOptions) (workitem.Sprint, error) {
	if opts.Sprint.Name != "" || opts.Sprint.Path != "" || opts.Sprint.HasDates() {
		return opts.Sprint, nil
	}
	if !opts.UseCurrent {
		return workitem.Sprint{}, nil
	}

	current, err := s.CurrentSprint(ctx)
	if err != nil {
		return workitem.Sprint{}, fmt.Errorf("failed to resolve current sprint: %w", err)
	}
	return *current, nil
}

// filterByIteration keeps items whose iteration path matches the sprint. An
// empty path keeps everything.
func filterByIteration(items []workitem.WorkItem, path string) []workitem.WorkItem {
	if path == "" {
		return items
	}
	var filtered []workitem.WorkItem
	for _, item := range items {
		if item.IterationPath == path {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
