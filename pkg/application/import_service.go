package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

// ItemImporter pulls work items from a secondary source, such as a GitHub
// issue tracker.
type ItemImporter interface {
	Import(ctx context.Context, since time.Time) ([]workitem.WorkItem, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported map[workitem.Category]int
	Skipped  int
	Errors   []string
}

// Total returns the number of items written across all categories.
func (r *ImportResult) Total() int {
	total := 0
	for _, n := range r.Imported {
		total += n
	}
	return total
}

// ImportService writes externally sourced items into the cache. Imported
// ids share the cache key space with tracker ids; an id collision
// overwrites the cached entry.
type ImportService struct {
	importer ItemImporter
	store    *storage.FilesystemStore
	logger   *slog.Logger
}

func NewImportService(importer ItemImporter, store *storage.FilesystemStore, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{importer: importer, store: store, logger: logger}
}

// Run imports items changed since the given time; a zero since imports
// everything the source offers. Items without a cache category are skipped.
func (s *ImportService) Run(ctx context.Context, since time.Time) (*ImportResult, error) {
	if s.importer == nil {
		return nil, fmt.Errorf("no import source configured: %w", workitem.ErrMissingCredentials)
	}

	items, err := s.importer.Import(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	result := &ImportResult{Imported: make(map[workitem.Category]int)}
	for _, item := range items {
		category, ok := workitem.CategoryFor(item.Type)
		if !ok {
			result.Skipped++
			continue
		}
		if err := s.store.Put(category, item); err != nil {
			s.logger.Warn("failed to cache imported item", "id", item.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to cache work item %d: %v", item.ID, err))
			continue
		}
		result.Imported[category]++
	}

	s.logger.Info("import complete",
		"imported", result.Total(),
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}
