// Package application coordinates the tracker client, cache store, and
// analytics engines behind the commands the CLI exposes.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/wiql"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
)

// SyncMode selects how much of the tracker a sync run covers.
type SyncMode string

const (
	ModeFull  SyncMode = "full"
	ModeQuick SyncMode = "quick"
)

const (
	fullSyncWindow   = 30 * 24 * time.Hour
	quickSyncWindow  = 7 * 24 * time.Hour
	cacheMaxAge      = 30 * 24 * time.Hour
	fetchConcurrency = 4
)

// SyncResult summarizes one sync run for display. The same numbers land in
// the persisted sync metadata.
type SyncResult struct {
	RunID       string
	Mode        SyncMode
	Duration    time.Duration
	ItemsSynced map[workitem.Category]int
	CachedItems map[workitem.Category]int
	Evicted     int
	CacheSize   string
	Errors      []string
}

// SyncService pulls work items from the remote tracker into the local
// cache. Per-item failures never abort a run; they are logged, recorded in
// the run's error list, and the run continues.
type SyncService struct {
	tracker     tracker.Tracker
	store       *storage.FilesystemStore
	logger      *slog.Logger
	concurrency int64
}

func NewSyncService(trk tracker.Tracker, store *storage.FilesystemStore, logger *slog.Logger) *SyncService {
	return NewSyncServiceWithConcurrency(trk, store, logger, fetchConcurrency)
}

// NewSyncServiceWithConcurrency bounds the detail-fetch worker pool at n.
// Values below one fall back to the default.
func NewSyncServiceWithConcurrency(trk tracker.Tracker, store *storage.FilesystemStore, logger *slog.Logger, n int) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	if n < 1 {
		n = fetchConcurrency
	}
	return &SyncService{tracker: trk, store: store, logger: logger, concurrency: int64(n)}
}

// Full syncs every synced work-item type changed in the last 30 days, one
// query per type, then evicts cache entries older than 30 days.
func (s *SyncService) Full(ctx context.Context) (*SyncResult, error) {
	return s.run(ctx, ModeFull)
}

// Quick syncs items of any synced type changed in the last 7 days in a
// single query, grouping results into categories locally. Quick runs skip
// the eviction pass.
func (s *SyncService) Quick(ctx context.Context) (*SyncResult, error) {
	return s.run(ctx, ModeQuick)
}

func (s *SyncService) run(ctx context.Context, mode SyncMode) (*SyncResult, error) {
	machine, err := NewSyncStateMachine(mode)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger := s.logger.With("run_id", runID, "mode", string(mode))
	start := time.Now()

	s.step(machine, logger, eventStart)
	if s.tracker == nil {
		s.step(machine, logger, eventCredentialsFailed)
		return nil, fmt.Errorf("no tracker configured: %w", workitem.ErrMissingCredentials)
	}
	s.step(machine, logger, eventCredentialsOK)

	result := &SyncResult{
		RunID:       runID,
		Mode:        mode,
		ItemsSynced: make(map[workitem.Category]int),
	}

	if mode == ModeFull {
		since := start.Add(-fullSyncWindow)
		for _, typ := range workitem.SyncedTypes() {
			s.syncTypes(ctx, machine, logger, []workitem.Type{typ}, since, result)
		}
		s.step(machine, logger, eventEvict)
		s.evict(logger, result)
	} else {
		since := start.Add(-quickSyncWindow)
		s.syncTypes(ctx, machine, logger, workitem.SyncedTypes(), since, result)
	}

	s.step(machine, logger, eventWrite)
	if err := s.writeMetadata(logger, result); err != nil {
		return nil, err
	}
	s.step(machine, logger, eventDone)

	result.Duration = time.Since(start)
	logger.Info("sync complete",
		"synced", categoryCounts(result.ItemsSynced),
		"evicted", result.Evicted,
		"errors", len(result.Errors),
		"duration", result.Duration.Round(time.Millisecond).String(),
	)
	return result, nil
}

// syncTypes runs one changed-items query and caches every item it can
// fetch. A failed query is recorded and skipped; the caller moves on to the
// next query or phase.
func (s *SyncService) syncTypes(ctx context.Context, machine *SyncStateMachine, logger *slog.Logger, types []workitem.Type, since time.Time, result *SyncResult) {
	query := wiql.New(wiql.FieldID).
		WhereType(types...).
		WhereChangedSince(since).
		String()

	refs, err := s.tracker.Query(ctx, query)
	if err != nil {
		logger.Warn("work item query failed", "types", typeNames(types), "error", err)
		result.Errors = append(result.Errors, queryErrorMessage(types, err))
		return
	}
	if len(refs) == 0 {
		logger.Debug("no changed work items", "types", typeNames(types))
		return
	}

	s.step(machine, logger, eventFetch)
	fetched := s.fetchDetails(ctx, refs)

	s.step(machine, logger, eventCache)
	for _, fr := range fetched {
		if fr.err != nil {
			logger.Warn("skipping work item", "id", fr.ref.ID, "error", fr.err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to fetch work item %d: %v", fr.ref.ID, fr.err))
			continue
		}
		category, ok := workitem.CategoryFor(fr.item.Type)
		if !ok {
			logger.Warn("no cache category for work item type", "id", fr.item.ID, "type", fr.item.Type.String())
			continue
		}
		if err := s.store.Put(category, *fr.item); err != nil {
			logger.Warn("failed to cache work item", "id", fr.item.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to cache work item %d: %v", fr.item.ID, err))
			continue
		}
		result.ItemsSynced[category]++
	}
	s.step(machine, logger, eventNextCategory)
}

type fetchResult struct {
	ref  tracker.ItemRef
	item *workitem.WorkItem
	err  error
}

// fetchDetails pulls full payloads for every ref with bounded concurrency.
// Results come back in ref order, each carrying its item or its error.
func (s *SyncService) fetchDetails(ctx context.Context, refs []tracker.ItemRef) []fetchResult {
	results := make([]fetchResult, len(refs))
	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = fetchResult{ref: ref, err: fmt.Errorf("failed to acquire fetch slot: %w", err)}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			item, err := s.tracker.GetItem(ctx, ref.ID)
			results[i] = fetchResult{ref: ref, item: item, err: err}
		}()
	}
	wg.Wait()
	return results
}

func (s *SyncService) evict(logger *slog.Logger, result *SyncResult) {
	for _, category := range workitem.AllCategories() {
		removed, err := s.store.EvictOlderThan(category, cacheMaxAge)
		if err != nil {
			logger.Warn("cache eviction failed", "category", category.String(), "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("eviction for %s failed: %v", category, err))
			continue
		}
		result.Evicted += removed
	}
	if result.Evicted > 0 {
		logger.Info("evicted stale cache entries", "count", result.Evicted)
	}
}

func (s *SyncService) writeMetadata(logger *slog.Logger, result *SyncResult) error {
	size, err := s.store.SizeEstimate()
	if err != nil {
		logger.Warn("failed to estimate cache size", "error", err)
		size = "unknown"
	}
	result.CacheSize = size

	counts, err := s.store.Counts()
	if err != nil {
		logger.Warn("failed to count cached items", "error", err)
		counts = map[workitem.Category]int{}
	}
	result.CachedItems = counts

	meta := storage.SyncMetadata{
		Timestamp:   time.Now(),
		Mode:        string(result.Mode),
		CacheSize:   size,
		ItemsSynced: categoryCounts(result.ItemsSynced),
		CachedItems: categoryCounts(counts),
		Errors:      result.Errors,
	}
	if err := s.store.SaveSyncMetadata(meta); err != nil {
		return fmt.Errorf("failed to write sync metadata: %w", err)
	}
	return nil
}

// step advances the run's state machine. A rejected event means the
// orchestrator has a phase bug; it is logged and the run continues.
func (s *SyncService) step(machine *SyncStateMachine, logger *slog.Logger, event string) {
	if err := machine.Transition(event); err != nil {
		logger.Debug("sync phase transition rejected", "error", err)
		return
	}
	logger.Debug("sync phase", "phase", machine.Phase())
}

// categoryCounts flattens per-category counters into the string-keyed map
// persisted in sync metadata, always carrying every category.
func categoryCounts(in map[workitem.Category]int) map[string]int {
	out := make(map[string]int, len(workitem.AllCategories()))
	for _, category := range workitem.AllCategories() {
		out[string(category)] = in[category]
	}
	return out
}

func typeNames(types []workitem.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

func queryErrorMessage(types []workitem.Type, err error) string {
	if len(types) == 1 {
		return fmt.Sprintf("query for %s items failed: %v", types[0], err)
	}
	return fmt.Sprintf("changed-items query failed: %v", err)
}
