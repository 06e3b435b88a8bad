package application_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/application"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
)

// fakeTracker routes queries by the quoted type names they mention and
// serves item payloads from a fixed map.
type fakeTracker struct {
	mu            sync.Mutex
	queries       []string
	items         map[int]workitem.WorkItem
	queryFailures map[workitem.Type]error
	getErr        map[int]error
	relations     map[int][]workitem.Relation
	relErr        map[int]error
}

func (f *fakeTracker) Query(ctx context.Context, query string) ([]tracker.ItemRef, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	for typ, err := range f.queryFailures {
		if strings.Contains(query, "'"+string(typ)+"'") {
			return nil, err
		}
	}

	var refs []tracker.ItemRef
	for id, item := range f.items {
		if strings.Contains(query, "'"+string(item.Type)+"'") {
			refs = append(refs, tracker.ItemRef{ID: id})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (f *fakeTracker) GetItem(ctx context.Context, id int) (*workitem.WorkItem, error) {
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, workitem.ErrNotFound
	}
	return &item, nil
}

func (f *fakeTracker) Relations(ctx context.Context, id int) ([]workitem.Relation, error) {
	if err := f.relErr[id]; err != nil {
		return nil, err
	}
	return f.relations[id], nil
}

func (f *fakeTracker) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func sprintItems() map[int]workitem.WorkItem {
	return map[int]workitem.WorkItem{
		1: {ID: 1, Title: "Search facets", Type: workitem.TypeFeature, State: workitem.StateActive},
		2: {ID: 2, Title: "Facet filters", Type: workitem.TypeUserStory, State: workitem.StateActive, StoryPoints: 5},
		3: {ID: 3, Title: "Index schema", Type: workitem.TypeTask, State: workitem.StateNew, RemainingWork: 4},
		4: {ID: 4, Title: "Query parser", Type: workitem.TypeTask, State: workitem.StateActive, RemainingWork: 6},
		5: {ID: 5, Title: "Stale results", Type: workitem.TypeBug, State: workitem.StateNew, Priority: 1},
	}
}

func newSyncFixture(t *testing.T) (*application.SyncService, *fakeTracker, *storage.FilesystemStore) {
	t.Helper()
	store := storage.NewFilesystemStore(t.TempDir())
	if err := store.Initialize(); err != nil {
		t.Fatal(err)
	}
	trk := &fakeTracker{items: sprintItems()}
	svc := application.NewSyncService(trk, store, slog.Default())
	return svc, trk, store
}

func TestSyncService_FullSync(t *testing.T) {
	svc, trk, store := newSyncFixture(t)

	result, err := svc.Full(context.Background())
	if err != nil {
		t.Fatalf("Full: %v", err)
	}

	if result.Mode != application.ModeFull {
		t.Errorf("Mode = %q, want %q", result.Mode, application.ModeFull)
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}

	// One query per synced type.
	if trk.queryCount() != 4 {
		t.Errorf("query count = %d, want 4", trk.queryCount())
	}
	for _, query := range trk.queries {
		if !strings.Contains(query, "[System.ChangedDate] >= '") {
			t.Errorf("query missing changed-date window: %s", query)
		}
	}

	wantSynced := map[workitem.Category]int{
		workitem.CategoryFeatures: 1,
		workitem.CategoryStories:  1,
		workitem.CategoryTasks:    3,
	}
	for category, want := range wantSynced {
		if got := result.ItemsSynced[category]; got != want {
			t.Errorf("ItemsSynced[%s] = %d, want %d", category, got, want)
		}
	}

	// Bugs land in the tasks partition.
	ids, err := store.List(workitem.CategoryTasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 4 || ids[2] != 5 {
		t.Errorf("tasks partition = %v, want [3 4 5]", ids)
	}

	meta, err := store.LoadSyncMetadata()
	if err != nil {
		t.Fatalf("LoadSyncMetadata: %v", err)
	}
	if meta == nil {
		t.Fatal("expected sync metadata to be written")
	}
	if meta.Mode != "full" {
		t.Errorf("metadata mode = %q, want %q", meta.Mode, "full")
	}
	if meta.ItemsSynced["tasks"] != 3 {
		t.Errorf("metadata ItemsSynced[tasks] = %d, want 3", meta.ItemsSynced["tasks"])
	}
	if meta.CachedItems["features"] != 1 {
		t.Errorf("metadata CachedItems[features] = %d, want 1", meta.CachedItems["features"])
	}
	if len(meta.Errors) != 0 {
		t.Errorf("metadata errors = %v, want none", meta.Errors)
	}
}

func TestSyncService_FullSync_SkipsFailedItems(t *testing.T) {
	svc, trk, store := newSyncFixture(t)
	trk.getErr = map[int]error{4: errors.New("timeout")}

	result, err := svc.Full(context.Background())
	if err != nil {
		t.Fatalf("Full: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one entry", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "failed to fetch work item 4") {
		t.Errorf("error = %q, want fetch failure for item 4", result.Errors[0])
	}
	if result.ItemsSynced[workitem.CategoryTasks] != 2 {
		t.Errorf("ItemsSynced[tasks] = %d, want 2", result.ItemsSynced[workitem.CategoryTasks])
	}

	ids, err := store.List(workitem.CategoryTasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 5 {
		t.Errorf("tasks partition = %v, want [3 5]", ids)
	}

	meta, err := store.LoadSyncMetadata()
	if err != nil || meta == nil {
		t.Fatalf("expected metadata, got %v, %v", meta, err)
	}
	if len(meta.Errors) != 1 {
		t.Errorf("metadata errors = %v, want one entry", meta.Errors)
	}
}

func TestSyncService_FullSync_QueryFailureDoesNotAbortRun(t *testing.T) {
	svc, trk, _ := newSyncFixture(t)
	trk.queryFailures = map[workitem.Type]error{workitem.TypeFeature: errors.New("service unavailable")}

	result, err := svc.Full(context.Background())
	if err != nil {
		t.Fatalf("Full: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one entry", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "query for Feature items failed") {
		t.Errorf("error = %q, want feature query failure", result.Errors[0])
	}
	if result.ItemsSynced[workitem.CategoryFeatures] != 0 {
		t.Errorf("ItemsSynced[features] = %d, want 0", result.ItemsSynced[workitem.CategoryFeatures])
	}
	if result.ItemsSynced[workitem.CategoryStories] != 1 {
		t.Errorf("ItemsSynced[stories] = %d, want 1", result.ItemsSynced[workitem.CategoryStories])
	}
	if result.ItemsSynced[workitem.CategoryTasks] != 3 {
		t.Errorf("ItemsSynced[tasks] = %d, want 3", result.ItemsSynced[workitem.CategoryTasks])
	}
}

func TestSyncService_QuickSync(t *testing.T) {
	svc, trk, store := newSyncFixture(t)

	result, err := svc.Quick(context.Background())
	if err != nil {
		t.Fatalf("Quick: %v", err)
	}

	if trk.queryCount() != 1 {
		t.Fatalf("query count = %d, want 1", trk.queryCount())
	}
	query := trk.queries[0]
	if !strings.Contains(query, "IN (") {
		t.Errorf("quick query should filter all types at once: %s", query)
	}
	for _, typ := range workitem.SyncedTypes() {
		if !strings.Contains(query, "'"+string(typ)+"'") {
			t.Errorf("quick query missing type %s: %s", typ, query)
		}
	}

	// Grouping happens locally from the fetched payloads.
	if result.ItemsSynced[workitem.CategoryTasks] != 3 {
		t.Errorf("ItemsSynced[tasks] = %d, want 3", result.ItemsSynced[workitem.CategoryTasks])
	}
	if result.ItemsSynced[workitem.CategoryFeatures] != 1 {
		t.Errorf("ItemsSynced[features] = %d, want 1", result.ItemsSynced[workitem.CategoryFeatures])
	}

	meta, err := store.LoadSyncMetadata()
	if err != nil || meta == nil {
		t.Fatalf("expected metadata, got %v, %v", meta, err)
	}
	if meta.Mode != "quick" {
		t.Errorf("metadata mode = %q, want %q", meta.Mode, "quick")
	}
}

func TestSyncService_QuickSyncKeepsStaleEntries(t *testing.T) {
	svc, _, store := newSyncFixture(t)
	plantStaleEntry(t, store, 99, 35)

	if _, err := svc.Quick(context.Background()); err != nil {
		t.Fatalf("Quick: %v", err)
	}

	if _, err := store.Get(workitem.CategoryTasks, 99); err != nil {
		t.Errorf("quick sync must not evict, but entry 99 is gone: %v", err)
	}
}

func TestSyncService_FullSyncEvictsStaleEntries(t *testing.T) {
	svc, _, store := newSyncFixture(t)
	plantStaleEntry(t, store, 99, 35)

	result, err := svc.Full(context.Background())
	if err != nil {
		t.Fatalf("Full: %v", err)
	}

	if result.Evicted != 1 {
		t.Errorf("Evicted = %d, want 1", result.Evicted)
	}
	if _, err := store.Get(workitem.CategoryTasks, 99); !errors.Is(err, workitem.ErrNotFound) {
		t.Errorf("expected entry 99 to be evicted, got %v", err)
	}
}

func TestSyncService_MissingTracker(t *testing.T) {
	store := storage.NewFilesystemStore(t.TempDir())
	if err := store.Initialize(); err != nil {
		t.Fatal(err)
	}
	svc := application.NewSyncService(nil, store, slog.Default())

	_, err := svc.Full(context.Background())
	if !errors.Is(err, workitem.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	meta, err := store.LoadSyncMetadata()
	if err != nil {
		t.Fatal(err)
	}
	if meta != nil {
		t.Error("no metadata should be written when credentials are missing")
	}
}

func TestSyncService_MetadataCountsIncludePreexistingEntries(t *testing.T) {
	svc, _, store := newSyncFixture(t)
	if err := store.Put(workitem.CategoryTasks, workitem.WorkItem{ID: 50, Title: "Carried over", Type: workitem.TypeTask, State: workitem.StateActive}); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Full(context.Background())
	if err != nil {
		t.Fatalf("Full: %v", err)
	}

	if result.ItemsSynced[workitem.CategoryTasks] != 3 {
		t.Errorf("ItemsSynced[tasks] = %d, want 3", result.ItemsSynced[workitem.CategoryTasks])
	}
	if result.CachedItems[workitem.CategoryTasks] != 4 {
		t.Errorf("CachedItems[tasks] = %d, want 4", result.CachedItems[workitem.CategoryTasks])
	}
}

// plantStaleEntry caches an item and backdates its file so eviction sees it
// as days old.
func plantStaleEntry(t *testing.T, store *storage.FilesystemStore, id, days int) {
	t.Helper()
	item := workitem.WorkItem{ID: id, Title: "Stale", Type: workitem.TypeTask, State: workitem.StateClosed}
	if err := store.Put(workitem.CategoryTasks, item); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(store.CacheRoot(), "tasks", strconv.Itoa(id)+".json")
	mtime := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}
