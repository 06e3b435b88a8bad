// Package storage persists work-item snapshots, sync metadata, and velocity
// history under the workspace's .sprintkit directory.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

const SprintkitDir = ".sprintkit"
const CacheDir = "cache"
const ConfigFile = "config.yaml"
const SyncMetadataFile = "last-sync.json"
const VelocityFile = "velocity.json"

// FilesystemStore owns the on-disk work-item cache. Entries are keyed by
// (category, id), one JSON file per item; every Put is a full overwrite so
// repeated syncs stay idempotent per item.
type FilesystemStore struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemStore(root string) *FilesystemStore {
	return &FilesystemStore{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (s *FilesystemStore) Root() string {
	return s.root
}

// BaseDir returns the .sprintkit directory path.
func (s *FilesystemStore) BaseDir() string {
	return filepath.Join(s.root, SprintkitDir)
}

// CacheRoot returns the cache directory path.
func (s *FilesystemStore) CacheRoot() string {
	return filepath.Join(s.BaseDir(), CacheDir)
}

// ResolvePath ensures the filename is a direct child of the .sprintkit
// directory and prevents traversal.
func (s *FilesystemStore) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := s.BaseDir()
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

// Initialize creates the .sprintkit directory tree including every cache
// partition.
func (s *FilesystemStore) Initialize() error {
	for _, category := range workitem.AllCategories() {
		// G301: Use 0700 for directories
		if err := os.MkdirAll(s.categoryDir(category), 0700); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return nil
}

// IsInitialized reports whether the workspace has a .sprintkit directory.
func (s *FilesystemStore) IsInitialized() bool {
	_, err := os.Stat(s.BaseDir())
	return err == nil
}

// Put writes one work item into its cache partition, creating the partition
// on first use. The write goes through a temp file and rename so readers
// running concurrently with a sync never observe a partial entry.
func (s *FilesystemStore) Put(category workitem.Category, item workitem.WorkItem) error {
	path, err := s.itemPath(category, item.ID)
	if err != nil {
		return err
	}

	// G301: Use 0700 for directories
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal work item %d: %w", item.ID, err)
	}

	return writeFileAtomic(path, data)
}

// Get reads one cached work item.
func (s *FilesystemStore) Get(category workitem.Category, id int) (*workitem.WorkItem, error) {
	path, err := s.itemPath(category, id)
	if err != nil {
		return nil, err
	}

	retryer := retry.New[*workitem.WorkItem](s.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*workitem.WorkItem, error) {
		// #nosec G304 -- Path is built from a validated category and numeric id
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("item %d not cached: %w", id, workitem.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to read cached item %d: %w", id, err)
		}

		var item workitem.WorkItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached item %d: %w", id, err)
		}

		return &item, nil
	})
}

// List enumerates the ids persisted in one partition, ascending. A missing
// partition is an empty list.
func (s *FilesystemStore) List(category workitem.Category) ([]int, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("invalid cache category: %s", category)
	}

	entries, err := os.ReadDir(s.categoryDir(category))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list cache category %s: %w", category, err)
	}

	var ids []int
	for _, entry := range entries {
		if id, ok := entryID(entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// LoadCategory reads every parseable item in one partition. Entries that
// fail to parse are skipped; eviction removes them eventually.
func (s *FilesystemStore) LoadCategory(category workitem.Category) ([]workitem.WorkItem, error) {
	ids, err := s.List(category)
	if err != nil {
		return nil, err
	}

	var items []workitem.WorkItem
	for _, id := range ids {
		item, err := s.Get(category, id)
		if err != nil {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

// LoadAll reads every cached item across all partitions in stable category
// order.
func (s *FilesystemStore) LoadAll() ([]workitem.WorkItem, error) {
	var items []workitem.WorkItem
	for _, category := range workitem.AllCategories() {
		loaded, err := s.LoadCategory(category)
		if err != nil {
			return nil, err
		}
		items = append(items, loaded...)
	}
	return items, nil
}

// EvictOlderThan deletes entries whose last write is older than maxAge and
// returns how many were removed. Failures on individual entries are skipped
// so one bad file never aborts the pass. An entry aged exactly maxAge is
// kept; eviction requires strictly older.
func (s *FilesystemStore) EvictOlderThan(category workitem.Category, maxAge time.Duration) (int, error) {
	return s.evictOlderThanAt(category, maxAge, time.Now())
}

func (s *FilesystemStore) evictOlderThanAt(category workitem.Category, maxAge time.Duration, now time.Time) (int, error) {
	if !category.IsValid() {
		return 0, fmt.Errorf("invalid cache category: %s", category)
	}

	dir := s.categoryDir(category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache category %s: %w", category, err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if _, ok := entryID(entry.Name()); !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// Counts returns the number of cached entries per partition.
func (s *FilesystemStore) Counts() (map[workitem.Category]int, error) {
	counts := make(map[workitem.Category]int, len(workitem.AllCategories()))
	for _, category := range workitem.AllCategories() {
		ids, err := s.List(category)
		if err != nil {
			return nil, err
		}
		counts[category] = len(ids)
	}
	return counts, nil
}

// SizeEstimate returns the cache's total size as a human-readable string.
func (s *FilesystemStore) SizeEstimate() (string, error) {
	var total int64
	for _, category := range workitem.AllCategories() {
		entries, err := os.ReadDir(s.categoryDir(category))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to read cache category %s: %w", category, err)
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			total += info.Size()
		}
	}
	return formatBytes(total), nil
}

func (s *FilesystemStore) categoryDir(category workitem.Category) string {
	return filepath.Join(s.CacheRoot(), string(category))
}

func (s *FilesystemStore) itemPath(category workitem.Category, id int) (string, error) {
	if !category.IsValid() {
		return "", fmt.Errorf("invalid cache category: %s", category)
	}
	if id <= 0 {
		return "", fmt.Errorf("invalid work item id: %d", id)
	}
	return filepath.Join(s.categoryDir(category), fmt.Sprintf("%d.json", id)), nil
}

// entryID parses "<id>.json" file names; anything else is not a cache entry.
func entryID(name string) (int, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(base)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// formatBytes renders a byte count in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
