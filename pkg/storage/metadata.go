package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SyncMetadata is the snapshot written to .sprintkit/last-sync.json after
// every sync run. The file is overwritten whole each time; errors holds
// human-readable descriptions of per-item failures the run tolerated.
type SyncMetadata struct {
	Timestamp   time.Time      `json:"timestamp"`
	Mode        string         `json:"mode"`
	CacheSize   string         `json:"cache_size"`
	ItemsSynced map[string]int `json:"items_synced"`
	CachedItems map[string]int `json:"cached_items"`
	Errors      []string       `json:"errors"`
}

// SaveSyncMetadata overwrites the last-sync snapshot. Nil maps and slices
// are normalized so the file always carries explicit empty collections.
func (s *FilesystemStore) SaveSyncMetadata(meta SyncMetadata) error {
	path, err := s.ResolvePath(SyncMetadataFile)
	if err != nil {
		return err
	}

	if meta.ItemsSynced == nil {
		meta.ItemsSynced = map[string]int{}
	}
	if meta.CachedItems == nil {
		meta.CachedItems = map[string]int{}
	}
	if meta.Errors == nil {
		meta.Errors = []string{}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync metadata: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// LoadSyncMetadata reads the last-sync snapshot. A workspace that has never
// synced returns nil with no error.
func (s *FilesystemStore) LoadSyncMetadata() (*SyncMetadata, error) {
	path, err := s.ResolvePath(SyncMetadataFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sync metadata: %w", err)
	}

	var meta SyncMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync metadata: %w", err)
	}

	return &meta, nil
}
