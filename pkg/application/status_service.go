package application

import (
	"log/slog"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/analytics"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

// WorkspaceStatus is a snapshot of the local workspace: whether it is
// initialized, what the last sync did, and what the cache holds now.
// LastSync is nil when the workspace has never synced.
type WorkspaceStatus struct {
	Initialized     bool
	LastSync        *storage.SyncMetadata
	CachedItems     map[workitem.Category]int
	CacheSize       string
	VelocityRecords []analytics.VelocityRecord
}

type StatusService struct {
	store  *storage.FilesystemStore
	logger *slog.Logger
}

func NewStatusService(store *storage.FilesystemStore, logger *slog.Logger) *StatusService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusService{store: store, logger: logger}
}

// Status inspects the workspace. Failures on individual reads degrade the
// snapshot instead of failing it; an uninitialized workspace short-circuits.
func (s *StatusService) Status() (*WorkspaceStatus, error) {
	status := &WorkspaceStatus{Initialized: s.store.IsInitialized()}
	if !status.Initialized {
		return status, nil
	}

	meta, err := s.store.LoadSyncMetadata()
	if err != nil {
		s.logger.Warn("failed to load sync metadata", "error", err)
	} else {
		status.LastSync = meta
	}

	counts, err := s.store.Counts()
	if err != nil {
		s.logger.Warn("failed to count cached items", "error", err)
	} else {
		status.CachedItems = counts
	}

	size, err := s.store.SizeEstimate()
	if err != nil {
		s.logger.Warn("failed to estimate cache size", "error", err)
		size = "unknown"
	}
	status.CacheSize = size

	history, err := s.store.LoadVelocityHistory()
	if err != nil {
		s.logger.Warn("failed to load velocity history", "error", err)
	} else {
		status.VelocityRecords = history
	}

	return status, nil
}
