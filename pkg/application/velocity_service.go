package application

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/analytics"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

// VelocityService maintains the recorded story-point history that feeds
// velocity trends.
type VelocityService struct {
	store  *storage.FilesystemStore
	logger *slog.Logger
}

func NewVelocityService(store *storage.FilesystemStore, logger *slog.Logger) *VelocityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VelocityService{store: store, logger: logger}
}

// Record stores one sprint's completed points. Recording the same sprint
// again replaces the earlier value.
func (s *VelocityService) Record(sprint string, points float64) (analytics.VelocityRecord, error) {
	if sprint == "" {
		return analytics.VelocityRecord{}, fmt.Errorf("sprint name is required")
	}
	if points < 0 {
		return analytics.VelocityRecord{}, fmt.Errorf("points cannot be negative")
	}

	record := analytics.VelocityRecord{Sprint: sprint, Points: points, RecordedAt: time.Now()}
	if err := s.store.AppendVelocity(record); err != nil {
		return analytics.VelocityRecord{}, err
	}

	s.logger.Info("velocity recorded", "sprint", sprint, "points", points)
	return record, nil
}

// History returns every recorded sprint, oldest first.
func (s *VelocityService) History() ([]analytics.VelocityRecord, error) {
	return s.store.LoadVelocityHistory()
}

// Summary computes the rolling average and trend over the given window. A
// window of zero or less uses the default.
func (s *VelocityService) Summary(window int) (analytics.Velocity, error) {
	history, err := s.store.LoadVelocityHistory()
	if err != nil {
		return analytics.Velocity{}, err
	}
	return analytics.ComputeVelocity(history, window), nil
}
