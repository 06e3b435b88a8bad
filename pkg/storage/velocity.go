package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/analytics"
)

// LoadVelocityHistory reads the recorded sprint velocities, oldest first.
// A workspace with no history yet returns an empty slice.
func (s *FilesystemStore) LoadVelocityHistory() ([]analytics.VelocityRecord, error) {
	retryer := retry.New[[]analytics.VelocityRecord](s.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]analytics.VelocityRecord, error) {
		path, err := s.ResolvePath(VelocityFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return []analytics.VelocityRecord{}, nil
			}
			return nil, fmt.Errorf("failed to read velocity history: %w", err)
		}

		var history []analytics.VelocityRecord
		if err := json.Unmarshal(data, &history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal velocity history: %w", err)
		}

		return history, nil
	})
}

// SaveVelocityHistory overwrites the velocity history file.
func (s *FilesystemStore) SaveVelocityHistory(history []analytics.VelocityRecord) error {
	path, err := s.ResolvePath(VelocityFile)
	if err != nil {
		return err
	}

	if history == nil {
		history = []analytics.VelocityRecord{}
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal velocity history: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// AppendVelocity records one sprint's velocity. Recording a sprint name
// that already exists replaces its entry in place, so re-running a record
// command corrects rather than duplicates.
func (s *FilesystemStore) AppendVelocity(record analytics.VelocityRecord) error {
	history, err := s.LoadVelocityHistory()
	if err != nil {
		return err
	}

	replaced := false
	for i := range history {
		if history[i].Sprint == record.Sprint {
			history[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		history = append(history, record)
	}

	return s.SaveVelocityHistory(history)
}
