package workitem

import "errors"

// Sentinel errors shared across tracker and storage layers.
var (
	// ErrMissingCredentials indicates the tracker configuration is incomplete.
	ErrMissingCredentials = errors.New("missing tracker credentials")

	// ErrAuthFailed indicates the tracker rejected the configured credentials.
	ErrAuthFailed = errors.New("tracker authentication failed")

	// ErrNotFound indicates a work item does not exist locally or remotely.
	ErrNotFound = errors.New("work item not found")

	// ErrNoSprintDates indicates the sprint has no resolvable start or end date.
	ErrNoSprintDates = errors.New("sprint has no start or end date")
)
