package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, workitem.ErrMissingCredentials):
		return NewCLIError(
			"tracker credentials are missing",
			"Set AZURE_DEVOPS_ORG, AZURE_DEVOPS_PROJECT, and AZURE_DEVOPS_PAT, or run 'sprintkit doctor'",
			err,
		)
	case errors.Is(err, workitem.ErrAuthFailed):
		return NewCLIError(
			"the tracker rejected the credentials",
			"Check that the personal access token is valid and has work-item read scope",
			err,
		)
	case errors.Is(err, workitem.ErrNotFound):
		return NewCLIError(
			"work item not found in the cache",
			"Run 'sprintkit sync' to refresh the cache",
			err,
		)
	case errors.Is(err, workitem.ErrNoSprintDates):
		return NewCLIError(
			"sprint dates are not configured",
			"Add sprint start/end to .sprintkit/config.yaml or pass --current",
			err,
		)
	case errors.Is(err, tracker.ErrNotSupported):
		return NewCLIError(
			"the tracker cannot resolve the current sprint",
			"Configure the sprint in .sprintkit/config.yaml instead of --current",
			err,
		)
	}

	return err
}
