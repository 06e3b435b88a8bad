package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != 1 {
			t.Fatalf("expected exit code 1, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		if !errors.Is(e, cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
		wantCLI  bool
	}{
		{
			name: "nil returns nil",
			err:  nil,
		},
		{
			name:     "ErrMissingCredentials",
			err:      workitem.ErrMissingCredentials,
			wantHint: "Set AZURE_DEVOPS_ORG, AZURE_DEVOPS_PROJECT, and AZURE_DEVOPS_PAT, or run 'sprintkit doctor'",
			wantCLI:  true,
		},
		{
			name:     "ErrAuthFailed",
			err:      workitem.ErrAuthFailed,
			wantHint: "Check that the personal access token is valid and has work-item read scope",
			wantCLI:  true,
		},
		{
			name:     "ErrNotFound",
			err:      workitem.ErrNotFound,
			wantHint: "Run 'sprintkit sync' to refresh the cache",
			wantCLI:  true,
		},
		{
			name:     "ErrNoSprintDates",
			err:      workitem.ErrNoSprintDates,
			wantHint: "Add sprint start/end to .sprintkit/config.yaml or pass --current",
			wantCLI:  true,
		},
		{
			name:     "ErrNotSupported",
			err:      tracker.ErrNotSupported,
			wantHint: "Configure the sprint in .sprintkit/config.yaml instead of --current",
			wantCLI:  true,
		},
		{
			name:     "wrapped ErrMissingCredentials",
			err:      fmt.Errorf("sync failed: %w", workitem.ErrMissingCredentials),
			wantHint: "Set AZURE_DEVOPS_ORG, AZURE_DEVOPS_PROJECT, and AZURE_DEVOPS_PAT, or run 'sprintkit doctor'",
			wantCLI:  true,
		},
		{
			name: "unmapped error passes through",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)
			if tt.err == nil {
				if result != nil {
					t.Fatal("expected nil")
				}
				return
			}
			if !tt.wantCLI {
				if result != tt.err {
					t.Fatal("unmapped error should pass through unchanged")
				}
				return
			}
			var cliErr *CLIError
			if !errors.As(result, &cliErr) {
				t.Fatalf("expected CLIError, got %T", result)
			}
			if cliErr.Hint != tt.wantHint {
				t.Fatalf("hint = %q, want %q", cliErr.Hint, tt.wantHint)
			}
			// Verify original error is preserved
			if !errors.Is(cliErr, tt.err) {
				t.Fatal("CLIError should wrap original error")
			}
		})
	}
}
