package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/sprintkit/internal/infrastructure/config"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return buf.String()
}

// resetFlags clears command flag state between in-process executions;
// values parsed in one run would otherwise leak into the next.
func resetFlags() {
	workspaceDir = ""
	verbose = false
	syncQuick = false
	reportCurrent = false
	reportSprint = ""
	reportJSON = false
	nextSprint = ""
	nextAssignee = ""
	nextJSON = false
	statusJSON = false
	watchSync = false
	importSince = 0
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()

	resetFlags()
	RootCmd.SetOut(new(bytes.Buffer))
	RootCmd.SetErr(new(bytes.Buffer))
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

func clearTrackerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvAzureOrg, config.EnvAzureProject, config.EnvAzureTeam, config.EnvAzurePAT,
		config.EnvGitHubOwner, config.EnvGitHubRepo, config.EnvGitHubToken,
	} {
		t.Setenv(key, "")
	}
}

// newWorkspace initializes a temp workspace with a few cached items.
func newWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	store := storage.NewFilesystemStore(dir)
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	now := time.Now()
	items := []workitem.WorkItem{
		{ID: 1, Title: "Checkout flow", Type: workitem.TypeUserStory, State: workitem.StateDone,
			Assignee: "Sam Rivera", StoryPoints: 5, IterationPath: "Webshop\\Sprint 12",
			CreatedDate: now.Add(-240 * time.Hour), ChangedDate: now.Add(-24 * time.Hour)},
		{ID: 2, Title: "Payment retries", Type: workitem.TypeTask, State: workitem.StateActive,
			Assignee: "Sam Rivera", RemainingWork: 6, OriginalEstimate: 10, CompletedWork: 4,
			IterationPath: "Webshop\\Sprint 12",
			CreatedDate:   now.Add(-200 * time.Hour), ChangedDate: now.Add(-2 * time.Hour)},
		{ID: 3, Title: "Cart total is wrong", Type: workitem.TypeBug, State: workitem.StateNew,
			Priority: 1, RemainingWork: 2, IterationPath: "Webshop\\Sprint 12",
			CreatedDate: now.Add(-48 * time.Hour), ChangedDate: now.Add(-1 * time.Hour)},
	}
	for _, item := range items {
		category, ok := workitem.CategoryFor(item.Type)
		if !ok {
			t.Fatalf("no category for %s", item.Type)
		}
		if err := store.Put(category, item); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	return dir
}
