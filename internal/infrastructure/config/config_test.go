package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAzureOrg, EnvAzureProject, EnvAzureTeam, EnvAzurePAT,
		EnvGitHubOwner, EnvGitHubRepo, EnvGitHubToken,
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, storage.SprintkitDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, storage.ConfigFile), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAzureOrg, "acme")
	t.Setenv(EnvAzureProject, "webshop")
	t.Setenv(EnvAzurePAT, "secret-pat")
	t.Setenv(EnvGitHubToken, "gh-token")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Azure.Organization != "acme" {
		t.Errorf("Organization = %q, want %q", cfg.Azure.Organization, "acme")
	}
	if cfg.Azure.Project != "webshop" {
		t.Errorf("Project = %q, want %q", cfg.Azure.Project, "webshop")
	}
	if cfg.Azure.PAT != "secret-pat" {
		t.Errorf("PAT = %q, want %q", cfg.Azure.PAT, "secret-pat")
	}
	if cfg.GitHub.Token != "gh-token" {
		t.Errorf("Token = %q, want %q", cfg.GitHub.Token, "gh-token")
	}
	if cfg.Sync.VelocityWindow != DefaultVelocityWindow {
		t.Errorf("VelocityWindow = %d, want default %d", cfg.Sync.VelocityWindow, DefaultVelocityWindow)
	}
	if cfg.Sync.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds = %d, want default %d", cfg.Sync.TimeoutSeconds, DefaultTimeoutSeconds)
	}
	if cfg.Sync.FetchConcurrency != DefaultFetchConcurrency {
		t.Errorf("FetchConcurrency = %d, want default %d", cfg.Sync.FetchConcurrency, DefaultFetchConcurrency)
	}
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeConfig(t, root, `azure:
  organization: acme
  project: webshop
  team: checkout
sprint:
  name: Sprint 12
  path: Webshop\Sprint 12
  start: "2026-08-03"
  end: "2026-08-17"
sync:
  velocity_window: 5
  timeout_seconds: 10
`)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Azure.Team != "checkout" {
		t.Errorf("Team = %q, want %q", cfg.Azure.Team, "checkout")
	}
	if cfg.Azure.PAT != "" {
		t.Errorf("PAT should never come from the file, got %q", cfg.Azure.PAT)
	}
	if cfg.Sync.VelocityWindow != 5 {
		t.Errorf("VelocityWindow = %d, want 5", cfg.Sync.VelocityWindow)
	}
	if got := cfg.Timeout(); got != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", got)
	}

	sprint, err := cfg.Sprint.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sprint.Name != "Sprint 12" {
		t.Errorf("sprint.Name = %q, want %q", sprint.Name, "Sprint 12")
	}
	if !sprint.HasDates() {
		t.Error("sprint should have both dates")
	}
	if got := sprint.TotalDays(); got != 14 {
		t.Errorf("TotalDays = %d, want 14", got)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeConfig(t, root, "azure:\n  organization: file-org\n  project: file-project\n")
	t.Setenv(EnvAzureOrg, "env-org")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Azure.Organization != "env-org" {
		t.Errorf("Organization = %q, want env override %q", cfg.Azure.Organization, "env-org")
	}
	if cfg.Azure.Project != "file-project" {
		t.Errorf("Project = %q, want file value %q", cfg.Azure.Project, "file-project")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeConfig(t, root, "azure: [not a mapping")

	if _, err := Load(root); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoad_TemplateParses(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	writeConfig(t, root, DefaultTemplate)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Azure.Configured() {
		t.Error("the blank template should leave the tracker unconfigured")
	}
	if cfg.Sync.VelocityWindow != 3 {
		t.Errorf("VelocityWindow = %d, want 3", cfg.Sync.VelocityWindow)
	}
}

func TestSprintConfig_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		sprint  SprintConfig
		wantErr bool
	}{
		{name: "empty", sprint: SprintConfig{}},
		{name: "name only", sprint: SprintConfig{Name: "Sprint 1"}},
		{name: "valid dates", sprint: SprintConfig{Start: "2026-08-03", End: "2026-08-17"}},
		{name: "bad start", sprint: SprintConfig{Start: "03.08.2026"}, wantErr: true},
		{name: "bad end", sprint: SprintConfig{End: "next friday"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sprint.Resolve()
			if (err != nil) != tt.wantErr {
				t.Errorf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigured(t *testing.T) {
	if (AzureConfig{}).Configured() {
		t.Error("empty azure config should not report configured")
	}
	if !(AzureConfig{PAT: "x"}).Configured() {
		t.Error("a lone PAT should still count as configured")
	}
	if (GitHubConfig{Owner: "acme"}).Configured() {
		t.Error("github config needs both owner and repo")
	}
	if !(GitHubConfig{Owner: "acme", Repo: "webshop"}).Configured() {
		t.Error("owner plus repo should report configured")
	}
}
