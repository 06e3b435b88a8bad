// Package config loads workspace settings from .sprintkit/config.yaml and
// overlays credentials from the environment. Tokens never touch the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

// Defaults used when neither the file nor the environment sets a value.
const (
	DefaultVelocityWindow   = 3
	DefaultTimeoutSeconds   = 30
	DefaultFetchConcurrency = 4
)

// Environment variables recognized by Load. Access tokens are
// environment-only; the file cannot set them.
const (
	EnvAzureOrg     = "AZURE_DEVOPS_ORG"
	EnvAzureProject = "AZURE_DEVOPS_PROJECT"
	EnvAzureTeam    = "AZURE_DEVOPS_TEAM"
	EnvAzurePAT     = "AZURE_DEVOPS_PAT"
	EnvGitHubOwner  = "GITHUB_OWNER"
	EnvGitHubRepo   = "GITHUB_REPO"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

const dateLayout = "2006-01-02"

// AzureConfig identifies one Azure DevOps project.
type AzureConfig struct {
	Organization string `yaml:"organization,omitempty"`
	Project      string `yaml:"project,omitempty"`
	Team         string `yaml:"team,omitempty"`
	PAT          string `yaml:"-"`
}

// Configured reports whether any tracker setting is present. A workspace
// with none of them runs in offline mode against the cache alone.
func (a AzureConfig) Configured() bool {
	return a.Organization != "" || a.Project != "" || a.PAT != ""
}

// GitHubConfig identifies the repository used by the issue importer.
type GitHubConfig struct {
	Owner string `yaml:"owner,omitempty"`
	Repo  string `yaml:"repo,omitempty"`
	Token string `yaml:"-"`
}

// Configured reports whether an import source is set.
func (g GitHubConfig) Configured() bool {
	return g.Owner != "" && g.Repo != ""
}

// SprintConfig pins the active sprint so reports do not need to ask the
// tracker. Dates use the 2006-01-02 layout.
type SprintConfig struct {
	Name  string `yaml:"name,omitempty"`
	Path  string `yaml:"path,omitempty"`
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`
}

// IsSet reports whether any sprint field is configured.
func (s SprintConfig) IsSet() bool {
	return s.Name != "" || s.Path != "" || s.Start != "" || s.End != ""
}

// Resolve parses the configured sprint into a domain value.
func (s SprintConfig) Resolve() (workitem.Sprint, error) {
	sprint := workitem.Sprint{Name: s.Name, Path: s.Path}
	if s.Start != "" {
		start, err := time.Parse(dateLayout, s.Start)
		if err != nil {
			return workitem.Sprint{}, fmt.Errorf("invalid sprint start date %q: %w", s.Start, err)
		}
		sprint.StartDate = start
	}
	if s.End != "" {
		end, err := time.Parse(dateLayout, s.End)
		if err != nil {
			return workitem.Sprint{}, fmt.Errorf("invalid sprint end date %q: %w", s.End, err)
		}
		sprint.EndDate = end
	}
	return sprint, nil
}

// SyncConfig tunes sync and report behavior.
type SyncConfig struct {
	VelocityWindow   int `yaml:"velocity_window,omitempty"`
	TimeoutSeconds   int `yaml:"timeout_seconds,omitempty"`
	FetchConcurrency int `yaml:"fetch_concurrency,omitempty"`
}

// Config is the full workspace configuration.
type Config struct {
	Azure  AzureConfig  `yaml:"azure,omitempty"`
	GitHub GitHubConfig `yaml:"github,omitempty"`
	Sprint SprintConfig `yaml:"sprint,omitempty"`
	Sync   SyncConfig   `yaml:"sync,omitempty"`
}

// Timeout returns the per-call tracker time limit.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Sync.TimeoutSeconds) * time.Second
}

// Load reads the workspace config under root, overlays environment
// variables, and fills defaults. A missing file is not an error; the
// environment alone can configure a workspace.
func Load(root string) (*Config, error) {
	store := storage.NewFilesystemStore(root)
	path, err := store.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(path) // #nosec G304 -- Path is resolved and validated via ResolvePath
	switch {
	case os.IsNotExist(err):
		// Environment-only workspace.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAzureOrg); v != "" {
		cfg.Azure.Organization = v
	}
	if v := os.Getenv(EnvAzureProject); v != "" {
		cfg.Azure.Project = v
	}
	if v := os.Getenv(EnvAzureTeam); v != "" {
		cfg.Azure.Team = v
	}
	cfg.Azure.PAT = os.Getenv(EnvAzurePAT)

	if v := os.Getenv(EnvGitHubOwner); v != "" {
		cfg.GitHub.Owner = v
	}
	if v := os.Getenv(EnvGitHubRepo); v != "" {
		cfg.GitHub.Repo = v
	}
	cfg.GitHub.Token = os.Getenv(EnvGitHubToken)
}

func applyDefaults(cfg *Config) {
	if cfg.Sync.VelocityWindow <= 0 {
		cfg.Sync.VelocityWindow = DefaultVelocityWindow
	}
	if cfg.Sync.TimeoutSeconds <= 0 {
		cfg.Sync.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Sync.FetchConcurrency <= 0 {
		cfg.Sync.FetchConcurrency = DefaultFetchConcurrency
	}
}

// DefaultTemplate is the starter config written by sprintkit init.
const DefaultTemplate = `# sprintkit workspace configuration.
#
# Access tokens are read from the environment and never stored here:
#   AZURE_DEVOPS_PAT   personal access token for the tracker
#   GITHUB_TOKEN       token for the issue importer
azure:
  organization: ""
  project: ""
  team: ""
github:
  owner: ""
  repo: ""
sync:
  velocity_window: 3
  timeout_seconds: 30
  fetch_concurrency: 4
`
