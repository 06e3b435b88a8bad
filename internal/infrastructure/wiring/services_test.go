package wiring

import (
	"testing"

	"github.com/felixgeelhaar/sprintkit/internal/infrastructure/config"
)

func clearTrackerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvAzureOrg, config.EnvAzureProject, config.EnvAzureTeam, config.EnvAzurePAT,
		config.EnvGitHubOwner, config.EnvGitHubRepo, config.EnvGitHubToken,
	} {
		t.Setenv(key, "")
	}
}

func TestBuildAppServices_OfflineWorkspace(t *testing.T) {
	clearTrackerEnv(t)

	services, err := BuildAppServices(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("BuildAppServices: %v", err)
	}

	if services.Tracker != nil {
		t.Error("an unconfigured workspace should have no tracker")
	}
	if services.Store == nil || services.Sync == nil || services.Report == nil ||
		services.Recommend == nil || services.Status == nil || services.Velocity == nil {
		t.Fatalf("expected all services wired, got %+v", services)
	}
	if services.Config.Sync.VelocityWindow != config.DefaultVelocityWindow {
		t.Errorf("VelocityWindow = %d, want default %d",
			services.Config.Sync.VelocityWindow, config.DefaultVelocityWindow)
	}
}

func TestBuildAppServices_ConfiguredTracker(t *testing.T) {
	clearTrackerEnv(t)
	t.Setenv(config.EnvAzureOrg, "acme")
	t.Setenv(config.EnvAzureProject, "webshop")
	t.Setenv(config.EnvAzurePAT, "secret")

	services, err := BuildAppServices(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("BuildAppServices: %v", err)
	}
	if services.Tracker == nil {
		t.Fatal("expected a tracker when all Azure settings are present")
	}
}

func TestBuildAppServices_PartialCredentialsFailLoudly(t *testing.T) {
	clearTrackerEnv(t)
	t.Setenv(config.EnvAzureOrg, "acme")

	if _, err := BuildAppServices(t.TempDir(), nil); err == nil {
		t.Fatal("an organization without project and token should be rejected")
	}
}
