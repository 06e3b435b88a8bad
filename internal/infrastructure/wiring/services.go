// Package wiring assembles the application services for one workspace root.
package wiring

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/sprintkit/internal/infrastructure/config"
	"github.com/felixgeelhaar/sprintkit/pkg/application"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker/azure"
)

// AppServices bundles the services the CLI commands run against. Tracker is
// nil when no Azure settings are configured; cache-only commands still work.
type AppServices struct {
	Config    *config.Config
	Store     *storage.FilesystemStore
	Tracker   tracker.Tracker
	Sync      *application.SyncService
	Report    *application.ReportService
	Recommend *application.RecommendService
	Status    *application.StatusService
	Velocity  *application.VelocityService
	Logger    *slog.Logger
}

// BuildAppServices constructs all services for the workspace at root. A
// partially configured tracker (some settings but not all) is an error so
// typos fail loudly instead of silently degrading to offline mode.
func BuildAppServices(root string, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store := storage.NewFilesystemStore(root)

	var trk tracker.Tracker
	var resolver tracker.SprintResolver
	if cfg.Azure.Configured() {
		client, err := azure.NewClient(azure.Config{
			Organization: cfg.Azure.Organization,
			Project:      cfg.Azure.Project,
			Team:         cfg.Azure.Team,
			PAT:          cfg.Azure.PAT,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build tracker client: %w", err)
		}
		resilient := tracker.NewResilient(client, cfg.Timeout())
		trk = resilient
		resolver = resilient
	}

	return &AppServices{
		Config:    cfg,
		Store:     store,
		Tracker:   trk,
		Sync:      application.NewSyncServiceWithConcurrency(trk, store, logger, cfg.Sync.FetchConcurrency),
		Report:    application.NewReportService(store, resolver, logger),
		Recommend: application.NewRecommendService(store, trk, logger),
		Status:    application.NewStatusService(store, logger),
		Velocity:  application.NewVelocityService(store, logger),
		Logger:    logger,
	}, nil
}
