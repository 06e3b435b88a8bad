package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/internal/infrastructure/watch"
	"github.com/felixgeelhaar/sprintkit/pkg/application"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Flag variables for watch command
var (
	watchSync     bool
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the cache and regenerate the report on change",
	Long: `Watch the cache directory and reprint the sprint report whenever
entries change. With --sync, a quick sync runs on an interval so the
cache keeps moving while you watch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		if !services.Store.IsInitialized() {
			return NewCLIError("workspace not initialized", "Run 'sprintkit init' first", nil)
		}
		if watchSync && services.Tracker == nil {
			return MapError(fmt.Errorf("no tracker configured: %w", workitem.ErrMissingCredentials))
		}

		opts := application.ReportOptions{VelocityWindow: services.Config.Sync.VelocityWindow}
		if services.Config.Sprint.IsSet() {
			sprint, err := services.Config.Sprint.Resolve()
			if err != nil {
				return err
			}
			opts.Sprint = sprint
		}

		emitReport := func() {
			report, err := services.Report.Generate(cmd.Context(), opts)
			if err != nil {
				fmt.Printf("Report failed: %v\n", err)
				return
			}
			printReportText(report)
		}

		watcher, err := watch.NewCacheWatcher(0, func(string) {
			fmt.Printf("\nCache changed at %s\n", time.Now().Format("15:04:05"))
			emitReport()
		})
		if err != nil {
			return err
		}
		if err := watcher.Watch(services.Store.CacheRoot()); err != nil {
			return err
		}

		fmt.Printf("Watching %s for changes... (Periodic sync: %v)\n",
			services.Store.CacheRoot(), watchSync)
		emitReport()

		if watchSync {
			go func() {
				ticker := time.NewTicker(watchInterval)
				defer ticker.Stop()
				for {
					select {
					case <-cmd.Context().Done():
						return
					case <-ticker.C:
						if _, err := services.Sync.Quick(cmd.Context()); err != nil {
							fmt.Printf("Quick sync failed: %v\n", err)
						}
					}
				}
			}()
		}

		return watcher.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchSync, "sync", false,
		"Run a quick sync on an interval while watching")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Minute,
		"Quick sync interval used with --sync")
	RootCmd.AddCommand(watchCmd)
}
