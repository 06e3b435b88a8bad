package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/pkg/application"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

var syncQuick bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync work items from the tracker into the local cache",
	Long: `Sync work items from the tracker into the local cache.

A full sync queries each work item type changed in the last 30 days and
evicts cache entries older than 30 days. With --quick, one combined query
covers the last 7 days and nothing is evicted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}

		var result *application.SyncResult
		if syncQuick {
			result, err = services.Sync.Quick(cmd.Context())
		} else {
			result, err = services.Sync.Full(cmd.Context())
		}
		if err != nil {
			return MapError(err)
		}

		printSyncResult(result)
		return nil
	},
}

func printSyncResult(result *application.SyncResult) {
	fmt.Printf("Sync complete (%s mode) in %s\n", result.Mode, result.Duration.Round(time.Millisecond))
	for _, category := range workitem.AllCategories() {
		fmt.Printf("- %-9s %d synced, %d cached\n",
			category.String()+":", result.ItemsSynced[category], result.CachedItems[category])
	}
	if result.Evicted > 0 {
		fmt.Printf("Evicted %d stale entries\n", result.Evicted)
	}
	fmt.Printf("Cache size: %s\n", result.CacheSize)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncQuick, "quick", false,
		"Only fetch items changed in the last 7 days, skip eviction")
	RootCmd.AddCommand(syncCmd)
}
