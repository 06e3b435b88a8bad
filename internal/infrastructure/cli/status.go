package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/pkg/application"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/analytics"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

// Flag variables for status command
var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workspace and cache state",
	Long: `Show the workspace and cache state: when the last sync ran, what it
synced, and what the cache holds now.

Examples:
  sprintkit status
  sprintkit status --json`,
	RunE: runStatusCmd,
}

// statusJSONOutput represents the JSON output format for status
type statusJSONOutput struct {
	Initialized bool                       `json:"initialized"`
	LastSync    *storage.SyncMetadata      `json:"last_sync,omitempty"`
	CachedItems map[string]int             `json:"cached_items"`
	CacheSize   string                     `json:"cache_size,omitempty"`
	Velocity    []analytics.VelocityRecord `json:"velocity,omitempty"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}

	status, err := services.Status.Status()
	if err != nil {
		return MapError(err)
	}

	if statusJSON {
		return outputStatusJSON(status)
	}
	outputStatusText(status)
	return nil
}

func outputStatusJSON(status *application.WorkspaceStatus) error {
	output := statusJSONOutput{
		Initialized: status.Initialized,
		LastSync:    status.LastSync,
		CachedItems: map[string]int{},
		CacheSize:   status.CacheSize,
		Velocity:    status.VelocityRecords,
	}
	for category, count := range status.CachedItems {
		output.CachedItems[category.String()] = count
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputStatusText(status *application.WorkspaceStatus) {
	if !status.Initialized {
		fmt.Println("Workspace not initialized. Run 'sprintkit init'.")
		return
	}

	if status.LastSync == nil {
		fmt.Println("Last sync: never (run 'sprintkit sync')")
	} else {
		fmt.Printf("Last sync: %s (%s mode)\n",
			status.LastSync.Timestamp.Format(time.RFC3339), status.LastSync.Mode)
		if len(status.LastSync.Errors) > 0 {
			fmt.Printf("- %d warnings recorded\n", len(status.LastSync.Errors))
		}
	}

	fmt.Printf("Cache size: %s\n", status.CacheSize)
	fmt.Println("Cached items:")
	for _, category := range workitem.AllCategories() {
		fmt.Printf("- %-9s %d\n", category.String()+":", status.CachedItems[category])
	}

	if n := len(status.VelocityRecords); n > 0 {
		latest := status.VelocityRecords[n-1]
		fmt.Printf("Velocity history: %d sprints (latest %s: %.1f points)\n",
			n, latest.Sprint, latest.Points)
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false,
		"Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
