package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/internal/infrastructure/config"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/wiql"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker/azure"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of the sprintkit workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Running sprintkit doctor...")

		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}
		store := storage.NewFilesystemStore(root)

		hasIssues := false
		check := func(name string, fn func() error) {
			fmt.Printf("Checking %s... ", name)
			if err := fn(); err != nil {
				fmt.Printf("FAIL\n  Error: %v\n", err)
				hasIssues = true
			} else {
				fmt.Printf("PASS\n")
			}
		}

		check("Workspace", func() error {
			if !store.IsInitialized() {
				return fmt.Errorf(".sprintkit directory not found (run 'sprintkit init')")
			}
			return nil
		})

		var cfg *config.Config
		check("Config File", func() error {
			var err error
			cfg, err = config.Load(root)
			return err
		})

		check("Tracker Credentials", func() error {
			if cfg == nil {
				return fmt.Errorf("config did not load")
			}
			if !cfg.Azure.Configured() {
				fmt.Printf("(offline mode) ")
				return nil
			}
			if cfg.Azure.Organization == "" || cfg.Azure.Project == "" || cfg.Azure.PAT == "" {
				return fmt.Errorf("partial tracker settings: organization, project, and AZURE_DEVOPS_PAT must all be set")
			}
			return nil
		})

		check("Tracker Reachability", func() error {
			if cfg == nil || !cfg.Azure.Configured() {
				fmt.Printf("(skipped) ")
				return nil
			}
			client, err := azure.NewClient(azure.Config{
				Organization: cfg.Azure.Organization,
				Project:      cfg.Azure.Project,
				Team:         cfg.Azure.Team,
				PAT:          cfg.Azure.PAT,
			})
			if err != nil {
				return err
			}
			probe := tracker.NewResilient(client, cfg.Timeout())
			query := wiql.New(wiql.FieldID).WhereChangedSince(time.Now()).String()
			_, err = probe.Query(cmd.Context(), query)
			return err
		})

		check("Sync Metadata", func() error {
			meta, err := store.LoadSyncMetadata()
			if err != nil {
				return err
			}
			if meta == nil {
				fmt.Printf("(never synced) ")
			}
			return nil
		})

		check("Velocity History", func() error {
			_, err := store.LoadVelocityHistory()
			return err
		})

		check("Cache", func() error {
			counts, err := store.Counts()
			if err != nil {
				return err
			}
			total := 0
			for _, n := range counts {
				total += n
			}
			fmt.Printf("(%d items) ", total)
			return nil
		})

		if hasIssues {
			fmt.Println("\nIssues found! Fix them before syncing.")
			return fmt.Errorf("doctor found issues")
		}
		fmt.Println("\nEverything looks good!")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
