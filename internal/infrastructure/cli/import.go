package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/pkg/application"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker/github"
)

// Flag variables for import command
var importSince time.Duration

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import work items from an external source into the cache",
}

var importGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Import repository issues as work items",
	Long: `Import GitHub issues into the work-item cache. Open issues become
New items, closed ones Closed; an issue labeled bug becomes a Bug,
everything else a Task. Configure the repository in config.yaml or via
GITHUB_OWNER and GITHUB_REPO, with an optional GITHUB_TOKEN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}

		if !services.Config.GitHub.Configured() {
			return NewCLIError(
				"no import source configured",
				"Set github owner/repo in .sprintkit/config.yaml or GITHUB_OWNER and GITHUB_REPO",
				nil,
			)
		}

		importer, err := github.NewImporter(cmd.Context(), github.Config{
			Owner: services.Config.GitHub.Owner,
			Repo:  services.Config.GitHub.Repo,
			Token: services.Config.GitHub.Token,
		})
		if err != nil {
			return MapError(err)
		}

		service := application.NewImportService(importer, services.Store, services.Logger)

		var since time.Time
		if importSince > 0 {
			since = time.Now().Add(-importSince)
		}
		result, err := service.Run(cmd.Context(), since)
		if err != nil {
			return MapError(err)
		}

		fmt.Printf("Imported %d items from %s/%s\n",
			result.Total(), services.Config.GitHub.Owner, services.Config.GitHub.Repo)
		for _, category := range workitem.AllCategories() {
			if n := result.Imported[category]; n > 0 {
				fmt.Printf("- %-9s %d\n", category.String()+":", n)
			}
		}
		if result.Skipped > 0 {
			fmt.Printf("Skipped %d items without a cache category\n", result.Skipped)
		}
		if len(result.Errors) > 0 {
			fmt.Printf("\nWarnings (%d):\n", len(result.Errors))
			for _, msg := range result.Errors {
				fmt.Printf("  - %s\n", msg)
			}
		}
		return nil
	},
}

func init() {
	importGitHubCmd.Flags().DurationVar(&importSince, "since", 0,
		"Only import issues updated within this duration (e.g. 720h)")
	importCmd.AddCommand(importGitHubCmd)
	RootCmd.AddCommand(importCmd)
}
