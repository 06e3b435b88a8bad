package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/internal/infrastructure/config"
	"github.com/felixgeelhaar/sprintkit/pkg/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sprintkit workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}

		store := storage.NewFilesystemStore(root)
		if err := store.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		configPath, err := store.ResolvePath(storage.ConfigFile)
		if err != nil {
			return err
		}
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// G306: Use 0600 for files
			if err := os.WriteFile(configPath, []byte(config.DefaultTemplate), 0600); err != nil {
				return fmt.Errorf("failed to write config template: %w", err)
			}
			fmt.Printf("Wrote starter config: %s\n", configPath)
		}

		fmt.Printf("Initialized sprintkit workspace in %s\n", store.BaseDir())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
