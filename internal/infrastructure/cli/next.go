package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/recommend"
)

// Flag variables for next command
var (
	nextSprint   string
	nextAssignee string
	nextJSON     bool
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Recommend the next task to pick up",
	Long: `Recommend the next task to pick up from the cached open Task and
Bug items. Lower scores win: priority dominates; bugs, quick wins,
urgent tags, and dependency-free items pull a candidate forward.

Examples:
  sprintkit next
  sprintkit next --assignee 'Sam Rivera'
  sprintkit next --sprint 'Webshop\Sprint 12' --json`,
	RunE: runNextCmd,
}

func runNextCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}

	opts := recommend.PoolOptions{
		IterationPath: nextSprint,
		Assignee:      nextAssignee,
	}
	if opts.IterationPath == "" && services.Config.Sprint.IsSet() {
		opts.IterationPath = services.Config.Sprint.Path
	}

	rec, err := services.Recommend.Next(cmd.Context(), opts)
	if err != nil {
		return MapError(err)
	}

	if nextJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printRecommendation(rec)
	return nil
}

func printRecommendation(rec recommend.Recommendation) {
	if rec.Best == nil {
		fmt.Println("No open tasks in the pool. Run 'sprintkit sync' or widen the filters.")
		return
	}

	best := rec.Best.Item
	fmt.Printf("Next up: #%d %s\n", best.ID, best.Title)
	fmt.Printf("- Type: %s, Priority: %d, State: %s\n", best.Type, best.EffectivePriority(), best.State)
	if best.RemainingWork > 0 {
		fmt.Printf("- Remaining: %.1fh\n", best.RemainingWork)
	}
	if best.URL != "" {
		fmt.Printf("- %s\n", best.URL)
	}
	fmt.Printf("- Score: %d (lower is better)\n", rec.Best.Score)

	if len(rec.Alternatives) > 0 {
		fmt.Println("\nAlternatives:")
		for _, alt := range rec.Alternatives {
			fmt.Printf("- #%d %s (score %d)\n", alt.Item.ID, alt.Item.Title, alt.Score)
		}
	}

	analysis := rec.Analysis
	fmt.Printf("\nPool: %d open tasks, %.1fh remaining, %d P1, %d P2, %d bugs\n",
		analysis.TotalTasks, analysis.TotalHours, analysis.P1Count, analysis.P2Count, analysis.BugCount)
}

func init() {
	nextCmd.Flags().StringVar(&nextSprint, "sprint", "",
		"Restrict the pool to one iteration path")
	nextCmd.Flags().StringVar(&nextAssignee, "assignee", "",
		"Keep items assigned to this name or unassigned")
	nextCmd.Flags().BoolVar(&nextJSON, "json", false,
		"Output in JSON format")
	RootCmd.AddCommand(nextCmd)
}
