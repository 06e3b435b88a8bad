package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintkit/pkg/application"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/analytics"
	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Flag variables for report command
var (
	reportCurrent bool
	reportSprint  string
	reportJSON    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a sprint analytics report from the cache",
	Long: `Generate a sprint analytics report from the cached work items.

The sprint scope comes from, in order: --sprint, --current (asks the
tracker for the active iteration), the sprint block in config.yaml, or
the entire cache when none is set.

Examples:
  sprintkit report
  sprintkit report --current
  sprintkit report --sprint 'Webshop\Sprint 12' --json`,
	RunE: runReportCmd,
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}

	opts := application.ReportOptions{
		UseCurrent:     reportCurrent,
		VelocityWindow: services.Config.Sync.VelocityWindow,
	}
	switch {
	case reportSprint != "":
		opts.Sprint = workitem.Sprint{Path: reportSprint}
	case reportCurrent:
		// Resolved by the report service through the tracker.
	default:
		if services.Config.Sprint.IsSet() {
			sprint, err := services.Config.Sprint.Resolve()
			if err != nil {
				return err
			}
			opts.Sprint = sprint
		}
	}

	report, err := services.Report.Generate(cmd.Context(), opts)
	if err != nil {
		return MapError(err)
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReportText(report)
	return nil
}

func printReportText(report *analytics.Report) {
	switch {
	case report.Sprint.Name != "":
		fmt.Printf("Sprint: %s\n", report.Sprint.Name)
	case report.Sprint.Path != "":
		fmt.Printf("Sprint: %s\n", report.Sprint.Path)
	default:
		fmt.Println("Sprint: (entire cache)")
	}

	stats := report.Statistics
	fmt.Printf("\nItems:        %d total, %d completed (%.1f%%)\n",
		stats.TotalItems, stats.CompletedItems, stats.CompletionRate)
	fmt.Printf("Story points: %.1f of %.1f completed (%.1f%%)\n",
		stats.CompletedStoryPoints, stats.TotalStoryPoints, stats.StoryPointsCompletion)
	fmt.Printf("Work logged:  %s of estimates\n", stats.WorkCompletion)
	fmt.Printf("Trend:        %s\n", stats.BurndownTrend)

	if len(stats.StateCounts) > 0 {
		fmt.Println("\nBy state:")
		for _, state := range sortedCountKeys(stats.StateCounts) {
			fmt.Printf("- %-12s %d\n", state+":", stats.StateCounts[state])
		}
	}

	if b := report.Burndown; b != nil {
		fmt.Printf("\nBurndown: day %d of %d (%s)\n", b.DaysElapsed, b.TotalDays, b.Status)
		fmt.Printf("- Remaining: %.1fh of %.1fh\n", b.RemainingWork, b.OriginalEstimate)
		fmt.Printf("- Burn rate: %.1fh/day actual vs %.1fh/day ideal\n", b.ActualBurnRate, b.IdealBurnRate)
		if b.ProjectedCompletionDays == analytics.ProjectionUnknown {
			fmt.Printf("- Projected completion: %s\n", b.ProjectedCompletionDays)
		} else {
			fmt.Printf("- Projected completion: %s days at the current rate\n", b.ProjectedCompletionDays)
		}
	}

	if report.Velocity.Sprints > 0 {
		fmt.Printf("\nVelocity: %.1f points/sprint over last %d (%s)\n",
			report.Velocity.Average, report.Velocity.Sprints, report.Velocity.Trend)
	}

	if len(report.Blockers) > 0 {
		fmt.Printf("\nBlockers (%d):\n", len(report.Blockers))
		for _, blocker := range report.Blockers {
			fmt.Printf("- #%d %s (%s, %d days): %s\n",
				blocker.ID, blocker.Title, blocker.Assignee, blocker.DaysBlocked, blocker.Reason)
		}
	}

	if len(report.Risks) > 0 {
		fmt.Println("\nRisks:")
		for _, risk := range report.Risks {
			fmt.Printf("- [%s] %s\n", risk.Level, risk.Message)
		}
	}

	if team := report.TeamPerformance; len(team.Members) > 0 {
		fmt.Printf("\nTeam (%d members, capacity %s, defect rate %.1f%%):\n",
			team.TeamSize, team.CapacityUtilization, team.DefectRate)
		for _, member := range team.Members {
			fmt.Printf("- %-20s %d items, %d done, %.1f pts completed\n",
				member.Assignee, member.Items, member.Completed, member.CompletedPoints)
		}
	}
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	reportCmd.Flags().BoolVar(&reportCurrent, "current", false,
		"Resolve the active iteration from the tracker")
	reportCmd.Flags().StringVar(&reportSprint, "sprint", "",
		"Iteration path to report on")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false,
		"Output in JSON format")
	RootCmd.AddCommand(reportCmd)
}
