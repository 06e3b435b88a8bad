package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Record and inspect sprint velocity history",
}

var velocityRecordCmd = &cobra.Command{
	Use:   "record <sprint> <points>",
	Short: "Record the completed story points of a finished sprint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("points must be a number, got %q", args[1])
		}

		services, err := loadServices()
		if err != nil {
			return err
		}

		record, err := services.Velocity.Record(args[0], points)
		if err != nil {
			return MapError(err)
		}

		fmt.Printf("Recorded %s: %.1f points\n", record.Sprint, record.Points)
		return nil
	},
}

var velocityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sprints and the rolling average",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}

		history, err := services.Velocity.History()
		if err != nil {
			return MapError(err)
		}
		if len(history) == 0 {
			fmt.Println("No velocity recorded yet. Run 'sprintkit velocity record <sprint> <points>'.")
			return nil
		}

		for _, record := range history {
			fmt.Printf("- %-20s %.1f points (recorded %s)\n",
				record.Sprint, record.Points, record.RecordedAt.Format("2006-01-02"))
		}

		summary, err := services.Velocity.Summary(services.Config.Sync.VelocityWindow)
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("\nAverage over last %d: %.1f points/sprint (%s)\n",
			summary.Sprints, summary.Average, summary.Trend)
		return nil
	},
}

func init() {
	velocityCmd.AddCommand(velocityRecordCmd)
	velocityCmd.AddCommand(velocityListCmd)
	RootCmd.AddCommand(velocityCmd)
}
