package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background worker",
	Long: `Run the expiry sweeper in the foreground: overdue street sessions
are expired and owners close to their planned end are warned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ExpirySweeper == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		if err := app.ExpirySweeper.Start(ctx); err != nil {
			return fmt.Errorf("failed to start sweeper: %w", err)
		}
		defer app.ExpirySweeper.Stop()

		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
