package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openpark/parkcore/adapter/cli"
	"github.com/openpark/parkcore/internal/parking/application/commands"
)

var departureAt string

var stopStreetCmd = &cobra.Command{
	Use:   "stop-street [session-id]",
	Short: "Stop a street parking session",
	Long: `Stop an active street session early. The prepaid fee is not
refunded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CloseStreetSessionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		sessionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}

		s, err := app.CloseStreetSessionHandler.Handle(cmd.Context(), commands.CloseStreetSessionCommand{
			SessionID: sessionID,
		})
		if err != nil {
			return fmt.Errorf("failed to stop session: %w", err)
		}

		fmt.Printf("Session stopped: %s\n", s.ID())
		fmt.Printf("  cost: %s\n", s.Cost())
		return nil
	},
}

var stopGarageCmd = &cobra.Command{
	Use:   "stop-garage [session-id]",
	Short: "Stop a garage parking session",
	Long: `Stop an active garage session: the stay is priced, charged, and
the space is released.

Example:
  parkd session stop-garage <uuid> --departure 2026-09-01T18:30:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CloseGarageSessionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		sessionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}

		departure := time.Now().UTC()
		if departureAt != "" {
			departure, err = time.Parse(time.RFC3339, departureAt)
			if err != nil {
				return fmt.Errorf("invalid departure time (use RFC 3339): %w", err)
			}
		}

		s, err := app.CloseGarageSessionHandler.Handle(cmd.Context(), commands.CloseGarageSessionCommand{
			SessionID:   sessionID,
			DepartureAt: departure,
		})
		if err != nil {
			return fmt.Errorf("failed to stop session: %w", err)
		}

		fmt.Printf("Session stopped: %s\n", s.ID())
		fmt.Printf("  cost: %s\n", s.Cost())
		return nil
	},
}

func init() {
	stopGarageCmd.Flags().StringVar(&departureAt, "departure", "", "departure time (RFC 3339, default now)")
}
