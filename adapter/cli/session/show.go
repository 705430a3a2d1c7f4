package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openpark/parkcore/adapter/cli"
	domain "github.com/openpark/parkcore/internal/parking/domain/session"
)

var showCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a parking session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SessionRepo == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		sessionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}

		s, err := app.SessionRepo.FindByID(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		fmt.Printf("Session %s\n", s.ID())
		fmt.Printf("  owner:   %s\n", s.OwnerID())
		fmt.Printf("  kind:    %s\n", s.Kind())
		fmt.Printf("  status:  %s\n", s.Status())
		fmt.Printf("  plate:   %s\n", s.Plate())
		fmt.Printf("  payment: %s\n", s.PaymentStatus())
		fmt.Printf("  cost:    %s\n", s.Cost())

		switch s.Kind() {
		case domain.KindStreet:
			fmt.Printf("  zone:    %s\n", s.ZoneID())
			fmt.Printf("  ends:    %s\n", s.PlannedEndAt().Local().Format(time.RFC3339))
			if s.IsActive() {
				if remaining := s.RemainingAt(time.Now().UTC()); remaining > 0 {
					fmt.Printf("  left:    %s\n", remaining.Round(time.Minute))
				}
			}
		case domain.KindGarage:
			fmt.Printf("  garage:  %s\n", s.GarageID())
			fmt.Printf("  arrived: %s\n", s.ArrivalAt().Local().Format(time.RFC3339))
			if d := s.DepartureAt(); d != nil {
				fmt.Printf("  left at: %s\n", d.Local().Format(time.RFC3339))
			}
		}
		return nil
	},
}
