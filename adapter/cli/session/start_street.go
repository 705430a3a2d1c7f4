package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openpark/parkcore/adapter/cli"
	"github.com/openpark/parkcore/internal/parking/application/commands"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

var (
	streetOwner   string
	streetZone    string
	streetPlate   string
	streetVehicle string
	streetHours   int
	streetMinutes int
)

var startStreetCmd = &cobra.Command{
	Use:   "start-street",
	Short: "Start a street parking session",
	Long: `Start a prepaid street session in a zone. The fee is fixed by the
zone tariff and charged up front.

Examples:
  parkd session start-street --owner <uuid> --zone blue --plate AB-123-CD --hours 1 --minutes 30
  parkd session start-street --owner <uuid> --zone red --plate XY-987-ZW --minutes 45 --vehicle motorcycle`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateStreetSessionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ownerID, err := uuid.Parse(streetOwner)
		if err != nil {
			return fmt.Errorf("invalid owner id: %w", err)
		}
		vehicle, err := value_objects.ParseVehicleKind(streetVehicle)
		if err != nil {
			return err
		}

		s, err := app.CreateStreetSessionHandler.Handle(cmd.Context(), commands.CreateStreetSessionCommand{
			OwnerID:      ownerID,
			Vehicle:      vehicle,
			Plate:        streetPlate,
			ZoneID:       streetZone,
			PlannedHours: streetHours,
			PlannedMins:  streetMinutes,
		})
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		fmt.Printf("Session started: %s\n", s.ID())
		fmt.Printf("  zone:  %s\n", s.ZoneID())
		fmt.Printf("  plate: %s\n", s.Plate())
		fmt.Printf("  ends:  %s\n", s.PlannedEndAt().Local().Format("15:04"))
		fmt.Printf("  cost:  %s\n", s.Cost())
		return nil
	},
}

func init() {
	startStreetCmd.Flags().StringVar(&streetOwner, "owner", "", "owner id (required)")
	startStreetCmd.Flags().StringVar(&streetZone, "zone", "", "zone id (required)")
	startStreetCmd.Flags().StringVar(&streetPlate, "plate", "", "license plate (required)")
	startStreetCmd.Flags().StringVar(&streetVehicle, "vehicle", "car", "vehicle kind (car, motorcycle, truck)")
	startStreetCmd.Flags().IntVar(&streetHours, "hours", 0, "planned hours")
	startStreetCmd.Flags().IntVar(&streetMinutes, "minutes", 0, "planned minutes")
	_ = startStreetCmd.MarkFlagRequired("owner")
	_ = startStreetCmd.MarkFlagRequired("zone")
	_ = startStreetCmd.MarkFlagRequired("plate")
}
