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
	garageOwner   string
	garageID      string
	garagePlate   string
	garageVehicle string
)

var startGarageCmd = &cobra.Command{
	Use:   "start-garage",
	Short: "Start a garage parking session",
	Long: `Start a garage session. A space is reserved on entry; the stay is
priced and charged when the vehicle leaves.

Example:
  parkd session start-garage --owner <uuid> --garage <uuid> --plate AB-123-CD`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateGarageSessionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ownerID, err := uuid.Parse(garageOwner)
		if err != nil {
			return fmt.Errorf("invalid owner id: %w", err)
		}
		gID, err := uuid.Parse(garageID)
		if err != nil {
			return fmt.Errorf("invalid garage id: %w", err)
		}
		vehicle, err := value_objects.ParseVehicleKind(garageVehicle)
		if err != nil {
			return err
		}

		s, err := app.CreateGarageSessionHandler.Handle(cmd.Context(), commands.CreateGarageSessionCommand{
			OwnerID:  ownerID,
			Vehicle:  vehicle,
			Plate:    garagePlate,
			GarageID: gID,
		})
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		fmt.Printf("Session started: %s\n", s.ID())
		fmt.Printf("  garage:  %s\n", s.GarageID())
		fmt.Printf("  plate:   %s\n", s.Plate())
		fmt.Printf("  arrived: %s\n", s.ArrivalAt().Local().Format("15:04"))
		return nil
	},
}

func init() {
	startGarageCmd.Flags().StringVar(&garageOwner, "owner", "", "owner id (required)")
	startGarageCmd.Flags().StringVar(&garageID, "garage", "", "garage id (required)")
	startGarageCmd.Flags().StringVar(&garagePlate, "plate", "", "license plate (required)")
	startGarageCmd.Flags().StringVar(&garageVehicle, "vehicle", "car", "vehicle kind (car, motorcycle, truck)")
	_ = startGarageCmd.MarkFlagRequired("owner")
	_ = startGarageCmd.MarkFlagRequired("garage")
	_ = startGarageCmd.MarkFlagRequired("plate")
}
