package session

import (
	"github.com/spf13/cobra"
)

// Cmd is the session command group
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Manage parking sessions",
	Long:  `Start and stop street and garage parking sessions.`,
}

func init() {
	Cmd.AddCommand(startStreetCmd)
	Cmd.AddCommand(startGarageCmd)
	Cmd.AddCommand(stopStreetCmd)
	Cmd.AddCommand(stopGarageCmd)
	Cmd.AddCommand(showCmd)
}
