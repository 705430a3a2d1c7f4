package cli

import (
	"github.com/openpark/parkcore/internal/app"
	"github.com/openpark/parkcore/internal/parking/application/commands"
	"github.com/openpark/parkcore/internal/parking/application/workers"
	"github.com/openpark/parkcore/internal/parking/domain/session"
)

// App holds the CLI application dependencies.
type App struct {
	// Session command handlers
	CreateStreetSessionHandler *commands.CreateStreetSessionHandler
	CreateGarageSessionHandler *commands.CreateGarageSessionHandler
	CloseStreetSessionHandler  *commands.CloseStreetSessionHandler
	CloseGarageSessionHandler  *commands.CloseGarageSessionHandler
	SweepExpiredHandler        *commands.SweepExpiredHandler

	// Direct lookups
	SessionRepo session.Repository

	// Background workers
	ExpirySweeper *workers.ExpirySweeper
}

// NewApp builds the CLI application from a wired container.
func NewApp(c *app.Container) *App {
	return &App{
		CreateStreetSessionHandler: c.CreateStreetSessionHandler,
		CreateGarageSessionHandler: c.CreateGarageSessionHandler,
		CloseStreetSessionHandler:  c.CloseStreetSessionHandler,
		CloseGarageSessionHandler:  c.CloseGarageSessionHandler,
		SweepExpiredHandler:        c.SweepExpiredHandler,
		SessionRepo:                c.SessionRepo,
		ExpirySweeper:              c.ExpirySweeper,
	}
}

var application *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	application = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return application
}
