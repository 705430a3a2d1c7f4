package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openpark/parkcore/adapter/cli"
	"github.com/openpark/parkcore/adapter/cli/session"
	"github.com/openpark/parkcore/internal/app"
	"github.com/openpark/parkcore/pkg/config"
	"github.com/openpark/parkcore/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = cfg.LogLevel
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := newContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.SetApp(cli.NewApp(container))
	cli.AddCommand(session.Cmd)
	cli.Execute(ctx)
}

// newContainer picks local SQLite mode when no database URL is configured.
func newContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.Container, error) {
	if cfg.LocalMode() {
		return app.NewLocalContainer(ctx, cfg, logger)
	}
	return app.NewContainer(ctx, cfg, logger)
}
