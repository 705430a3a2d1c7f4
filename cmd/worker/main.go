package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openpark/parkcore/internal/app"
	"github.com/openpark/parkcore/pkg/config"
	"github.com/openpark/parkcore/pkg/observability"
)

func main() {
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
	logCfg.ServiceName = "parkcore-worker"
	logger := observability.NewLogger(logCfg)

	logger.Info("starting parkcore worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var container *app.Container
	if cfg.LocalMode() {
		container, err = app.NewLocalContainer(ctx, cfg, logger)
	} else {
		container, err = app.NewContainer(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.ExpirySweeper.Start(ctx); err != nil {
		logger.Error("failed to start expiry sweeper", "error", err)
		os.Exit(1)
	}

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, container, logger)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")
}

// startHealthServer exposes /healthz with database and Redis checks.
func startHealthServer(ctx context.Context, addr string, container *app.Container, logger *slog.Logger) {
	registry := observability.NewHealthRegistry()

	if container.DB != nil {
		registry.Register("postgres", func(ctx context.Context) observability.HealthCheckResult {
			if err := container.DB.Ping(ctx); err != nil {
				return observability.Unhealthy(err)
			}
			return observability.Healthy()
		})
	}
	if container.SQLiteDB != nil {
		registry.Register("sqlite", func(ctx context.Context) observability.HealthCheckResult {
			if err := container.SQLiteDB.PingContext(ctx); err != nil {
				return observability.Unhealthy(err)
			}
			return observability.Healthy()
		})
	}
	if container.RedisClient != nil {
		registry.Register("redis", func(ctx context.Context) observability.HealthCheckResult {
			if err := container.RedisClient.Ping(ctx).Err(); err != nil {
				return observability.Unhealthy(err)
			}
			return observability.Healthy()
		})
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", registry.Handler(2*time.Second))

	healthSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
