package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/openpark/parkcore/internal/parking/application/commands"
)

// SweeperConfig configures the expiry sweeper schedule.
type SweeperConfig struct {
	// Interval between sweeps.
	Interval time.Duration

	// TimeLowThreshold is how close to its planned end a street session
	// must be before the owner gets a time-low warning.
	TimeLowThreshold time.Duration
}

// DefaultSweeperConfig returns a sensible default configuration.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:         30 * time.Second,
		TimeLowThreshold: 10 * time.Minute,
	}
}

// ExpirySweeper periodically expires overdue street sessions and sends
// time-low warnings. Singleton mode guarantees a tick is skipped while the
// previous sweep is still running, so the sweep never overlaps itself.
type ExpirySweeper struct {
	sweep     *commands.SweepExpiredHandler
	timeLow   *commands.NotifyTimeLowHandler
	cfg       SweeperConfig
	logger    *slog.Logger
	scheduler gocron.Scheduler
}

// NewExpirySweeper creates a new ExpirySweeper.
func NewExpirySweeper(sweep *commands.SweepExpiredHandler, timeLow *commands.NotifyTimeLowHandler, cfg SweeperConfig, logger *slog.Logger) *ExpirySweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpirySweeper{
		sweep:   sweep,
		timeLow: timeLow,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start schedules the sweep and runs until the scheduler is stopped.
func (w *ExpirySweeper) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(w.cfg.Interval),
		gocron.NewTask(func() { w.RunOnce(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	w.scheduler = scheduler
	scheduler.Start()
	w.logger.Info("expiry sweeper started", "interval", w.cfg.Interval)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (w *ExpirySweeper) Stop() {
	if w.scheduler == nil {
		return
	}
	if err := w.scheduler.Shutdown(); err != nil {
		w.logger.Warn("scheduler shutdown error", "error", err)
	}
	w.logger.Info("expiry sweeper stopped")
}

// RunOnce performs a single sweep and time-low pass.
func (w *ExpirySweeper) RunOnce(ctx context.Context) {
	now := time.Now().UTC()

	expired, err := w.sweep.Handle(ctx, now)
	if err != nil {
		w.logger.Error("sweep failed", "error", err)
	} else if expired > 0 {
		w.logger.Info("sweep completed", "expired", expired)
	}

	if w.timeLow == nil {
		return
	}
	sent, err := w.timeLow.Handle(ctx, now)
	if err != nil {
		w.logger.Error("time-low check failed", "error", err)
	} else if sent > 0 {
		w.logger.Info("time-low warnings sent", "count", sent)
	}
}
