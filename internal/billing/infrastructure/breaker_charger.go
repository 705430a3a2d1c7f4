package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/openpark/parkcore/internal/billing/domain"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

// BreakerConfig configures the charge circuit breaker and timeout.
type BreakerConfig struct {
	// ChargeTimeout bounds a single charge call; a timeout is a payment
	// failure from the caller's point of view.
	ChargeTimeout time.Duration

	// MaxRequests is the number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns a sensible default configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ChargeTimeout:    5 * time.Second,
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerCharger wraps a payment provider with a bounded timeout and a
// circuit breaker. Breaker-open and timeout both surface as payment
// failures, so callers never block on a degraded provider.
type BreakerCharger struct {
	inner   domain.Charger
	breaker *gobreaker.CircuitBreaker[*domain.Payment]
	cfg     BreakerConfig
	logger  *slog.Logger
}

// NewBreakerCharger creates a charger decorator around the given provider.
func NewBreakerCharger(inner domain.Charger, cfg BreakerConfig, logger *slog.Logger) *BreakerCharger {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "payment",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerCharger{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*domain.Payment](settings),
		cfg:     cfg,
		logger:  logger,
	}
}

// Charge runs the charge through the breaker with a bounded timeout.
func (c *BreakerCharger) Charge(ctx context.Context, ownerID uuid.UUID, amount value_objects.Money) (*domain.Payment, error) {
	payment, err := c.breaker.Execute(func() (*domain.Payment, error) {
		chargeCtx, cancel := context.WithTimeout(ctx, c.cfg.ChargeTimeout)
		defer cancel()
		return c.inner.Charge(chargeCtx, ownerID, amount)
	})
	if err != nil {
		c.logger.Warn("charge failed",
			"owner_id", ownerID,
			"amount", amount.String(),
			"error", err,
		)
		if errors.Is(err, domain.ErrPaymentFailed) {
			return nil, err
		}
		// Breaker-open, timeout and provider errors all surface uniformly.
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}
	return payment, nil
}
