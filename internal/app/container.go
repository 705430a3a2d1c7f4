package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	billingDomain "github.com/openpark/parkcore/internal/billing/domain"
	billingInfra "github.com/openpark/parkcore/internal/billing/infrastructure"
	"github.com/openpark/parkcore/internal/parking/application"
	"github.com/openpark/parkcore/internal/parking/application/commands"
	"github.com/openpark/parkcore/internal/parking/application/workers"
	capacityDomain "github.com/openpark/parkcore/internal/parking/domain/capacity"
	"github.com/openpark/parkcore/internal/parking/domain/session"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
	capacityInfra "github.com/openpark/parkcore/internal/parking/infrastructure/capacity"
	"github.com/openpark/parkcore/internal/parking/infrastructure/notify"
	parkingPersistence "github.com/openpark/parkcore/internal/parking/infrastructure/persistence"
	"github.com/openpark/parkcore/internal/shared/infrastructure/eventbus"
	"github.com/openpark/parkcore/internal/shared/infrastructure/migrations"
	tariffDomain "github.com/openpark/parkcore/internal/tariff/domain"
	tariffPersistence "github.com/openpark/parkcore/internal/tariff/infrastructure/persistence"
	"github.com/openpark/parkcore/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DB       *pgxpool.Pool
	SQLiteDB *sql.DB

	// Redis
	RedisClient *redis.Client

	// Repositories
	SessionRepo      session.Repository
	ZoneRepo         tariffDomain.ZoneRepository
	GarageRepo       tariffDomain.GarageRepository
	SubscriptionRepo tariffDomain.SubscriptionRepository

	// Domain services
	CapacityLedger capacityDomain.Ledger
	TariffEngine   *tariffDomain.Engine
	Charger        billingDomain.Charger

	// Messaging
	EventPublisher eventbus.Publisher
	Notifier       application.Notifier

	// Command handlers
	CreateStreetSessionHandler *commands.CreateStreetSessionHandler
	CreateGarageSessionHandler *commands.CreateGarageSessionHandler
	CloseStreetSessionHandler  *commands.CloseStreetSessionHandler
	CloseGarageSessionHandler  *commands.CloseGarageSessionHandler
	SweepExpiredHandler        *commands.SweepExpiredHandler
	NotifyTimeLowHandler       *commands.NotifyTimeLowHandler

	// Workers
	ExpirySweeper *workers.ExpirySweeper
}

// NewContainer creates and wires all dependencies against PostgreSQL.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Connect to PostgreSQL
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c.DB = pool
	logger.Info("connected to database")

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create repositories
	c.SessionRepo = parkingPersistence.NewPostgresSessionRepository(pool)
	c.ZoneRepo = tariffPersistence.NewPostgresZoneRepository(pool)
	c.GarageRepo = tariffPersistence.NewPostgresGarageRepository(pool)
	c.SubscriptionRepo = tariffPersistence.NewPostgresSubscriptionRepository(pool)

	// Capacity ledger: Redis when configured, otherwise the database
	c.CapacityLedger = capacityInfra.NewPostgresLedger(pool)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				pool.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, capacity ledger falls back to database", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					pool.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, capacity ledger falls back to database", "error", err)
			} else {
				c.RedisClient = redisClient
				c.CapacityLedger = capacityInfra.NewRedisLedger(redisClient)
				logger.Info("connected to Redis")
			}
		}
	}

	// Create event publisher
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		// Fall back to noop publisher in development
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, using noop publisher")
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		} else {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	} else {
		c.EventPublisher = publisher
	}
	c.Notifier = notify.NewPublisherNotifier(c.EventPublisher, logger)

	c.wireDomain(logger)
	return c, nil
}

// NewLocalContainer creates a container for local mode with SQLite. Zero
// config: no PostgreSQL, Redis or RabbitMQ required.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	dbConn, err := openSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}

	if err := migrations.RunSQLiteMigrations(ctx, dbConn); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.SQLiteDB = dbConn

	c.SessionRepo = parkingPersistence.NewSQLiteSessionRepository(dbConn)
	c.ZoneRepo = tariffPersistence.NewSQLiteZoneRepository(dbConn)
	c.GarageRepo = tariffPersistence.NewSQLiteGarageRepository(dbConn)
	c.SubscriptionRepo = tariffPersistence.NewSQLiteSubscriptionRepository(dbConn)
	c.CapacityLedger = capacityInfra.NewSQLiteLedger(dbConn)

	c.EventPublisher = eventbus.NewNoopPublisher(logger)
	c.Notifier = notify.NewPublisherNotifier(c.EventPublisher, logger)

	c.wireDomain(logger)

	logger.Info("local mode container initialized",
		"database", cfg.SQLitePath,
		"driver", "sqlite",
	)
	return c, nil
}

// wireDomain builds the tariff engine, charger, handlers and workers on top
// of whichever stores the container was given.
func (c *Container) wireDomain(logger *slog.Logger) {
	cfg := c.Config

	engineCfg := tariffDomain.DefaultConfig()
	if cfg.GarageHourlyRateCents > 0 {
		engineCfg.DefaultGarageHourlyRate = value_objects.MustNewMoney(cfg.GarageHourlyRateCents)
	}
	if cfg.EveningRateCents > 0 {
		engineCfg.DefaultEveningRate = value_objects.MustNewMoney(cfg.EveningRateCents)
	}
	c.TariffEngine = tariffDomain.NewEngine(engineCfg)

	breakerCfg := billingInfra.DefaultBreakerConfig()
	if cfg.PaymentTimeout > 0 {
		breakerCfg.ChargeTimeout = cfg.PaymentTimeout
	}
	c.Charger = billingInfra.NewBreakerCharger(billingInfra.NewFakeCharger(), breakerCfg, logger)

	c.CreateStreetSessionHandler = commands.NewCreateStreetSessionHandler(
		c.SessionRepo, c.ZoneRepo, c.SubscriptionRepo, c.TariffEngine, c.Charger, c.EventPublisher,
	)
	c.CreateGarageSessionHandler = commands.NewCreateGarageSessionHandler(
		c.SessionRepo, c.GarageRepo, c.CapacityLedger, c.EventPublisher,
	)
	c.CloseStreetSessionHandler = commands.NewCloseStreetSessionHandler(c.SessionRepo, c.EventPublisher)
	c.CloseGarageSessionHandler = commands.NewCloseGarageSessionHandler(
		c.SessionRepo, c.GarageRepo, c.SubscriptionRepo, c.TariffEngine, c.Charger,
		c.CapacityLedger, c.EventPublisher, logger,
	)
	c.SweepExpiredHandler = commands.NewSweepExpiredHandler(c.SessionRepo, c.Notifier, c.EventPublisher, logger)
	c.NotifyTimeLowHandler = commands.NewNotifyTimeLowHandler(c.SessionRepo, c.Notifier, c.EventPublisher, cfg.TimeLowThreshold)

	sweeperCfg := workers.DefaultSweeperConfig()
	if cfg.SweepInterval > 0 {
		sweeperCfg.Interval = cfg.SweepInterval
	}
	if cfg.TimeLowThreshold > 0 {
		sweeperCfg.TimeLowThreshold = cfg.TimeLowThreshold
	}
	c.ExpirySweeper = workers.NewExpirySweeper(c.SweepExpiredHandler, c.NotifyTimeLowHandler, sweeperCfg, logger)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.ExpirySweeper != nil {
		c.ExpirySweeper.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		} else {
			c.Logger.Info("SQLite connection closed")
		}
	}
}

// openSQLite opens the local database, creating the parent directory on
// first run.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dbConn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialized access keeps the conditional writes race-free
	dbConn.SetMaxOpenConns(1)

	if _, err := dbConn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return dbConn, nil
}
