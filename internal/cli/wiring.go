package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-planner/internal/application"
	"github.com/example/room-planner/internal/cache"
	"github.com/example/room-planner/internal/config"
	"github.com/example/room-planner/internal/events"
	"github.com/example/room-planner/internal/gateway"
	"github.com/example/room-planner/internal/persistence/postgres"
	"github.com/example/room-planner/internal/persistence/sqlite"
	"github.com/example/room-planner/internal/persistence/sqlstore"
	"github.com/example/room-planner/internal/scheduler"
)

// openStore connects to the configured database and applies pending migrations.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlstore.Store, []string, error) {
	var (
		store *sqlstore.Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err = postgres.Open(ctx, postgres.DefaultConfig(cfg.PostgresDSN))
	default:
		store, err = sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLitePath))
	}
	if err != nil {
		return nil, nil, err
	}

	var applied []string
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		applied, err = postgres.Migrate(ctx, store, logger)
	default:
		applied, err = sqlite.Migrate(ctx, store, logger)
	}
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("migrate %s store: %w", store.Dialect(), err)
	}
	return store, applied, nil
}

// components is the wired service graph shared by serve and seed.
type components struct {
	store        *sqlstore.Store
	tokens       *application.TokenManager
	users        *application.UserService
	auth         *application.AuthService
	rooms        *application.RoomService
	reservations *application.ReservationService

	closers []func() error
}

func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

func buildComponents(ctx context.Context, cfg config.Config, logger *slog.Logger) (*components, error) {
	store, applied, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c := &components{store: store, closers: []func() error{store.Close}}
	if len(applied) > 0 {
		logger.InfoContext(ctx, "migrations applied", "versions", applied)
	}

	liveCatalog := gateway.NewCatalog(store)
	ledger := gateway.NewLedger(store)

	var backend cache.Backend
	if cfg.RedisURL != "" {
		client, err := cache.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.closers = append(c.closers, client.Close)
		backend = cache.NewRedisBackend(client, "planner:")
		logger.InfoContext(ctx, "catalog cache backed by redis")
	} else {
		backend = cache.NewMemoryBackend(4096, nil)
	}
	catalog := cache.NewCatalog(liveCatalog, backend, cfg.CatalogCacheTTL, logger)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.closers = append(c.closers, amqpPublisher.Close)
		publisher = amqpPublisher
		logger.InfoContext(ctx, "reservation events published", "exchange", cfg.AMQPExchange)
	}

	planner := scheduler.NewPlanner(liveCatalog, ledger,
		scheduler.WithReadCatalog(catalog),
		scheduler.WithIDGenerator(uuid.NewString),
		scheduler.WithClock(time.Now),
	)

	c.tokens, err = application.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL, time.Now)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.users = application.NewUserServiceWithLogger(store, application.HashPassword, uuid.NewString, time.Now, logger)
	c.auth = application.NewAuthServiceWithLogger(store, c.tokens, application.VerifyPassword, logger)
	c.rooms = application.NewRoomService(store, planner, uuid.NewString, time.Now,
		application.WithCatalogInvalidator(catalog),
		application.WithRoomLogger(logger),
	)
	c.reservations = application.NewReservationServiceWithLogger(planner, publisher, time.Now, logger)
	return c, nil
}
