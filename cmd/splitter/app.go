package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uilacceb/splitter/internal/config"
	"github.com/uilacceb/splitter/internal/ledger"
	"github.com/uilacceb/splitter/internal/lock"
	"github.com/uilacceb/splitter/internal/metrics"
	"github.com/uilacceb/splitter/internal/storage"
	"github.com/uilacceb/splitter/internal/storage/memory"
	"github.com/uilacceb/splitter/internal/storage/postgres"
	"github.com/uilacceb/splitter/internal/storage/sqlite"
)

// app bundles the long-lived dependencies built from a Config.
type app struct {
	store   storage.Store
	ledger  *ledger.Ledger
	metrics *metrics.Metrics
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{metrics: metrics.New()}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	logger.Info("Storage initialized", "driver", cfg.Database.Driver)

	locker, err := a.newLocker(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.ledger = ledger.New(store,
		ledger.WithLocker(locker),
		ledger.WithMetrics(a.metrics),
		ledger.WithLogger(logger),
	)
	return a, nil
}

// Close releases resources in reverse order of creation.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Database.Path)
	case config.DriverPostgres:
		return postgres.New(cfg.Database.URL)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// newLocker uses Redis when configured so that several server instances can
// share one database, and an in-process lock otherwise.
func (a *app) newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lock.Locker, error) {
	if cfg.Redis.URL == "" {
		return lock.NewLocal(), nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, client.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return lock.NewRedis(client, lock.WithTTL(cfg.Redis.LockTTL), lock.WithLogger(logger)), nil
}
