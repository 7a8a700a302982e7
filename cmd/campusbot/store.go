package main

import (
	"context"
	"fmt"
	"math"

	"github.com/gosuda/campusbot/internal/config"
	"github.com/gosuda/campusbot/internal/store/postgres"
)

func openStore(ctx context.Context, cfg *config.Config) (*postgres.Store, error) {
	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}
	return postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
}

// withStore loads configuration, opens a migrated store and runs fn.
func withStore(ctx context.Context, fn func(*config.Config, *postgres.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	return fn(cfg, store)
}
