// Command seed persists the role-permission registry. It is safe to run any
// number of times: roles already present are left untouched, missing ones are
// inserted in a single transaction. A non-zero exit means nothing was changed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"

	pgxadapter "github.com/teamo-dev/teamo/adapters/pgx"
	"github.com/teamo-dev/teamo/services"
)

type seedConfig struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	Timeout     time.Duration `env:"SEED_TIMEOUT" envDefault:"30s"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	storage := pgxadapter.New(pool)
	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return services.NewRoleSeeder(storage, logger).Seed(ctx)
}
