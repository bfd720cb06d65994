package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	fiberadapter "github.com/teamo-dev/teamo/adapters/fiber"
	pgxadapter "github.com/teamo-dev/teamo/adapters/pgx"
	"github.com/teamo-dev/teamo/config"
	"github.com/teamo-dev/teamo/core"
	"github.com/teamo-dev/teamo/crypto"
	"github.com/teamo-dev/teamo/federation"
	"github.com/teamo-dev/teamo/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	storage := pgxadapter.New(pool)
	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	// Role definitions are seeded on every boot; the operation is idempotent
	// so a deploy that races another replica is harmless.
	if err := services.NewRoleSeeder(storage, logger).Seed(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	providers := federation.NewRegistry(
		googleProvider(cfg),
		githubProvider(cfg),
	)

	accounts := services.NewAccountService(storage, crypto.NewArgon2(), logger)
	sessions := services.NewSessionManager(cfg.SessionSecret, cfg.SessionMaxAge, storage)
	roleCache := core.NewInMemoryRoleCache(core.CacheConfig{TTL: time.Minute, MaxSize: 1000})

	app := fiber.New()
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowCredentials: true,
	}))
	app.Use(requestLogger(logger))

	handler := fiberadapter.New(accounts, sessions, storage, roleCache, providers, cfg, logger)
	handler.Register(app)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()
	logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment, "providers", providers.Names())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.Shutdown()
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// requestLogger logs one line per request with timing.
func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

func googleProvider(cfg *config.Config) *federation.Provider {
	if cfg.GoogleClientID == "" {
		return nil
	}
	return federation.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
}

func githubProvider(cfg *config.Config) *federation.Provider {
	if cfg.GitHubClientID == "" {
		return nil
	}
	return federation.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
}
