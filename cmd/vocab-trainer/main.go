package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/vocab-trainer/internal/api"
	"github.com/terra-clan/vocab-trainer/internal/cache"
	"github.com/terra-clan/vocab-trainer/internal/config"
	"github.com/terra-clan/vocab-trainer/internal/models"
	"github.com/terra-clan/vocab-trainer/internal/seed"
	"github.com/terra-clan/vocab-trainer/internal/services"
	"github.com/terra-clan/vocab-trainer/internal/storage"
	"github.com/terra-clan/vocab-trainer/internal/trainer"
	"github.com/terra-clan/vocab-trainer/internal/warmup"
)

func main() {
	// Setup structured logging; the level is adjusted once config is loaded
	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: &level,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.Server.SlogLevel())

	slog.Info("starting vocab-trainer",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	repo, seedTarget, err := openStore(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	slog.Info("storage ready", "driver", cfg.Database.Driver)

	// Seed an empty catalog
	if cfg.Seed.Enabled {
		if err := seedCatalog(initCtx, cfg.Seed, seedTarget); err != nil {
			slog.Error("failed to seed catalog", "error", err)
			os.Exit(1)
		}
	}
	if closer, ok := seedTarget.(*seed.PostgresTarget); ok {
		closer.Close()
	}

	// Initialize service registry
	registry := services.NewRegistry()
	registry.Register("database", services.NewPingProvider(cfg.Database.Driver, repo))

	// Catalog cache
	var catalogCache *cache.CatalogCache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		catalogCache = cache.NewCatalogCache(repo, client, cfg.Redis.CacheTTL)
		registry.Register("redis", services.NewPingProvider("redis", catalogCache))
		slog.Info("catalog cache enabled", "address", cfg.Redis.Address, "ttl", cfg.Redis.CacheTTL)
	}

	// Initialize trainer service
	opts := trainer.Options{
		CatalogLimit:     cfg.Quiz.CatalogLimit,
		DefaultQuizCount: cfg.Quiz.DefaultCount,
		MaxQuizCount:     cfg.Quiz.MaxCount,
		FlashcardCount:   cfg.Quiz.FlashcardCount,
	}
	var serviceCache trainer.Cache
	if catalogCache != nil {
		serviceCache = catalogCache
	}
	manager := trainer.NewService(repo, serviceCache, opts)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cache warm-up worker
	if catalogCache != nil {
		warmer := warmup.NewWarmer(catalogCache, cfg.Warmup.Interval, cfg.Quiz.CatalogLimit)
		if err := warmer.Start(ctx); err != nil {
			slog.Error("failed to start cache warm-up", "error", err)
			os.Exit(1)
		}
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, manager, registry)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if catalogCache != nil {
		if err := catalogCache.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	if err := repo.Close(); err != nil {
		slog.Error("storage close error", "error", err)
	}

	slog.Info("vocab-trainer stopped")
}

// openStore opens the configured repository and the target used for seeding it
func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, seed.Target, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		slog.Info("running database migrations", "dir", cfg.MigrationsDir)
		if err := storage.MigrateFromDSN(ctx, cfg.DSN, cfg.MigrationsDir); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
			MaxLifetime:  cfg.MaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}

		target, err := seed.NewPostgresTarget(ctx, cfg.DSN)
		if err != nil {
			repo.Close()
			return nil, nil, err
		}
		return repo, target, nil

	case config.DriverSQLite:
		repo, err := storage.NewSQLiteRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil

	case config.DriverMemory:
		repo := storage.NewMemoryRepository()
		return repo, repo, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func seedCatalog(ctx context.Context, cfg config.SeedConfig, target seed.Target) error {
	var (
		words []*models.Word
		err   error
	)

	if cfg.File != "" {
		words, err = seed.LoadFile(cfg.File)
	} else {
		words, err = seed.Default()
	}
	if err != nil {
		return err
	}

	_, err = seed.Run(ctx, target, words)
	return err
}
