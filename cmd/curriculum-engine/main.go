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

	"github.com/pathworks/curriculum-engine/internal/api"
	"github.com/pathworks/curriculum-engine/internal/cache"
	"github.com/pathworks/curriculum-engine/internal/config"
	"github.com/pathworks/curriculum-engine/internal/curriculum"
	"github.com/pathworks/curriculum-engine/internal/seed"
	"github.com/pathworks/curriculum-engine/internal/storage"
	"github.com/pathworks/curriculum-engine/internal/sweeper"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting curriculum-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Initialize progress cache
	progressCache, err := cache.NewProgressCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.Info("redis connected successfully")

	// Load seed blueprints
	seedLoader := seed.NewLoader()
	if err := seedLoader.LoadFromDir(cfg.Seeds.Dir); err != nil {
		slog.Warn("failed to load seed blueprints", "dir", cfg.Seeds.Dir, "error", err)
	}

	// Event hub for the per-curriculum websocket feed
	hub := api.NewEventHub()

	// Initialize curriculum service
	manager := curriculum.NewService(repo, progressCache, hub)

	// Initialize maintenance worker
	sw := sweeper.NewSweeper(repo, manager, cfg.Sweeper.Interval)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start maintenance worker
	sw.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, manager, seedLoader, repo, hub)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	if err := progressCache.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("curriculum-engine stopped")
}
