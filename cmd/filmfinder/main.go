package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/filmfinder/filmfinder/internal/api"
	"github.com/filmfinder/filmfinder/internal/catalog"
	"github.com/filmfinder/filmfinder/internal/config"
	"github.com/filmfinder/filmfinder/internal/models"
	"github.com/filmfinder/filmfinder/internal/scheduler"
	"github.com/filmfinder/filmfinder/internal/services/tmdb"
	"github.com/filmfinder/filmfinder/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting FilmFinder")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	if !cfg.HasCredentials() {
		// Not fatal: the proxy surfaces this as HTTP 500 per request.
		logger.Warn("No TMDB credential configured, upstream requests will fail")
	}

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize TMDB client
	client := tmdb.NewClient(cfg, logger)
	logger.Info("TMDB client initialized")

	// 5. Initialize catalog state manager
	manager := catalog.NewManager(client, db, cfg.TMDBImageBaseURL, cfg.ClearListOnError, logger)
	defer manager.Close()
	logger.Info("Catalog manager initialized")

	// 6. Initialize scheduler (genre vocabulary bootstrap + refresh)
	sched := scheduler.NewScheduler(manager, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, client, manager, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("FilmFinder is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("FilmFinder stopped")
	return nil
}
