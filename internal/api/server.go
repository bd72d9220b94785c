package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/filmfinder/filmfinder/internal/api/handlers"
	"github.com/filmfinder/filmfinder/internal/api/middleware"
	"github.com/filmfinder/filmfinder/internal/catalog"
	"github.com/filmfinder/filmfinder/internal/config"
	"github.com/filmfinder/filmfinder/internal/models"
	"github.com/filmfinder/filmfinder/internal/services/tmdb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server         *http.Server
	manager        *catalog.Manager
	client         *tmdb.Client
	db             *models.Database
	hasCredentials bool
	logger         *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, client *tmdb.Client, manager *catalog.Manager, logger *logrus.Logger) *Server {
	s := &Server{
		manager:        manager,
		client:         client,
		db:             db,
		hasCredentials: cfg.HasCredentials(),
		logger:         logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(middleware.Metrics(mux), logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.db, s.hasCredentials, s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.manager, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	mux.Handle("/metrics", promhttp.Handler())

	// Upstream proxy
	proxyHandler := handlers.NewProxyHandler(s.client, s.logger)
	mux.HandleFunc("GET /api/tmdb", proxyHandler.ServeHTTP)

	// Catalog state surface
	feedHandler := handlers.NewFeedHandler(s.manager, s.logger)
	mux.HandleFunc("GET /api/feed", feedHandler.Feed)
	mux.HandleFunc("POST /api/feed/params", feedHandler.UpdateParams)
	mux.HandleFunc("POST /api/favorites/toggle", feedHandler.ToggleFavorite)
	mux.HandleFunc("POST /api/watchlist/toggle", feedHandler.ToggleWatchlist)
	mux.HandleFunc("POST /api/selection", feedHandler.Select)
	mux.HandleFunc("DELETE /api/selection", feedHandler.ClearSelection)
	mux.HandleFunc("GET /api/selection/details", feedHandler.Details)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
