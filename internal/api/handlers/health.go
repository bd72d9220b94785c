package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Pinger reports whether the favorites store is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler reports process health plus the readiness of the two
// things requests depend on: the favorites store and the upstream
// credential. A missing credential degrades per request, not the whole
// process, so it never fails the check on its own.
type HealthHandler struct {
	store          Pinger
	hasCredentials bool
	logger         *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, hasCredentials bool, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		store:          store,
		hasCredentials: hasCredentials,
		logger:         logger,
	}
}

// ServeHTTP handles the health check endpoint
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]string{
		"status":           "healthy",
		"database":         "ok",
		"tmdb_credentials": "configured",
	}
	status := http.StatusOK

	if err := h.store.Ping(); err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
		response["status"] = "degraded"
		response["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if !h.hasCredentials {
		response["tmdb_credentials"] = "missing"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
