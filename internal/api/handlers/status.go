package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/filmfinder/filmfinder/internal/catalog"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports the session state counters
type StatusHandler struct {
	manager *catalog.Manager
	logger  *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(manager *catalog.Manager, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		manager: manager,
		logger:  logger,
	}
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.manager.Stats())
}
