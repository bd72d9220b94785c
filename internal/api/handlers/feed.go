package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/filmfinder/filmfinder/internal/catalog"
	"github.com/filmfinder/filmfinder/internal/models"
	"github.com/sirupsen/logrus"
)

// FeedHandler is the JSON surface over the catalog state manager
type FeedHandler struct {
	manager *catalog.Manager
	logger  *logrus.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(manager *catalog.Manager, logger *logrus.Logger) *FeedHandler {
	return &FeedHandler{
		manager: manager,
		logger:  logger,
	}
}

// feedParamsRequest carries a partial parameter update. Absent fields
// leave the corresponding parameter untouched.
type feedParamsRequest struct {
	Feed           *string   `json:"feed,omitempty"`
	Query          *string   `json:"q,omitempty"`
	MediaType      *string   `json:"mediaType,omitempty"`
	TrendingWindow *string   `json:"timeWindow,omitempty"`
	MinRating      *float64  `json:"minRating,omitempty"`
	Genres         *[]string `json:"genres,omitempty"`
	ToggleGenre    *string   `json:"toggleGenre,omitempty"`
	Page           *int      `json:"page,omitempty"`
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// Feed handles GET /api/feed
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.manager.View())
}

// UpdateParams handles POST /api/feed/params
func (h *FeedHandler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	var params feedParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid parameter payload")
		return
	}

	if params.Query != nil {
		h.manager.SetQueryText(*params.Query)
	}
	if params.MediaType != nil {
		h.manager.SetMediaType(models.ParseMediaType(*params.MediaType))
	}
	if params.TrendingWindow != nil {
		h.manager.SetTrendingWindow(models.TimeWindow(*params.TrendingWindow))
	}
	if params.MinRating != nil {
		h.manager.SetMinRating(*params.MinRating)
	}
	if params.Genres != nil {
		h.manager.SetGenres(*params.Genres)
	}
	if params.ToggleGenre != nil {
		h.manager.ToggleGenre(*params.ToggleGenre)
	}
	if params.Feed != nil {
		if err := h.manager.SetFeed(models.FeedID(*params.Feed)); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if params.Page != nil {
		h.manager.SetPage(*params.Page)
	}

	writeJSON(w, h.manager.View())
}

// ToggleFavorite handles POST /api/favorites/toggle?id=
func (h *FeedHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	favorited, changed := h.manager.ToggleFavorite(id)
	if !changed && !favorited {
		h.logger.WithField("id", id).Debug("Favorite toggle ignored for unknown item")
	}
	writeJSON(w, map[string]bool{"favorited": favorited, "changed": changed})
}

// ToggleWatchlist handles POST /api/watchlist/toggle?id=
func (h *FeedHandler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	watchlisted := h.manager.ToggleWatchlist(id)
	writeJSON(w, map[string]bool{"watchlisted": watchlisted})
}

// Select handles POST /api/selection?id=&mediaType=
func (h *FeedHandler) Select(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "id is required")
		return
	}

	h.manager.Select(models.SelectedItem{
		ID:        id,
		MediaType: models.ParseMediaType(r.URL.Query().Get("mediaType")),
	})
	writeJSON(w, h.manager.DetailsState())
}

// ClearSelection handles DELETE /api/selection
func (h *FeedHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// Details handles GET /api/selection/details
func (h *FeedHandler) Details(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.manager.DetailsState())
}
