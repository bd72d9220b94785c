package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/filmfinder/filmfinder/internal/services/tmdb"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// cachedRelay holds one cacheable upstream response
type cachedRelay struct {
	status int
	body   []byte
}

// ProxyHandler is the single server-side proxy in front of the upstream
// metadata provider. It translates the fn operation parameter into one
// upstream request and relays the response unmodified.
type ProxyHandler struct {
	client *tmdb.Client
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewProxyHandler creates a new proxy handler. Genre vocabularies and the
// image configuration are near-static, so those two operations are served
// from a short-lived cache; list feeds, search and details never are.
func NewProxyHandler(client *tmdb.Client, logger *logrus.Logger) *ProxyHandler {
	return &ProxyHandler{
		client: client,
		cache:  gocache.New(6*time.Hour, 30*time.Minute),
		logger: logger,
	}
}

// cacheKey identifies one cacheable upstream response. Passthrough
// parameters (language, region, ...) select different upstream bodies,
// so they are part of the key.
func cacheKey(r *http.Request, fn string) (string, bool) {
	switch fn {
	case "genre_list", "configuration":
	default:
		return "", false
	}
	query := r.URL.Query()
	return fmt.Sprintf("%s:%s:%s", fn, query.Get("mediaType"), tmdb.Passthrough(query).Encode()), true
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeEnvelope wraps an upstream error body in {"error": ...}, keeping
// JSON bodies structured and falling back to a string otherwise.
func writeEnvelope(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if json.Valid(body) {
		json.NewEncoder(w).Encode(map[string]json.RawMessage{"error": body})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"error": string(body)})
}

func writeRelay(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// ServeHTTP handles GET /api/tmdb?fn=...
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fn := r.URL.Query().Get("fn")
	if fn == "" {
		fn = "popular"
	}

	key, cacheable := cacheKey(r, fn)
	if cacheable {
		if entry, found := h.cache.Get(key); found {
			cached := entry.(cachedRelay)
			writeRelay(w, cached.status, cached.body)
			return
		}
	}

	status, body, err := h.client.Relay(r.Context(), fn, r.URL.Query())
	if err != nil {
		var badRequest *tmdb.BadRequestError
		switch {
		case errors.Is(err, tmdb.ErrMissingCredentials):
			writeJSONError(w, http.StatusInternalServerError, "Missing TMDB credentials")
		case errors.As(err, &badRequest):
			writeJSONError(w, http.StatusBadRequest, badRequest.Message)
		case errors.Is(err, context.Canceled):
			// caller went away; nothing to write
		default:
			h.logger.WithError(err).WithField("fn", fn).Error("Upstream request failed")
			writeJSONError(w, http.StatusInternalServerError, "Failed to reach upstream provider")
		}
		return
	}

	if status < 200 || status >= 300 {
		writeEnvelope(w, status, body)
		return
	}

	if cacheable {
		h.cache.Set(key, cachedRelay{status: status, body: body}, gocache.DefaultExpiration)
	}
	writeRelay(w, status, body)
}
