package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/filmfinder/filmfinder/internal/config"
	"github.com/filmfinder/filmfinder/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrMissingCredentials means no upstream credential is configured. It is
// an operator problem, surfaced as HTTP 500 and never retried.
var ErrMissingCredentials = errors.New("Missing TMDB credentials")

// UpstreamError carries a non-2xx upstream response. The proxy relays the
// status and body as-is inside an error envelope.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed with status %d", e.Status)
}

// Client handles communication with the TMDB API
type Client struct {
	baseURL     string
	bearerToken string
	apiKey      string
	logRequests bool
	httpClient  *http.Client
	logger      *logrus.Logger
}

// NewClient creates a new TMDB API client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	bearerToken, apiKey := cfg.Credentials()
	return &Client{
		baseURL:     cfg.TMDBBaseURL,
		bearerToken: bearerToken,
		apiKey:      apiKey,
		logRequests: cfg.LogTMDBRequests,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

// maskCredential redacts the api_key query parameter before logging
func maskCredential(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := u.Query()
	if query.Get("api_key") != "" {
		query.Set("api_key", "***")
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Relay resolves the operation into an upstream request, performs it once
// and returns the raw status and body. It never retries; the error return
// is only for client errors (BadRequestError, ErrMissingCredentials) and
// transport failures.
func (c *Client) Relay(ctx context.Context, fn string, params url.Values) (int, []byte, error) {
	if c.bearerToken == "" && c.apiKey == "" {
		return 0, nil, ErrMissingCredentials
	}

	targetURL, err := Resolve(c.baseURL, fn, params, c.apiKey)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	if c.logRequests {
		c.logger.WithFields(logrus.Fields{
			"fn":  fn,
			"url": maskCredential(targetURL),
		}).Info("TMDB outbound request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if c.logRequests {
		preview := body
		if len(preview) > 1000 {
			preview = preview[:1000]
		}
		c.logger.WithFields(logrus.Fields{
			"fn":      fn,
			"status":  resp.StatusCode,
			"url":     maskCredential(targetURL),
			"preview": string(preview),
		}).Info("TMDB response")
	}

	return resp.StatusCode, body, nil
}

// get relays one operation and decodes a 2xx body into result
func (c *Client) get(ctx context.Context, fn string, params url.Values, result interface{}) error {
	status, body, err := c.Relay(ctx, fn, params)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &UpstreamError{Status: status, Body: body}
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", fn, err)
	}
	return nil
}

// ListFeed fetches one page of a feed operation
func (c *Client) ListFeed(ctx context.Context, fn string, params url.Values) (*ListResponse, error) {
	var response ListResponse
	if err := c.get(ctx, fn, params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GenreList fetches the genre vocabulary for one media type
func (c *Client) GenreList(ctx context.Context, mediaType models.MediaType) ([]Genre, error) {
	params := url.Values{}
	params.Set("mediaType", string(mediaType))

	var response GenreListResponse
	if err := c.get(ctx, "genre_list", params, &response); err != nil {
		return nil, err
	}
	return response.Genres, nil
}

// Details fetches the expanded detail record for a selected item
func (c *Client) Details(ctx context.Context, selected models.SelectedItem) (*Details, error) {
	params := url.Values{}
	fn := "movie_details"
	idKey := "movieId"
	if selected.MediaType == models.MediaTypeTV {
		fn = "tv_details"
		idKey = "tvId"
	}
	params.Set(idKey, selected.ID)

	var details Details
	if err := c.get(ctx, fn, params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}
