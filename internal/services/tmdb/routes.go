package tmdb

import (
	"fmt"
	"net/url"
	"strings"
)

// BadRequestError signals a missing required caller parameter. The proxy
// surfaces it as HTTP 400 without contacting the upstream provider.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// reservedParams are interpreted by the proxy itself and never forwarded
// upstream. Everything else in the caller's query string passes through
// verbatim.
var reservedParams = map[string]struct{}{
	"fn":         {},
	"q":          {},
	"movieId":    {},
	"tvId":       {},
	"mediaType":  {},
	"timeWindow": {},
}

const (
	movieDetailsAppend = "images,credits,release_dates,videos,recommendations"
	tvDetailsAppend    = "images,credits,videos,recommendations"
)

func createURL(base, path string) (*url.URL, error) {
	trimmed := strings.TrimSuffix(base, "/")
	full := trimmed + "/" + strings.TrimPrefix(path, "/")
	u, err := url.Parse(full)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", full, err)
	}
	return u, nil
}

func requireParam(params url.Values, key, message string) (string, error) {
	value := params.Get(key)
	if value == "" {
		return "", &BadRequestError{Message: message}
	}
	return value, nil
}

func resolveMediaType(params url.Values) string {
	if params.Get("mediaType") == "tv" {
		return "tv"
	}
	return "movie"
}

// Passthrough returns the non-reserved subset of a caller query, the
// parameters forwarded upstream verbatim.
func Passthrough(params url.Values) url.Values {
	out := url.Values{}
	for key, values := range params {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		out[key] = append([]string(nil), values...)
	}
	return out
}

// finalize copies passthrough parameters onto the upstream query string,
// preserving multi-valued keys, and attaches the legacy api_key when one is
// configured and the caller did not already supply it.
func finalize(u *url.URL, params url.Values, apiKey string) {
	query := u.Query()
	for key, values := range params {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		for _, value := range values {
			query.Add(key, value)
		}
	}
	if apiKey != "" && query.Get("api_key") == "" {
		query.Set("api_key", apiKey)
	}
	u.RawQuery = query.Encode()
}

// Resolve maps an operation name plus a caller parameter bag onto one
// concrete upstream URL. Unknown operation names fall back to popular
// movies rather than failing.
func Resolve(base, fn string, params url.Values, apiKey string) (string, error) {
	var (
		u   *url.URL
		err error
	)

	switch fn {
	case "popular":
		path := "movie/popular"
		if resolveMediaType(params) == "tv" {
			path = "tv/popular"
		}
		u, err = createURL(base, path)

	case "now_playing":
		path := "movie/now_playing"
		if resolveMediaType(params) == "tv" {
			path = "tv/on_the_air"
		}
		u, err = createURL(base, path)

	case "upcoming":
		path := "movie/upcoming"
		if resolveMediaType(params) == "tv" {
			path = "tv/airing_today"
		}
		u, err = createURL(base, path)

	case "discover", "discover_movie":
		path := "discover/movie"
		if resolveMediaType(params) == "tv" {
			path = "discover/tv"
		}
		u, err = createURL(base, path)

	case "genre_list":
		path := "genre/movie/list"
		if resolveMediaType(params) == "tv" {
			path = "genre/tv/list"
		}
		u, err = createURL(base, path)

	case "search":
		var q string
		q, err = requireParam(params, "q", "Missing search query")
		if err != nil {
			return "", err
		}
		path := "search/movie"
		if resolveMediaType(params) == "tv" {
			path = "search/tv"
		}
		u, err = createURL(base, path)
		if err == nil {
			query := u.Query()
			query.Set("query", q)
			u.RawQuery = query.Encode()
		}

	case "trending":
		// Trending takes the raw mediaType value into the path; the
		// upstream rejects invalid ones itself.
		mediaType := params.Get("mediaType")
		if mediaType == "" {
			mediaType = "movie"
		}
		window := params.Get("timeWindow")
		if window == "" {
			window = "day"
		}
		u, err = createURL(base, fmt.Sprintf("trending/%s/%s", url.PathEscape(mediaType), url.PathEscape(window)))

	case "configuration":
		u, err = createURL(base, "configuration")

	case "movie_details":
		u, err = detailURL(base, params, "movieId", "movie_details", "movie/%s", movieDetailsAppend)

	case "movie_credits":
		u, err = itemURL(base, params, "movieId", "movie_credits", "movie/%s/credits")

	case "movie_images":
		u, err = itemURL(base, params, "movieId", "movie_images", "movie/%s/images")

	case "movie_recommendations":
		u, err = itemURL(base, params, "movieId", "movie_recommendations", "movie/%s/recommendations")

	case "movie_similar":
		u, err = itemURL(base, params, "movieId", "movie_similar", "movie/%s/similar")

	case "tv_popular":
		u, err = createURL(base, "tv/popular")

	case "tv_details":
		u, err = detailURL(base, params, "tvId", "tv_details", "tv/%s", tvDetailsAppend)

	case "tv_credits":
		u, err = itemURL(base, params, "tvId", "tv_credits", "tv/%s/credits")

	default:
		u, err = createURL(base, "movie/popular")
	}

	if err != nil {
		return "", err
	}

	finalize(u, params, apiKey)
	return u.String(), nil
}

// itemURL builds a per-item path, failing with a client error when the
// required content ID parameter is absent.
func itemURL(base string, params url.Values, idKey, fn, pattern string) (*url.URL, error) {
	id, err := requireParam(params, idKey, fmt.Sprintf("%s is required for %s endpoint", idKey, fn))
	if err != nil {
		return nil, err
	}
	return createURL(base, fmt.Sprintf(pattern, url.PathEscape(id)))
}

// detailURL is itemURL plus the default expanded-response sections, unless
// the caller explicitly asked for its own append_to_response.
func detailURL(base string, params url.Values, idKey, fn, pattern, appendDefault string) (*url.URL, error) {
	u, err := itemURL(base, params, idKey, fn, pattern)
	if err != nil {
		return nil, err
	}
	if params.Get("append_to_response") == "" {
		query := u.Query()
		query.Set("append_to_response", appendDefault)
		u.RawQuery = query.Encode()
	}
	return u, nil
}
