package models

// MediaType represents the type of media (movie or tv show)
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// ParseMediaType normalizes a raw media type string. Anything that is not
// exactly "tv" resolves to movie, matching the proxy behaviour.
func ParseMediaType(raw string) MediaType {
	if raw == string(MediaTypeTV) {
		return MediaTypeTV
	}
	return MediaTypeMovie
}

// FeedID identifies a named source of the displayed list
type FeedID string

const (
	FeedPopular    FeedID = "popular"
	FeedTrending   FeedID = "trending"
	FeedNowPlaying FeedID = "now_playing"
	FeedUpcoming   FeedID = "upcoming"
	FeedDiscover   FeedID = "discover"
	FeedSearch     FeedID = "search"
	FeedFavorites  FeedID = "favorites"
	FeedWatchlist  FeedID = "watchlist"
)

// IsLocal reports whether the feed is derived entirely from local state
// and never triggers an upstream request.
func (f FeedID) IsLocal() bool {
	return f == FeedFavorites || f == FeedWatchlist
}

// TimeWindow is the trending aggregation window
type TimeWindow string

const (
	WindowDay  TimeWindow = "day"
	WindowWeek TimeWindow = "week"
)

// FetchState represents the lifecycle of a list or details fetch
type FetchState string

const (
	StateIdle    FetchState = "idle"
	StateLoading FetchState = "loading"
	StateSuccess FetchState = "success"
	StateError   FetchState = "error"
)

// CatalogItem is a normalized record representing one title.
// ID is stable and unique within a media type; the same numeric upstream
// ID under a different media type is a different item.
type CatalogItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Year      string    `json:"year"`
	Genres    []string  `json:"genres"`
	Rating    float64   `json:"rating"`
	Runtime   *int      `json:"runtime,omitempty"`
	Poster    string    `json:"poster"`
	Overview  string    `json:"overview"`
	MediaType MediaType `json:"mediaType"`
}

// SelectedItem identifies the title whose details are being viewed
type SelectedItem struct {
	ID        string    `json:"id"`
	MediaType MediaType `json:"mediaType"`
}

// FeedQuery is the active parameter set driving the displayed list.
// Changing any parameter except Page resets Page to 1; Page is clamped
// to [1, TotalPages].
type FeedQuery struct {
	Feed              FeedID     `json:"feed"`
	Query             string     `json:"query"`
	MediaType         MediaType  `json:"mediaType"`
	TrendingMediaType MediaType  `json:"trendingMediaType"`
	TrendingWindow    TimeWindow `json:"trendingWindow"`
	MinRating         float64    `json:"minRating"`
	Genres            []string   `json:"genres"`
	Page              int        `json:"page"`
	TotalPages        int        `json:"totalPages"`
}
