package tmdb

import (
	"errors"
	"net/url"
	"testing"
)

const testBase = "https://api.example.org/3"

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Resolve produced unparseable URL %q: %v", raw, err)
	}
	return u
}

func TestResolveFeedPaths(t *testing.T) {
	tests := []struct {
		name      string
		fn        string
		mediaType string
		wantPath  string
	}{
		{"popular movie", "popular", "", "/3/movie/popular"},
		{"popular tv", "popular", "tv", "/3/tv/popular"},
		{"now playing movie", "now_playing", "movie", "/3/movie/now_playing"},
		{"now playing tv", "now_playing", "tv", "/3/tv/on_the_air"},
		{"upcoming movie", "upcoming", "", "/3/movie/upcoming"},
		{"upcoming tv", "upcoming", "tv", "/3/tv/airing_today"},
		{"discover movie", "discover", "", "/3/discover/movie"},
		{"discover tv", "discover", "tv", "/3/discover/tv"},
		{"discover legacy alias", "discover_movie", "", "/3/discover/movie"},
		{"genre list movie", "genre_list", "", "/3/genre/movie/list"},
		{"genre list tv", "genre_list", "tv", "/3/genre/tv/list"},
		{"tv popular", "tv_popular", "", "/3/tv/popular"},
		{"configuration", "configuration", "", "/3/configuration"},
		{"unknown falls back to popular movies", "bogus_operation", "", "/3/movie/popular"},
		{"invalid media type resolves to movie", "popular", "anything", "/3/movie/popular"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := url.Values{}
			if tt.mediaType != "" {
				params.Set("mediaType", tt.mediaType)
			}
			resolved, err := Resolve(testBase, tt.fn, params, "")
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.fn, err)
			}
			if got := mustParse(t, resolved).Path; got != tt.wantPath {
				t.Errorf("Resolve(%q) path = %q, want %q", tt.fn, got, tt.wantPath)
			}
		})
	}
}

func TestResolveSearchRequiresQuery(t *testing.T) {
	_, err := Resolve(testBase, "search", url.Values{}, "")
	var badRequest *BadRequestError
	if !errors.As(err, &badRequest) {
		t.Fatalf("Resolve(search) without q = %v, want BadRequestError", err)
	}
	if badRequest.Message != "Missing search query" {
		t.Errorf("message = %q, want %q", badRequest.Message, "Missing search query")
	}
}

func TestResolveSearch(t *testing.T) {
	params := url.Values{}
	params.Set("q", "blade runner")
	params.Set("mediaType", "tv")

	resolved, err := Resolve(testBase, "search", params, "")
	if err != nil {
		t.Fatalf("Resolve(search) returned error: %v", err)
	}
	u := mustParse(t, resolved)
	if u.Path != "/3/search/tv" {
		t.Errorf("path = %q, want /3/search/tv", u.Path)
	}
	if got := u.Query().Get("query"); got != "blade runner" {
		t.Errorf("query param = %q, want %q", got, "blade runner")
	}
	if u.Query().Get("q") != "" {
		t.Error("reserved q parameter leaked upstream")
	}
}

func TestResolveTrending(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		resolved, err := Resolve(testBase, "trending", url.Values{}, "")
		if err != nil {
			t.Fatalf("Resolve(trending) returned error: %v", err)
		}
		if got := mustParse(t, resolved).Path; got != "/3/trending/movie/day" {
			t.Errorf("path = %q, want /3/trending/movie/day", got)
		}
	})

	t.Run("raw media type and window pass into the path", func(t *testing.T) {
		params := url.Values{}
		params.Set("mediaType", "all")
		params.Set("timeWindow", "week")
		resolved, err := Resolve(testBase, "trending", params, "")
		if err != nil {
			t.Fatalf("Resolve(trending) returned error: %v", err)
		}
		if got := mustParse(t, resolved).Path; got != "/3/trending/all/week" {
			t.Errorf("path = %q, want /3/trending/all/week", got)
		}
	})
}

func TestResolveDetails(t *testing.T) {
	t.Run("movie details defaults append sections", func(t *testing.T) {
		params := url.Values{}
		params.Set("movieId", "603")
		resolved, err := Resolve(testBase, "movie_details", params, "")
		if err != nil {
			t.Fatalf("Resolve(movie_details) returned error: %v", err)
		}
		u := mustParse(t, resolved)
		if u.Path != "/3/movie/603" {
			t.Errorf("path = %q, want /3/movie/603", u.Path)
		}
		if got := u.Query().Get("append_to_response"); got != movieDetailsAppend {
			t.Errorf("append_to_response = %q, want %q", got, movieDetailsAppend)
		}
	})

	t.Run("tv details omits release dates", func(t *testing.T) {
		params := url.Values{}
		params.Set("tvId", "1396")
		resolved, err := Resolve(testBase, "tv_details", params, "")
		if err != nil {
			t.Fatalf("Resolve(tv_details) returned error: %v", err)
		}
		u := mustParse(t, resolved)
		if u.Path != "/3/tv/1396" {
			t.Errorf("path = %q, want /3/tv/1396", u.Path)
		}
		if got := u.Query().Get("append_to_response"); got != tvDetailsAppend {
			t.Errorf("append_to_response = %q, want %q", got, tvDetailsAppend)
		}
	})

	t.Run("explicit append overrides the default", func(t *testing.T) {
		params := url.Values{}
		params.Set("movieId", "603")
		params.Set("append_to_response", "videos")
		resolved, err := Resolve(testBase, "movie_details", params, "")
		if err != nil {
			t.Fatalf("Resolve(movie_details) returned error: %v", err)
		}
		if got := mustParse(t, resolved).Query().Get("append_to_response"); got != "videos" {
			t.Errorf("append_to_response = %q, want videos", got)
		}
	})

	t.Run("missing id is a client error", func(t *testing.T) {
		for _, tt := range []struct {
			fn   string
			want string
		}{
			{"movie_details", "movieId is required for movie_details endpoint"},
			{"movie_credits", "movieId is required for movie_credits endpoint"},
			{"movie_images", "movieId is required for movie_images endpoint"},
			{"movie_recommendations", "movieId is required for movie_recommendations endpoint"},
			{"movie_similar", "movieId is required for movie_similar endpoint"},
			{"tv_details", "tvId is required for tv_details endpoint"},
			{"tv_credits", "tvId is required for tv_credits endpoint"},
		} {
			_, err := Resolve(testBase, tt.fn, url.Values{}, "")
			var badRequest *BadRequestError
			if !errors.As(err, &badRequest) {
				t.Errorf("Resolve(%q) = %v, want BadRequestError", tt.fn, err)
				continue
			}
			if badRequest.Message != tt.want {
				t.Errorf("Resolve(%q) message = %q, want %q", tt.fn, badRequest.Message, tt.want)
			}
		}
	})
}

func TestResolvePassthroughParams(t *testing.T) {
	params := url.Values{}
	params.Set("fn", "discover")
	params.Set("mediaType", "tv")
	params.Set("page", "2")
	params.Set("sort_by", "popularity.desc")
	params.Add("with_genres", "18")
	params.Add("with_genres", "80")

	resolved, err := Resolve(testBase, "discover", params, "")
	if err != nil {
		t.Fatalf("Resolve(discover) returned error: %v", err)
	}
	query := mustParse(t, resolved).Query()

	if got := query.Get("page"); got != "2" {
		t.Errorf("page = %q, want 2", got)
	}
	if got := query.Get("sort_by"); got != "popularity.desc" {
		t.Errorf("sort_by = %q, want popularity.desc", got)
	}
	if got := query["with_genres"]; len(got) != 2 {
		t.Errorf("with_genres = %v, want both values preserved", got)
	}
	for _, reserved := range []string{"fn", "mediaType", "q", "movieId", "tvId", "timeWindow"} {
		if query.Get(reserved) != "" {
			t.Errorf("reserved parameter %q leaked upstream", reserved)
		}
	}
}

func TestPassthrough(t *testing.T) {
	params := url.Values{}
	params.Set("fn", "genre_list")
	params.Set("mediaType", "movie")
	params.Set("language", "de")
	params.Add("with_genres", "18")
	params.Add("with_genres", "80")

	got := Passthrough(params)
	if got.Get("language") != "de" {
		t.Errorf("language = %q, want de", got.Get("language"))
	}
	if len(got["with_genres"]) != 2 {
		t.Errorf("with_genres = %v, want both values kept", got["with_genres"])
	}
	if got.Get("fn") != "" || got.Get("mediaType") != "" {
		t.Errorf("reserved parameters leaked: %v", got)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("attached when configured", func(t *testing.T) {
		resolved, err := Resolve(testBase, "popular", url.Values{}, "legacykey")
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if got := mustParse(t, resolved).Query().Get("api_key"); got != "legacykey" {
			t.Errorf("api_key = %q, want legacykey", got)
		}
	})

	t.Run("caller supplied key wins", func(t *testing.T) {
		params := url.Values{}
		params.Set("api_key", "callerkey")
		resolved, err := Resolve(testBase, "popular", params, "legacykey")
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if got := mustParse(t, resolved).Query().Get("api_key"); got != "callerkey" {
			t.Errorf("api_key = %q, want callerkey", got)
		}
	})

	t.Run("absent when not configured", func(t *testing.T) {
		resolved, err := Resolve(testBase, "popular", url.Values{}, "")
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if mustParse(t, resolved).Query().Get("api_key") != "" {
			t.Error("api_key attached without a configured key")
		}
	})
}
