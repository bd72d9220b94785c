package tmdb

// Genre is one entry of a genre vocabulary
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the response from genre/{mediaType}/list
type GenreListResponse struct {
	Genres []Genre `json:"genres"`
}

// ListItem is one record of a paginated feed response. Movie and TV
// records share the struct; TV uses Name/FirstAirDate.
type ListItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
}

// ListResponse is a paginated feed response. Some trending endpoints
// return "items" instead of "results".
type ListResponse struct {
	Page         int        `json:"page"`
	Results      []ListItem `json:"results"`
	Items        []ListItem `json:"items"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// Records returns whichever of the two result arrays the upstream filled.
func (r *ListResponse) Records() []ListItem {
	if len(r.Results) > 0 {
		return r.Results
	}
	return r.Items
}

// CastMember is a single cast entry of an expanded details response
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// CrewMember is a single crew entry of an expanded details response
type CrewMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job,omitempty"`
}

// Credits wraps cast and crew arrays
type Credits struct {
	Cast []CastMember `json:"cast,omitempty"`
	Crew []CrewMember `json:"crew,omitempty"`
}

// ImageRef points at one poster or backdrop
type ImageRef struct {
	FilePath string `json:"file_path"`
}

// Images holds the poster and backdrop sections of a details response
type Images struct {
	Posters   []ImageRef `json:"posters,omitempty"`
	Backdrops []ImageRef `json:"backdrops,omitempty"`
}

// Details is the expanded per-title record from movie/{id} or tv/{id}
// with the default append_to_response sections.
type Details struct {
	ID             int      `json:"id"`
	Title          string   `json:"title,omitempty"`
	Name           string   `json:"name,omitempty"`
	Overview       string   `json:"overview,omitempty"`
	Tagline        string   `json:"tagline,omitempty"`
	Runtime        int      `json:"runtime,omitempty"`
	EpisodeRunTime []int    `json:"episode_run_time,omitempty"`
	ReleaseDate    string   `json:"release_date,omitempty"`
	FirstAirDate   string   `json:"first_air_date,omitempty"`
	Genres         []Genre  `json:"genres,omitempty"`
	Credits        *Credits `json:"credits,omitempty"`
	Images         *Images  `json:"images,omitempty"`
	VoteAverage    float64  `json:"vote_average"`
}
