package catalog

import (
	"reflect"
	"testing"

	"github.com/filmfinder/filmfinder/internal/models"
)

func TestDecodeLibraryArray(t *testing.T) {
	payload := []byte(`[
		{"id": 603, "title": "The Matrix", "year": "1999", "rating": "8.2", "genres": ["Action", 42]},
		{"id": "1396", "mediaType": "tv", "runtime": 47},
		{"title": "no id, skipped"},
		"not even an object"
	]`)

	library, order := DecodeLibrary(payload)
	if len(library) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(library))
	}
	if !reflect.DeepEqual(order, []string{"603", "1396"}) {
		t.Errorf("order = %v, want snapshot order [603 1396]", order)
	}

	matrix, ok := library["603"]
	if !ok {
		t.Fatal("numeric id 603 not normalized to a string key")
	}
	if matrix.Rating != 8.2 {
		t.Errorf("string rating = %v, want 8.2", matrix.Rating)
	}
	if !reflect.DeepEqual(matrix.Genres, []string{"Action"}) {
		t.Errorf("Genres = %v, want non-strings dropped", matrix.Genres)
	}

	show, ok := library["1396"]
	if !ok {
		t.Fatal("entry 1396 missing")
	}
	if show.Title != "Untitled" || show.Year != "-" || show.Poster != FallbackPoster {
		t.Errorf("defaults not applied: %+v", show)
	}
	if show.MediaType != models.MediaTypeTV {
		t.Errorf("MediaType = %q, want tv", show.MediaType)
	}
	if show.Runtime == nil || *show.Runtime != 47 {
		t.Errorf("Runtime = %v, want 47", show.Runtime)
	}
}

func TestDecodeLibraryMap(t *testing.T) {
	payload := []byte(`{
		"10": {"title": "Ten"},
		"2": {"title": "Two"},
		"bad": 17
	}`)

	library, order := DecodeLibrary(payload)
	if len(library) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(library))
	}
	if library["10"].Title != "Ten" || library["2"].Title != "Two" {
		t.Errorf("library = %+v, want Ten and Two", library)
	}
	// Key order in the snapshot survives, not a lexicographic sort
	if !reflect.DeepEqual(order, []string{"10", "2"}) {
		t.Errorf("order = %v, want [10 2]", order)
	}
}

func TestDecodeLibraryUnreadable(t *testing.T) {
	for _, payload := range [][]byte{nil, {}, []byte("not json"), []byte(`"just a string"`)} {
		library, order := DecodeLibrary(payload)
		if len(library) != 0 || len(order) != 0 {
			t.Errorf("DecodeLibrary(%q) = %v, %v, want empty", payload, library, order)
		}
	}
}

func TestEncodeLibraryRoundTrip(t *testing.T) {
	runtime := 136
	library := map[string]models.CatalogItem{
		"603": {
			ID:        "603",
			Title:     "The Matrix",
			Year:      "1999",
			Genres:    []string{"Action"},
			Rating:    8.2,
			Runtime:   &runtime,
			Poster:    "https://images.example.org/matrix.jpg",
			Overview:  "A hacker learns the truth.",
			MediaType: models.MediaTypeMovie,
		},
		"1396": {
			ID:        "1396",
			Title:     "Breaking Bad",
			Year:      "2008",
			Rating:    8.9,
			Poster:    "https://images.example.org/bb.jpg",
			MediaType: models.MediaTypeTV,
		},
	}
	order := []string{"1396", "603"}

	payload, err := EncodeLibrary(library, order)
	if err != nil {
		t.Fatalf("EncodeLibrary returned error: %v", err)
	}

	decoded, decodedOrder := DecodeLibrary(payload)
	if !reflect.DeepEqual(decoded, library) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, library)
	}
	if !reflect.DeepEqual(decodedOrder, order) {
		t.Errorf("order = %v, want insertion order %v preserved", decodedOrder, order)
	}
}

func TestEncodeLibrarySkipsStaleOrderEntries(t *testing.T) {
	library := map[string]models.CatalogItem{
		"a": {ID: "a", Title: "A", Year: "-", Poster: FallbackPoster, MediaType: models.MediaTypeMovie},
	}

	payload, err := EncodeLibrary(library, []string{"gone", "a"})
	if err != nil {
		t.Fatalf("EncodeLibrary returned error: %v", err)
	}
	decoded, order := DecodeLibrary(payload)
	if len(decoded) != 1 || !reflect.DeepEqual(order, []string{"a"}) {
		t.Errorf("decoded = %v, order = %v, want only the live entry", decoded, order)
	}
}
