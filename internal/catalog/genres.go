package catalog

import (
	"github.com/filmfinder/filmfinder/internal/services/tmdb"
)

// FallbackGenres is shown while a vocabulary fetch has not resolved. The
// fallback names carry no ID mapping, so filtering against them matches
// nothing coming from upstream genre IDs. Known soft limitation.
var FallbackGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary",
	"Drama", "Fantasy", "History", "Horror", "Mystery", "Romance",
	"Sci-Fi", "Thriller",
}

// GenreSet is the per-media-type genre vocabulary: forward and reverse
// mappings plus the ordered list of names.
type GenreSet struct {
	Dict     map[int]string
	NameToID map[string]int
	Names    []string
}

// NewGenreSet builds a vocabulary from an upstream genre list. An empty
// list yields an empty (unresolved) set.
func NewGenreSet(genres []tmdb.Genre) GenreSet {
	set := GenreSet{
		Dict:     make(map[int]string),
		NameToID: make(map[string]int),
	}
	for _, genre := range genres {
		set.Dict[genre.ID] = genre.Name
		set.NameToID[genre.Name] = genre.ID
		set.Names = append(set.Names, genre.Name)
	}
	return set
}

// Resolved reports whether a vocabulary fetch has populated the set
func (g GenreSet) Resolved() bool {
	return len(g.Names) > 0
}

// Choices returns the displayed genre names: the vocabulary when resolved,
// the fixed fallback list otherwise.
func (g GenreSet) Choices() []string {
	if g.Resolved() {
		return append([]string(nil), g.Names...)
	}
	return append([]string(nil), FallbackGenres...)
}
