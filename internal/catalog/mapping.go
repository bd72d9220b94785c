package catalog

import (
	"math"
	"strconv"

	"github.com/filmfinder/filmfinder/internal/models"
	"github.com/filmfinder/filmfinder/internal/services/tmdb"
)

// FallbackPoster is used when the upstream record has no poster path
const FallbackPoster = "https://images.unsplash.com/photo-1496440737103-cd596325d314?q=80&w=1200&auto=format&fit=crop"

// formatYear extracts the 4-digit year from an upstream date string,
// or "-" when the date is absent.
func formatYear(value string) string {
	if len(value) < 4 {
		return "-"
	}
	return value[:4]
}

// roundRating keeps one decimal of precision
func roundRating(value float64) float64 {
	return math.Round(value*10) / 10
}

// MapListItem normalizes one upstream feed record into a CatalogItem.
// The record's own media_type wins when present; otherwise the feed's
// fallback type applies. Genre names resolve against the vocabulary of
// the resolved media type; unknown genre IDs are silently dropped.
func MapListItem(item tmdb.ListItem, fallback models.MediaType, genres map[models.MediaType]GenreSet, imageBase string) models.CatalogItem {
	mediaType := fallback
	if item.MediaType == string(models.MediaTypeTV) {
		mediaType = models.MediaTypeTV
	} else if item.MediaType == string(models.MediaTypeMovie) {
		mediaType = models.MediaTypeMovie
	}

	releaseDate := item.ReleaseDate
	if mediaType == models.MediaTypeTV {
		releaseDate = item.FirstAirDate
	}

	title := item.Title
	if title == "" {
		title = item.Name
	}
	if title == "" {
		title = "Untitled"
	}

	var names []string
	dict := genres[mediaType].Dict
	for _, genreID := range item.GenreIDs {
		if name, ok := dict[genreID]; ok {
			names = append(names, name)
		}
	}

	poster := FallbackPoster
	if item.PosterPath != "" {
		poster = imageBase + item.PosterPath
	}

	return models.CatalogItem{
		ID:        strconv.Itoa(item.ID),
		Title:     title,
		Year:      formatYear(releaseDate),
		Genres:    names,
		Rating:    roundRating(item.VoteAverage),
		Poster:    poster,
		Overview:  item.Overview,
		MediaType: mediaType,
	}
}
