package catalog

import (
	"github.com/filmfinder/filmfinder/internal/models"
)

// ItemsPerPage is the fixed client-side page size for the local feeds
const ItemsPerPage = 20

// Filter returns the items passing the rating threshold and, when genre
// filters are active, carrying every active genre name (exact match).
// Relative order is preserved.
func Filter(items []models.CatalogItem, minRating float64, activeGenres []string) []models.CatalogItem {
	filtered := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.Rating < minRating {
			continue
		}
		if !hasAllGenres(item.Genres, activeGenres) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func hasAllGenres(itemGenres, activeGenres []string) bool {
	for _, wanted := range activeGenres {
		found := false
		for _, name := range itemGenres {
			if name == wanted {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TotalPages computes the client-side page count for a local feed,
// never less than 1.
func TotalPages(count int) int {
	total := (count + ItemsPerPage - 1) / ItemsPerPage
	if total < 1 {
		return 1
	}
	return total
}

// Paginate slices out one client-side page. Remote feeds are already one
// page's worth and must not go through here.
func Paginate(items []models.CatalogItem, page int) []models.CatalogItem {
	start := (page - 1) * ItemsPerPage
	if start >= len(items) {
		return nil
	}
	end := start + ItemsPerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// clampPage restricts a page number to [1, totalPages]
func clampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// toggleID flips membership of id in an ordered list, preserving the
// order of the remaining entries.
func toggleID(list []string, id string) []string {
	for i, entry := range list {
		if entry == id {
			return append(append([]string(nil), list[:i]...), list[i+1:]...)
		}
	}
	return append(append([]string(nil), list...), id)
}

// removeID drops id from an ordered list, preserving the order of the
// remaining entries.
func removeID(list []string, id string) []string {
	kept := make([]string, 0, len(list))
	for _, entry := range list {
		if entry != id {
			kept = append(kept, entry)
		}
	}
	return kept
}
