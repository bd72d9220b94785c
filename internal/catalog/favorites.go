package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/filmfinder/filmfinder/internal/models"
)

// FavoriteStore is the narrow persistence capability the manager talks
// to. The manager never touches storage inline with derivation logic.
type FavoriteStore interface {
	LoadFavorites() ([]byte, error)
	SaveFavorites(payload []byte) error
}

// partialRecord is a loosely typed favorites entry as found in persisted
// snapshots. Legacy snapshots may carry numeric IDs, string ratings and
// missing fields.
type partialRecord struct {
	ID        interface{}   `json:"id"`
	Title     string        `json:"title"`
	Year      string        `json:"year"`
	Genres    []interface{} `json:"genres"`
	Rating    interface{}   `json:"rating"`
	Runtime   interface{}   `json:"runtime"`
	Poster    string        `json:"poster"`
	Overview  string        `json:"overview"`
	MediaType string        `json:"mediaType"`
}

func recordID(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func recordRating(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case string:
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return rating
	default:
		return 0
	}
}

// normalizeRecord applies field-by-field defaulting to produce the
// canonical item for one persisted entry.
func normalizeRecord(id string, record partialRecord) models.CatalogItem {
	item := models.CatalogItem{
		ID:        id,
		Title:     record.Title,
		Year:      record.Year,
		Rating:    recordRating(record.Rating),
		Poster:    record.Poster,
		Overview:  record.Overview,
		MediaType: models.ParseMediaType(record.MediaType),
	}
	if item.Title == "" {
		item.Title = "Untitled"
	}
	if item.Year == "" {
		item.Year = "-"
	}
	if item.Poster == "" {
		item.Poster = FallbackPoster
	}
	for _, entry := range record.Genres {
		if name, ok := entry.(string); ok {
			item.Genres = append(item.Genres, name)
		}
	}
	if minutes, ok := record.Runtime.(float64); ok {
		runtime := int(minutes)
		item.Runtime = &runtime
	}
	return item
}

// DecodeLibrary restores a favorites library from a persisted snapshot.
// Two legacy shapes are accepted: an array of partial records, and a map
// keyed by item ID. Entries without a usable ID are skipped; everything
// else is defaulted field by field. The returned order is the order
// entries appear in the snapshot, deduplicated. A nil or unreadable
// payload yields an empty library rather than an error.
func DecodeLibrary(payload []byte) (map[string]models.CatalogItem, []string) {
	library := make(map[string]models.CatalogItem)
	var order []string
	if len(payload) == 0 {
		return library, order
	}

	keep := func(id string, record partialRecord) {
		if _, seen := library[id]; !seen {
			order = append(order, id)
		}
		library[id] = normalizeRecord(id, record)
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(payload, &asArray); err == nil {
		for _, raw := range asArray {
			var record partialRecord
			if err := json.Unmarshal(raw, &record); err != nil {
				continue
			}
			id, ok := recordID(record.ID)
			if !ok {
				continue
			}
			keep(id, record)
		}
		return library, order
	}

	// Map shape: walk the tokens so key order survives the decode.
	if ids, records, err := decodeMapShape(payload); err == nil {
		for i, id := range ids {
			keep(id, records[i])
		}
	}
	return library, order
}

func decodeMapShape(payload []byte) ([]string, []partialRecord, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	if tok, err := decoder.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, errors.New("snapshot is not an object")
	}

	var ids []string
	var records []partialRecord
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, nil, err
		}
		id, _ := tok.(string)

		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if id == "" {
			continue
		}
		var record partialRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			continue
		}
		ids = append(ids, id)
		records = append(records, record)
	}
	return ids, records, nil
}

// EncodeLibrary serializes the full favorites snapshot as an array of
// records in library insertion order, the canonical write shape.
func EncodeLibrary(library map[string]models.CatalogItem, order []string) ([]byte, error) {
	items := make([]models.CatalogItem, 0, len(library))
	for _, id := range order {
		if item, ok := library[id]; ok {
			items = append(items, item)
		}
	}
	return json.Marshal(items)
}
