package catalog

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/filmfinder/filmfinder/internal/models"
	"github.com/filmfinder/filmfinder/internal/services/tmdb"
	"github.com/sirupsen/logrus"
)

// ErrSearchQueryRequired rejects switching to the search feed without text
var ErrSearchQueryRequired = errors.New("search feed requires a non-empty query")

// Fetcher is the upstream access the manager depends on. The production
// implementation is the tmdb client; tests use a scripted double.
type Fetcher interface {
	ListFeed(ctx context.Context, fn string, params url.Values) (*tmdb.ListResponse, error)
	GenreList(ctx context.Context, mediaType models.MediaType) ([]tmdb.Genre, error)
	Details(ctx context.Context, selected models.SelectedItem) (*tmdb.Details, error)
}

// PageView is the derived, displayed page plus the query that produced it
type PageView struct {
	Query        models.FeedQuery     `json:"query"`
	State        models.FetchState    `json:"state"`
	Error        string               `json:"error,omitempty"`
	GenreChoices []string             `json:"genreChoices"`
	Items        []models.CatalogItem `json:"items"`
}

// DetailsView is the state of the details overlay
type DetailsView struct {
	Selected *models.SelectedItem `json:"selected,omitempty"`
	Item     *models.CatalogItem  `json:"item,omitempty"`
	Details  *tmdb.Details        `json:"details,omitempty"`
	State    models.FetchState    `json:"state"`
	Error    string               `json:"error,omitempty"`
}

// Stats summarizes the session state for the status endpoint
type Stats struct {
	Feed        models.FeedID     `json:"feed"`
	State       models.FetchState `json:"state"`
	CatalogSize int               `json:"catalog_size"`
	Favorites   int               `json:"favorites"`
	Watchlist   int               `json:"watchlist"`
	MovieGenres int               `json:"movie_genres"`
	TVGenres    int               `json:"tv_genres"`
}

// Manager owns the client-visible state: the active feed query, the
// session catalog, the persisted favorites library, the watchlist and the
// genre vocabularies. All mutation happens under one lock; fetch results
// arriving after a newer parameter change are dropped (last-request-wins).
type Manager struct {
	mu        sync.Mutex
	fetcher   Fetcher
	store     FavoriteStore
	logger    *logrus.Logger
	imageBase string

	// clearListOnError blanks the grid at fetch start (original
	// behaviour); when false the last good page stays under the error.
	clearListOnError bool

	query     models.FeedQuery
	items     []models.CatalogItem
	catalog   map[string]models.CatalogItem
	favorites map[string]models.CatalogItem
	// favOrder tracks the favorites library in insertion order; its ids
	// always mirror the favorites map keys.
	favOrder  []string
	watchlist []string
	genres    map[models.MediaType]GenreSet

	state  models.FetchState
	errMsg string

	listGen    uint64
	listCancel context.CancelFunc

	selected     *models.SelectedItem
	details      *tmdb.Details
	detailState  models.FetchState
	detailErr    string
	detailGen    uint64
	detailCancel context.CancelFunc
}

// NewManager creates a manager and restores the persisted favorites
// library into the session catalog.
func NewManager(fetcher Fetcher, store FavoriteStore, imageBase string, clearListOnError bool, logger *logrus.Logger) *Manager {
	m := &Manager{
		fetcher:          fetcher,
		store:            store,
		logger:           logger,
		imageBase:        imageBase,
		clearListOnError: clearListOnError,
		query: models.FeedQuery{
			Feed:              models.FeedPopular,
			MediaType:         models.MediaTypeMovie,
			TrendingMediaType: models.MediaTypeMovie,
			TrendingWindow:    models.WindowDay,
			MinRating:         7,
			Page:              1,
			TotalPages:        1,
		},
		catalog:   make(map[string]models.CatalogItem),
		favorites: make(map[string]models.CatalogItem),
		genres: map[models.MediaType]GenreSet{
			models.MediaTypeMovie: {},
			models.MediaTypeTV:    {},
		},
		state:       models.StateIdle,
		detailState: models.StateIdle,
	}

	payload, err := store.LoadFavorites()
	if err != nil {
		logger.WithError(err).Warn("Failed to restore favorites from storage")
	}
	m.favorites, m.favOrder = DecodeLibrary(payload)
	for id, item := range m.favorites {
		m.catalog[id] = item
	}

	return m
}

// Close cancels any in-flight fetches
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listCancel != nil {
		m.listCancel()
		m.listCancel = nil
	}
	if m.detailCancel != nil {
		m.detailCancel()
		m.detailCancel = nil
	}
	m.listGen++
	m.detailGen++
}

// SetFeed switches the active feed. Switching to search is rejected while
// the query text is empty; switching feed resets the page and clears any
// error from a prior fetch.
func (m *Manager) SetFeed(feed models.FeedID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if feed == models.FeedSearch && strings.TrimSpace(m.query.Query) == "" {
		return ErrSearchQueryRequired
	}
	if m.query.Feed == feed {
		return nil
	}

	m.query.Feed = feed
	if feed != models.FeedTrending {
		m.query.TrendingMediaType = m.query.MediaType
	}
	m.query.Page = 1
	m.errMsg = ""
	m.reloadLocked()
	return nil
}

// SetQueryText updates the free-text query. Non-empty text switches onto
// the search feed; emptying the text while on search reverts to popular.
func (m *Manager) SetQueryText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.query.Query = text
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && m.query.Feed != models.FeedSearch {
		m.query.Feed = models.FeedSearch
	}
	if trimmed == "" && m.query.Feed == models.FeedSearch {
		m.query.Feed = models.FeedPopular
	}
	m.query.Page = 1
	m.reloadLocked()
}

// SetMediaType switches the active media type. The trending media type
// follows it, the displayed genre choices swap to the new vocabulary and
// active filters missing from it are dropped.
func (m *Manager) SetMediaType(mediaType models.MediaType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.query.MediaType == mediaType {
		return
	}
	m.query.MediaType = mediaType
	m.query.TrendingMediaType = mediaType
	m.dropUnknownGenresLocked()
	m.query.Page = 1
	m.reloadLocked()
}

// SetTrendingWindow sets the trending aggregation window
func (m *Manager) SetTrendingWindow(window models.TimeWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if window != models.WindowWeek {
		window = models.WindowDay
	}
	if m.query.TrendingWindow == window {
		return
	}
	m.query.TrendingWindow = window
	m.query.Page = 1
	m.reloadLocked()
}

// SetMinRating sets the minimum rating threshold
func (m *Manager) SetMinRating(minRating float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.query.MinRating == minRating {
		return
	}
	m.query.MinRating = minRating
	m.query.Page = 1
	m.reloadLocked()
}

// ToggleGenre flips one genre name in the active filter set
func (m *Manager) ToggleGenre(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.query.Genres = toggleID(m.query.Genres, name)
	m.query.Page = 1
	m.reloadLocked()
}

// SetGenres replaces the active genre filter set
func (m *Manager) SetGenres(names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.query.Genres = append([]string(nil), names...)
	m.query.Page = 1
	m.reloadLocked()
}

// SetPage moves to another page of the current feed, clamped to the known
// page range.
func (m *Manager) SetPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page = clampPage(page, m.query.TotalPages)
	if m.query.Page == page {
		return
	}
	m.query.Page = page
	m.reloadLocked()
}

// ToggleFavorite flips membership in the favorites library. Adding
// requires a known snapshot from the catalog or the current list; without
// one the toggle is a no-op. The full snapshot is persisted after every
// change; a persistence failure is logged but does not undo the toggle.
func (m *Manager) ToggleFavorite(id string) (favorited, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.favorites[id]; ok {
		delete(m.favorites, id)
		m.favOrder = removeID(m.favOrder, id)
		m.persistFavoritesLocked()
		return false, true
	}

	item, ok := m.catalog[id]
	if !ok {
		for _, entry := range m.items {
			if entry.ID == id {
				item = entry
				ok = true
				break
			}
		}
	}
	if !ok {
		return false, false
	}

	m.favorites[id] = item
	m.favOrder = append(m.favOrder, id)
	m.catalog[id] = item
	m.persistFavoritesLocked()
	return true, true
}

// IsFavorite reports membership in the favorites library
func (m *Manager) IsFavorite(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favorites[id]
	return ok
}

// ToggleWatchlist flips membership in the ordered watchlist. The
// watchlist is session-only state; favorites persist, the watchlist does
// not.
func (m *Manager) ToggleWatchlist(id string) (watchlisted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.watchlist)
	m.watchlist = toggleID(m.watchlist, id)
	return len(m.watchlist) > before
}

// Select loads the expanded detail record for one title. A newer
// selection supersedes and cancels the previous detail fetch.
func (m *Manager) Select(selected models.SelectedItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detailCancel != nil {
		m.detailCancel()
		m.detailCancel = nil
	}
	m.detailGen++

	sel := selected
	m.selected = &sel
	m.detailState = models.StateLoading
	m.detailErr = ""

	gen := m.detailGen
	ctx, cancel := context.WithCancel(context.Background())
	m.detailCancel = cancel

	go func() {
		details, err := m.fetcher.Details(ctx, sel)

		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.detailGen || ctx.Err() != nil {
			return
		}
		// Release the fetch context now that the result is in.
		cancel()
		m.detailCancel = nil
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.detailState = models.StateError
			m.detailErr = err.Error()
			m.logger.WithError(err).WithField("id", sel.ID).Warn("Details fetch failed")
			return
		}
		m.details = details
		m.detailState = models.StateSuccess
	}()
}

// ClearSelection cancels any in-flight detail fetch and clears the
// detail state.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detailCancel != nil {
		m.detailCancel()
		m.detailCancel = nil
	}
	m.detailGen++
	m.selected = nil
	m.details = nil
	m.detailErr = ""
	m.detailState = models.StateIdle
}

// RefreshGenres fetches both genre vocabularies. Each media type is
// fetched independently; a failure on one does not block the other. Each
// fetched vocabulary replaces the previous one wholesale.
func (m *Manager) RefreshGenres(ctx context.Context) error {
	var errs []error
	for _, mediaType := range []models.MediaType{models.MediaTypeMovie, models.MediaTypeTV} {
		genres, err := m.fetcher.GenreList(ctx, mediaType)
		if err != nil {
			m.logger.WithError(err).WithField("media_type", mediaType).Warn("Failed to load genre vocabulary")
			errs = append(errs, err)
			continue
		}
		m.applyGenres(mediaType, NewGenreSet(genres))
	}
	return errors.Join(errs...)
}

func (m *Manager) applyGenres(mediaType models.MediaType, set GenreSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.genres[mediaType] = set
	if mediaType == m.query.MediaType && m.dropUnknownGenresLocked() {
		m.query.Page = 1
		m.reloadLocked()
	}
}

// dropUnknownGenresLocked removes active genre filters that are not part
// of the current media type's vocabulary. Reports whether the set changed.
func (m *Manager) dropUnknownGenresLocked() bool {
	vocabulary := m.genres[m.query.MediaType].NameToID
	kept := m.query.Genres[:0:0]
	for _, name := range m.query.Genres {
		if _, ok := vocabulary[name]; ok {
			kept = append(kept, name)
		}
	}
	changed := len(kept) != len(m.query.Genres)
	m.query.Genres = kept
	return changed
}

// Reload re-triggers the current feed's fetch
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloadLocked()
}

// reloadLocked starts a new list fetch for the current parameters,
// superseding any in-flight one. Local feeds never hit the network.
func (m *Manager) reloadLocked() {
	if m.listCancel != nil {
		m.listCancel()
		m.listCancel = nil
	}
	m.listGen++

	if m.query.Feed.IsLocal() {
		m.state = models.StateIdle
		m.errMsg = ""
		return
	}

	if m.query.Feed == models.FeedSearch && strings.TrimSpace(m.query.Query) == "" {
		m.items = nil
		m.state = models.StateIdle
		m.errMsg = ""
		m.query.TotalPages = 1
		return
	}

	fn, params, fallback := m.buildRequestLocked()
	gen := m.listGen
	page := m.query.Page
	ctx, cancel := context.WithCancel(context.Background())
	m.listCancel = cancel

	m.state = models.StateLoading
	m.errMsg = ""
	if m.clearListOnError {
		m.items = nil
	}

	go func() {
		response, err := m.fetcher.ListFeed(ctx, fn, params)

		m.mu.Lock()
		defer m.mu.Unlock()
		// A fetch superseded by a newer parameter change is cancelled and
		// its result discarded without touching error or result state.
		if gen != m.listGen || ctx.Err() != nil {
			return
		}
		// Release the fetch context now that the result is in.
		cancel()
		m.listCancel = nil

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.state = models.StateError
			m.errMsg = err.Error()
			m.logger.WithError(err).WithField("fn", fn).Warn("List fetch failed")
			return
		}

		total := response.TotalPages
		if total < 1 {
			total = 1
		}
		m.query.TotalPages = total
		if page > total {
			// Clamp down and re-derive rather than rendering an
			// out-of-range page.
			m.query.Page = total
			m.reloadLocked()
			return
		}

		records := response.Records()
		mapped := make([]models.CatalogItem, 0, len(records))
		for _, record := range records {
			mapped = append(mapped, MapListItem(record, fallback, m.genres, m.imageBase))
		}
		m.items = mapped
		for _, item := range mapped {
			m.catalog[item.ID] = item
		}
		if m.enrichFavoritesLocked() {
			m.persistFavoritesLocked()
		}
		m.state = models.StateSuccess
		m.errMsg = ""
	}()
}

// buildRequestLocked shapes the proxy operation and parameters for the
// active feed.
func (m *Manager) buildRequestLocked() (fn string, params url.Values, fallback models.MediaType) {
	params = url.Values{}
	fallback = m.query.MediaType

	switch m.query.Feed {
	case models.FeedNowPlaying:
		fn = "now_playing"
		params.Set("mediaType", string(m.query.MediaType))
	case models.FeedUpcoming:
		fn = "upcoming"
		params.Set("mediaType", string(m.query.MediaType))
	case models.FeedDiscover:
		fn = "discover"
		params.Set("mediaType", string(m.query.MediaType))
		if ids := m.activeGenreIDsLocked(); ids != "" {
			params.Set("with_genres", ids)
		}
	case models.FeedTrending:
		fn = "trending"
		params.Set("mediaType", string(m.query.TrendingMediaType))
		params.Set("timeWindow", string(m.query.TrendingWindow))
		fallback = m.query.TrendingMediaType
	case models.FeedSearch:
		fn = "search"
		params.Set("q", strings.TrimSpace(m.query.Query))
		params.Set("mediaType", string(m.query.MediaType))
	default:
		fn = "popular"
		params.Set("mediaType", string(m.query.MediaType))
	}

	params.Set("page", strconv.Itoa(m.query.Page))
	return fn, params, fallback
}

// activeGenreIDsLocked maps the active genre names to upstream IDs for
// discover's with_genres parameter. Names without an ID mapping (fallback
// vocabulary) contribute nothing.
func (m *Manager) activeGenreIDsLocked() string {
	vocabulary := m.genres[m.query.MediaType].NameToID
	var ids []string
	for _, name := range m.query.Genres {
		if id, ok := vocabulary[name]; ok {
			ids = append(ids, strconv.Itoa(id))
		}
	}
	return strings.Join(ids, ",")
}

// enrichFavoritesLocked refreshes favorite snapshots from the catalog so
// a favorited item's displayed fields stay current. Reports whether
// anything changed.
func (m *Manager) enrichFavoritesLocked() bool {
	changed := false
	for id, snapshot := range m.favorites {
		if latest, ok := m.catalog[id]; ok && !reflect.DeepEqual(snapshot, latest) {
			m.favorites[id] = latest
			changed = true
		}
	}
	return changed
}

func (m *Manager) persistFavoritesLocked() {
	payload, err := EncodeLibrary(m.favorites, m.favOrder)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to encode favorites snapshot")
		return
	}
	if err := m.store.SaveFavorites(payload); err != nil {
		m.logger.WithError(err).Warn("Failed to persist favorites to storage")
	}
}

// View derives the currently displayed page: feed-appropriate base list,
// rating/genre filter, then client-side pagination for the local feeds.
func (m *Manager) View() PageView {
	m.mu.Lock()
	defer m.mu.Unlock()

	var base []models.CatalogItem
	switch m.query.Feed {
	case models.FeedWatchlist:
		for _, id := range m.watchlist {
			if item, ok := m.catalog[id]; ok {
				base = append(base, item)
			}
		}
	case models.FeedFavorites:
		// Insertion order, resolved through the catalog with the stored
		// snapshot as fallback.
		for _, id := range m.favOrder {
			if item, ok := m.catalog[id]; ok {
				base = append(base, item)
			} else {
				base = append(base, m.favorites[id])
			}
		}
	default:
		base = m.items
	}

	filtered := Filter(base, m.query.MinRating, m.query.Genres)
	items := filtered
	if m.query.Feed.IsLocal() {
		// The provider knows nothing about the synthetic feeds, so the
		// page count derives from the filtered result.
		total := TotalPages(len(filtered))
		m.query.TotalPages = total
		m.query.Page = clampPage(m.query.Page, total)
		items = Paginate(filtered, m.query.Page)
	}

	query := m.query
	query.Genres = append([]string(nil), m.query.Genres...)

	return PageView{
		Query:        query,
		State:        m.state,
		Error:        m.errMsg,
		GenreChoices: m.genres[m.query.MediaType].Choices(),
		Items:        items,
	}
}

// DetailsState returns the details overlay state, resolving the selected
// item through the catalog with the favorite snapshot as fallback.
func (m *Manager) DetailsState() DetailsView {
	m.mu.Lock()
	defer m.mu.Unlock()

	view := DetailsView{
		State: m.detailState,
		Error: m.detailErr,
	}
	if m.selected == nil {
		return view
	}

	sel := *m.selected
	view.Selected = &sel
	view.Details = m.details
	if item, ok := m.catalog[sel.ID]; ok {
		view.Item = &item
	} else if item, ok := m.favorites[sel.ID]; ok {
		view.Item = &item
	}
	return view
}

// Stats returns session counters for the status endpoint
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Feed:        m.query.Feed,
		State:       m.state,
		CatalogSize: len(m.catalog),
		Favorites:   len(m.favorites),
		Watchlist:   len(m.watchlist),
		MovieGenres: len(m.genres[models.MediaTypeMovie].Names),
		TVGenres:    len(m.genres[models.MediaTypeTV].Names),
	}
}
