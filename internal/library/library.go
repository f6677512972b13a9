// package library holds the in-memory album collection and its filtered view.
package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
)

// Synchronizer is the slice of the engine the store drives: matching reviews
// into albums and toggling favorite state. Satisfied by [tasks.Engine].
type Synchronizer interface {
	MatchReviews(ctx context.Context, progress chan<- tasks.ProgressUpdate, reviews []models.Review) (*tasks.MatchRunResult, error)
	ToggleFavorite(ctx context.Context, progress chan<- tasks.ProgressUpdate, album *models.Album) error
}

// Store is the authoritative in-memory set of album entities plus the active
// filter. It is the only component that inserts or replaces entities; the
// synchronizer mutates exactly one entity's flags per toggle invocation.
type Store struct {
	mu       sync.RWMutex
	albums   []*models.Album          // insertion order
	index    map[string]*models.Album // id → entity
	filter   models.Filter
	inflight map[string]struct{} // album ids with a toggle in progress

	engine Synchronizer
	logger *log.Logger
}

// StoreOpts contains configuration options for creating a Store.
type StoreOpts struct {
	Engine Synchronizer
	Logger *log.Logger
}

// NewStore creates an empty Store.
func NewStore(opts StoreOpts) *Store {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Store{
		index:    make(map[string]*models.Album),
		inflight: make(map[string]struct{}),
		engine:   opts.Engine,
		logger:   opts.Logger,
	}
}

// Refresh matches the review records and fully replaces the current album set
// with the result.
//
// No merge with prior state: favorite/listened flags on albums that drop out
// of the new match set are lost. A feed or matcher failure leaves the
// previous set untouched.
func (s *Store) Refresh(ctx context.Context, progress chan<- tasks.ProgressUpdate, reviews []models.Review) (*tasks.MatchRunResult, error) {
	if s.engine == nil {
		return nil, fmt.Errorf("%w: engine not initialized", shared.ErrCatalogUnavailable)
	}

	result, err := s.engine.MatchReviews(ctx, progress, reviews)
	if err != nil {
		return nil, err
	}

	albums := make([]*models.Album, 0, len(result.Albums))
	index := make(map[string]*models.Album, len(result.Albums))

	for i := range result.Albums {
		album := result.Albums[i]
		if _, ok := index[album.ID]; ok {
			// Same album reviewed twice in one batch; first entry wins.
			continue
		}
		entity := &album
		albums = append(albums, entity)
		index[album.ID] = entity
	}

	s.mu.Lock()
	s.albums = albums
	s.index = index
	s.mu.Unlock()

	s.logger.Infof("collection refreshed: %d albums (%d reviews skipped)", len(albums), result.SkippedCount)
	return result, nil
}

// Seed replaces the album set directly, bypassing the matcher. Used to load a
// previously persisted collection.
func (s *Store) Seed(albums []models.Album) {
	next := make([]*models.Album, 0, len(albums))
	index := make(map[string]*models.Album, len(albums))

	for i := range albums {
		album := albums[i]
		if _, ok := index[album.ID]; ok {
			continue
		}
		entity := &album
		next = append(next, entity)
		index[album.ID] = entity
	}

	s.mu.Lock()
	s.albums = next
	s.index = index
	s.mu.Unlock()
}

// SetFilter replaces the active filter wholesale.
func (s *Store) SetFilter(filter models.Filter) {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

// Filter returns the active filter.
func (s *Store) Filter() models.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// View returns every album satisfying the active filter, in insertion order.
//
// The predicate is evaluated on every call, never cached; entries are copies.
func (s *Store) View() []models.Album {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Album
	for _, album := range s.albums {
		if s.filter.Matches(album) {
			out = append(out, *album)
		}
	}
	return out
}

// Albums returns the full unfiltered collection in insertion order.
func (s *Store) Albums() []models.Album {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Album, 0, len(s.albums))
	for _, album := range s.albums {
		out = append(out, *album)
	}
	return out
}

// Get returns a copy of the album with the given id.
func (s *Store) Get(id string) (models.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	album, ok := s.index[id]
	if !ok {
		return models.Album{}, fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	return *album, nil
}

// Len returns the size of the unfiltered collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.albums)
}

// ToggleFavorite looks up the album by id and delegates to the synchronizer.
//
// Concurrent toggles on the same id are serialized with an in-flight guard:
// the second caller fails fast with shared.ErrSyncInFlight instead of racing
// the first toggle's optimistic flip.
func (s *Store) ToggleFavorite(ctx context.Context, progress chan<- tasks.ProgressUpdate, id string) error {
	s.mu.Lock()
	album, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrSyncInFlight, id)
	}
	s.inflight[id] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	}()

	return s.engine.ToggleFavorite(ctx, progress, album)
}

// ToggleListened flips the album's listened flag locally and returns the new
// value. No remote side effects.
func (s *Store) ToggleListened(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	album, ok := s.index[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}

	album.Listened = !album.Listened
	return album.Listened, nil
}
