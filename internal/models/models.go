// package models defines the data model for the album review catalog
package models

import (
	"fmt"
	"time"
)

// AlbumType enumerates the catalog's album classifications.
type AlbumType string

const (
	TypeAlbum       AlbumType = "album"
	TypeSingle      AlbumType = "single"
	TypeCompilation AlbumType = "compilation"
)

// Artist is a reference to a catalog artist, owned by its containing Album.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is a cover image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Review is a single record from the editorial review feed.
//
// Reviews are immutable once scraped; a matched Album holds one read-only.
type Review struct {
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	Score       float64 `json:"score"`
	PublishDate string  `json:"publish_date"`
	URL         string  `json:"url"`
}

// Album is the canonical catalog-identified album entity.
//
// Identity and catalog fields are fixed at match time; only the Favorited and
// Listened flags mutate afterwards.
type Album struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artists     []Artist  `json:"artists"`
	ReleaseDate string    `json:"release_date"` // ISO form, yyyy-mm-dd
	Images      []Image   `json:"images"`
	Genres      []string  `json:"genres"`
	Type        AlbumType `json:"type"`
	Favorited   bool      `json:"favorited"`
	Listened    bool      `json:"listened"`
	Review      *Review   `json:"review,omitempty"`
}

// ReleaseYear returns the 4-character calendar-year prefix of the release date.
func (a *Album) ReleaseYear() string {
	if len(a.ReleaseDate) < 4 {
		return ""
	}
	return a.ReleaseDate[:4]
}

// ArtistNames returns the album's artist names in order.
func (a *Album) ArtistNames() []string {
	names := make([]string, len(a.Artists))
	for i, artist := range a.Artists {
		names[i] = artist.Name
	}
	return names
}

// Filter is the active view criteria for the collection.
//
// Zero-valued fields impose no constraint; set fields combine with AND.
type Filter struct {
	Year          string    `json:"year,omitempty"` // 4-digit calendar year
	Genre         string    `json:"genre,omitempty"`
	Type          AlbumType `json:"type,omitempty"`
	FavoritedOnly bool      `json:"favorited_only"`
	ListenedOnly  bool      `json:"listened_only"`
}

// Matches reports whether the album satisfies every set criterion.
func (f Filter) Matches(a *Album) bool {
	if f.Year != "" && a.ReleaseYear() != f.Year {
		return false
	}
	if f.Genre != "" && !containsGenre(a.Genres, f.Genre) {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.FavoritedOnly && !a.Favorited {
		return false
	}
	if f.ListenedOnly && !a.Listened {
		return false
	}
	return true
}

func containsGenre(genres []string, genre string) bool {
	for _, g := range genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// PersistedAlbum wraps an Album with persistence metadata for the sqlite collection cache.
type PersistedAlbum struct {
	id        string
	sequence  int
	album     Album
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedAlbum creates a PersistedAlbum from a matched album entity.
func NewPersistedAlbum(sequence int, album Album) *PersistedAlbum {
	now := time.Now()
	return &PersistedAlbum{
		sequence:  sequence,
		album:     album,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedAlbum) ID() string           { return p.id }
func (p *PersistedAlbum) Sequence() int        { return p.sequence }
func (p *PersistedAlbum) Album() Album         { return p.album }
func (p *PersistedAlbum) CreatedAt() time.Time { return p.createdAt }
func (p *PersistedAlbum) UpdatedAt() time.Time { return p.updatedAt }
func (p *PersistedAlbum) DeletedAt() *time.Time {
	return p.deletedAt
}

func (p *PersistedAlbum) SetID(id string)               { p.id = id }
func (p *PersistedAlbum) SetAlbum(album Album)          { p.album = album }
func (p *PersistedAlbum) SetCreatedAt(t time.Time)      { p.createdAt = t }
func (p *PersistedAlbum) SetUpdatedAt(t time.Time)      { p.updatedAt = t }
func (p *PersistedAlbum) SetDeletedAt(t *time.Time)     { p.deletedAt = t }
func (p *PersistedAlbum) SetFlags(favorited, listened bool) {
	p.album.Favorited = favorited
	p.album.Listened = listened
}

// Validate checks the persisted album's required fields.
func (p *PersistedAlbum) Validate() error {
	if p.album.ID == "" {
		return fmt.Errorf("album missing catalog id")
	}
	if p.album.Title == "" {
		return fmt.Errorf("album missing title")
	}
	if len(p.album.Artists) == 0 {
		return fmt.Errorf("album %s has no artists", p.album.ID)
	}
	return nil
}
