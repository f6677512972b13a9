package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// AlbumRepository implements models.Repository[*models.PersistedAlbum] for the
// matched collection cache.
//
// Albums are keyed by a generated row id; the catalog id (spotify_id) carries a
// UNIQUE constraint so a review batch never stores the same album twice.
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new AlbumRepository with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

const albumColumns = `id, sequence, spotify_id, title, artists, release_date, images, genres, album_type,
		favorited, listened, review_artist, review_album, review_score, review_url, review_published,
		created_at, updated_at, deleted_at`

// Create inserts a new [models.PersistedAlbum] into the database with generated ID and sequence
func (r *AlbumRepository) Create(album *models.PersistedAlbum) error {
	sequence, err := NextSequence(r.db, "albums")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	album.SetID(id)

	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	entity := album.Album()

	artists, err := json.Marshal(entity.Artists)
	if err != nil {
		return fmt.Errorf("failed to encode artists: %w", err)
	}
	images, err := json.Marshal(entity.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	genres, err := json.Marshal(entity.Genres)
	if err != nil {
		return fmt.Errorf("failed to encode genres: %w", err)
	}

	var reviewArtist, reviewAlbum, reviewURL, reviewPublished string
	var reviewScore float64
	if entity.Review != nil {
		reviewArtist = entity.Review.Artist
		reviewAlbum = entity.Review.Album
		reviewScore = entity.Review.Score
		reviewURL = entity.Review.URL
		reviewPublished = entity.Review.PublishDate
	}

	query := `
		INSERT INTO albums (` + albumColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		entity.ID,
		entity.Title,
		string(artists),
		entity.ReleaseDate,
		string(images),
		string(genres),
		string(entity.Type),
		entity.Favorited,
		entity.Listened,
		reviewArtist,
		reviewAlbum,
		reviewScore,
		reviewURL,
		reviewPublished,
		album.CreatedAt(),
		album.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}

	return nil
}

// Get retrieves an album by row ID, excluding soft-deleted albums
func (r *AlbumRepository) Get(id string) (*models.PersistedAlbum, error) {
	query := `
		SELECT ` + albumColumns + `
		FROM albums
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByCatalogID retrieves an album by its catalog (Spotify) id
func (r *AlbumRepository) GetByCatalogID(spotifyID string) (*models.PersistedAlbum, error) {
	query := `
		SELECT ` + albumColumns + `
		FROM albums
		WHERE spotify_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, spotifyID))
}

// Update modifies an existing album in the database
func (r *AlbumRepository) Update(album *models.PersistedAlbum) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	album.SetUpdatedAt(now)

	entity := album.Album()

	query := `
		UPDATE albums
		SET favorited = ?, listened = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, entity.Favorited, entity.Listened, now, album.ID())
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("album not found or already deleted: %s", album.ID())
	}

	return nil
}

// UpdateFlags persists favorite/listened state by catalog id.
//
// The in-memory store is authoritative for flags; this keeps the cache in step
// after a toggle so the next load reflects it.
func (r *AlbumRepository) UpdateFlags(spotifyID string, favorited, listened bool) error {
	query := `
		UPDATE albums
		SET favorited = ?, listened = ?, updated_at = ?
		WHERE spotify_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, favorited, listened, time.Now(), spotifyID)
	if err != nil {
		return fmt.Errorf("failed to update album flags: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("album not found or already deleted: %s", spotifyID)
	}

	return nil
}

// Delete soft-deletes an album by row ID
func (r *AlbumRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE albums
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("album not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all albums matching the given criteria, excluding soft-deleted albums
func (r *AlbumRepository) List(criteria map[string]any) ([]*models.PersistedAlbum, error) {
	query := `
		SELECT ` + albumColumns + `
		FROM albums
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if year, ok := criteria["year"].(string); ok && year != "" {
		query += " AND release_date LIKE ?"
		args = append(args, year+"%")
	}

	if favorited, ok := criteria["favorited"].(bool); ok && favorited {
		query += " AND favorited = 1"
	}

	if albumType, ok := criteria["type"].(string); ok && albumType != "" {
		query += " AND album_type = ?"
		args = append(args, albumType)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.PersistedAlbum
	for rows.Next() {
		album, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// ReplaceAll soft-deletes the current collection and inserts the given albums
// in order, in one transaction. Implements the refresh semantics of the store:
// a new match run replaces the cache, it never merges into it.
func (r *AlbumRepository) ReplaceAll(albums []models.Album) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	if _, err := tx.Exec("UPDATE albums SET deleted_at = ? WHERE deleted_at IS NULL", now); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	// Soft-deleted rows keep the UNIQUE(spotify_id) slot occupied; drop them
	// for catalog ids being re-inserted.
	for _, album := range albums {
		if _, err := tx.Exec("DELETE FROM albums WHERE spotify_id = ?", album.ID); err != nil {
			return fmt.Errorf("failed to clear stale album %s: %w", album.ID, err)
		}
	}

	query := `
		INSERT INTO albums (` + albumColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	for i, album := range albums {
		artists, err := json.Marshal(album.Artists)
		if err != nil {
			return fmt.Errorf("failed to encode artists: %w", err)
		}
		images, err := json.Marshal(album.Images)
		if err != nil {
			return fmt.Errorf("failed to encode images: %w", err)
		}
		genres, err := json.Marshal(album.Genres)
		if err != nil {
			return fmt.Errorf("failed to encode genres: %w", err)
		}

		var reviewArtist, reviewAlbum, reviewURL, reviewPublished string
		var reviewScore float64
		if album.Review != nil {
			reviewArtist = album.Review.Artist
			reviewAlbum = album.Review.Album
			reviewScore = album.Review.Score
			reviewURL = album.Review.URL
			reviewPublished = album.Review.PublishDate
		}

		_, err = tx.Exec(query,
			shared.GenerateID(),
			i+1,
			album.ID,
			album.Title,
			string(artists),
			album.ReleaseDate,
			string(images),
			string(genres),
			string(album.Type),
			album.Favorited,
			album.Listened,
			reviewArtist,
			reviewAlbum,
			reviewScore,
			reviewURL,
			reviewPublished,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert album %s: %w", album.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection replace: %w", err)
	}

	return nil
}

// scanOne scans a single [sql.Row] into a [models.PersistedAlbum]
func (r *AlbumRepository) scanOne(row *sql.Row) (*models.PersistedAlbum, error) {
	album, err := scanAlbum(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: album", shared.ErrNotFound)
	}
	return album, err
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedAlbum]
func (r *AlbumRepository) scanRow(rows *sql.Rows) (*models.PersistedAlbum, error) {
	return scanAlbum(rows.Scan)
}

func scanAlbum(scan func(dest ...any) error) (*models.PersistedAlbum, error) {
	var (
		id              string
		sequence        int
		spotifyID       string
		title           string
		artistsJSON     string
		releaseDate     string
		imagesJSON      string
		genresJSON      string
		albumType       string
		favorited       bool
		listened        bool
		reviewArtist    string
		reviewAlbum     string
		reviewScore     float64
		reviewURL       string
		reviewPublished string
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := scan(&id, &sequence, &spotifyID, &title, &artistsJSON, &releaseDate, &imagesJSON, &genresJSON,
		&albumType, &favorited, &listened, &reviewArtist, &reviewAlbum, &reviewScore, &reviewURL,
		&reviewPublished, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}

	var artists []models.Artist
	if err := json.Unmarshal([]byte(artistsJSON), &artists); err != nil {
		return nil, fmt.Errorf("failed to decode artists: %w", err)
	}
	var images []models.Image
	if err := json.Unmarshal([]byte(imagesJSON), &images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	var genres []string
	if err := json.Unmarshal([]byte(genresJSON), &genres); err != nil {
		return nil, fmt.Errorf("failed to decode genres: %w", err)
	}

	entity := models.Album{
		ID:          spotifyID,
		Title:       title,
		Artists:     artists,
		ReleaseDate: releaseDate,
		Images:      images,
		Genres:      genres,
		Type:        models.AlbumType(albumType),
		Favorited:   favorited,
		Listened:    listened,
	}

	if reviewURL != "" || reviewArtist != "" {
		entity.Review = &models.Review{
			Artist:      reviewArtist,
			Album:       reviewAlbum,
			Score:       reviewScore,
			PublishDate: reviewPublished,
			URL:         reviewURL,
		}
	}

	album := models.NewPersistedAlbum(sequence, entity)
	album.SetID(id)
	album.SetCreatedAt(createdAt)
	album.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		album.SetDeletedAt(&deletedAt.Time)
	}

	return album, nil
}
