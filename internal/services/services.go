// package services defines the contracts for the remote collaborators: the
// music catalog and the editorial review feed.
package services

import (
	"context"

	"github.com/desertthunder/crate/internal/models"
)

// Catalog defines the typed capability to search, fetch, and mutate remote
// album, artist, playlist, and library resources.
//
// Every call is authenticated with the bearer credential supplied via
// Authenticate; an expired or missing credential surfaces as
// [shared.ErrUnauthorized] from any method.
type Catalog interface {
	// Authenticate performs OAuth or token authentication with the catalog.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// SearchAlbum resolves an (artist, title) pair to at most one abbreviated
	// album record. Returns shared.ErrNoMatch when the search yields nothing.
	SearchAlbum(ctx context.Context, artist, title string) (*AlbumSummary, error)

	// GetAlbum fetches the full catalog record for an album id.
	GetAlbum(ctx context.Context, albumID string) (*models.Album, error)

	// GetAlbumTracks lists the album's tracks in track order.
	GetAlbumTracks(ctx context.Context, albumID string) ([]TrackSummary, error)

	// GetTrack fetches per-track detail, including the popularity score.
	GetTrack(ctx context.Context, trackID string) (*TrackDetail, error)

	// AddToLibrary saves the album to the user's library (idempotent).
	AddToLibrary(ctx context.Context, albumID string) error

	// RemoveFromLibrary removes the album from the user's library (idempotent).
	RemoveFromLibrary(ctx context.Context, albumID string) error

	// FollowArtists follows every artist id (idempotent set union).
	FollowArtists(ctx context.Context, artistIDs []string) error

	// ListPlaylists retrieves all playlists owned by the authenticated user.
	ListPlaylists(ctx context.Context) ([]PlaylistSummary, error)

	// CreatePlaylist creates a new playlist for the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*PlaylistSummary, error)

	// AddTrackToPlaylist appends a track to the playlist.
	AddTrackToPlaylist(ctx context.Context, playlistID, trackURI string) error

	// Name returns the name of the catalog service (e.g., "Spotify")
	Name() string
}

// ReviewSource produces a finite sequence of raw review records from an
// editorial feed.
type ReviewSource interface {
	// FetchReviews scrapes the feed and returns the review records in
	// publication order. Returns shared.ErrSourceUnavailable when the feed is
	// unreachable or unparseable.
	FetchReviews(ctx context.Context) ([]models.Review, error)

	// Name returns the name of the feed (e.g., "Pitchfork")
	Name() string
}

// AlbumSummary is the abbreviated album record a search yields.
type AlbumSummary struct {
	ID      string
	Title   string
	Artists []string
}

// TrackSummary is an entry in an album's track listing.
type TrackSummary struct {
	ID          string
	Title       string
	TrackNumber int
}

// TrackDetail is the full track record with its popularity score.
type TrackDetail struct {
	ID         string
	Title      string
	URI        string
	Popularity int
}

// PlaylistSummary is a playlist as listed for the authenticated user.
type PlaylistSummary struct {
	ID         string
	Name       string
	TrackCount int
	Public     bool
}
