// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a full Spotify album record.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AlbumType   string          `json:"album_type"` // album, single, compilation
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	Genres      []string        `json:"genres"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

// SpotifySimpleTrack represents a track within an album listing (no popularity).
type SpotifySimpleTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TrackNumber int    `json:"track_number"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a full Spotify track record.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	URI         string              `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

type albumSearchResponse struct {
	Albums struct {
		Items []SpotifyAlbum `json:"items"`
	} `json:"albums"`
}

type albumTracksResponse struct {
	Items []SpotifySimpleTrack `json:"items"`
	Total int                  `json:"total"`
}

// SpotifyService implements the [Catalog] interface for Spotify API interactions.
// Uses [oauth2] for authentication and provides methods for album, library, and playlist operations.
type SpotifyService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	httpClient  *http.Client
	credentials map[string]string
	baseURL     string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
			"user-library-modify",
			"user-follow-modify",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		credentials: credentials,
		baseURL:     spotifyBaseURL,
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		if refresh, ok := credentials["refresh_token"]; ok && refresh != "" {
			s.token.RefreshToken = refresh
		}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the underlying OAuth2 config for the callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// A non-nil body is encoded as JSON; a non-nil result decodes the response body.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrUnauthorized)
	}

	apiURL := s.baseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: spotify returned 401", shared.ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrCatalogUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchAlbum searches for an album by artist and title, requesting at most one result.
func (s *SpotifyService) SearchAlbum(ctx context.Context, artist, title string) (*AlbumSummary, error) {
	query := url.QueryEscape(fmt.Sprintf("%s %s", artist, title))
	endpoint := fmt.Sprintf("/search?q=%s&type=album&limit=1", query)

	var response albumSearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Albums.Items) == 0 {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrNoMatch, artist, title)
	}

	item := response.Albums.Items[0]
	summary := &AlbumSummary{ID: item.ID, Title: item.Name}
	for _, a := range item.Artists {
		summary.Artists = append(summary.Artists, a.Name)
	}

	return summary, nil
}

// GetAlbum retrieves the full album record by ID.
//
// Search results are abbreviated (no genres), so the matcher always follows a
// search with this call.
func (s *SpotifyService) GetAlbum(ctx context.Context, albumID string) (*models.Album, error) {
	var album SpotifyAlbum
	endpoint := fmt.Sprintf("/albums/%s", albumID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &album); err != nil {
		return nil, err
	}

	return albumFromSpotify(album), nil
}

// GetAlbumTracks retrieves the album's track listing in track order.
func (s *SpotifyService) GetAlbumTracks(ctx context.Context, albumID string) ([]TrackSummary, error) {
	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=50", albumID)

	var response albumTracksResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]TrackSummary, 0, len(response.Items))
	for _, item := range response.Items {
		tracks = append(tracks, TrackSummary{
			ID:          item.ID,
			Title:       item.Name,
			TrackNumber: item.TrackNumber,
		})
	}

	return tracks, nil
}

// GetTrack retrieves a single track by ID, including its popularity score.
func (s *SpotifyService) GetTrack(ctx context.Context, trackID string) (*TrackDetail, error) {
	var track SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s", trackID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &track); err != nil {
		return nil, err
	}

	return &TrackDetail{
		ID:         track.ID,
		Title:      track.Name,
		URI:        track.URI,
		Popularity: track.Popularity,
	}, nil
}

// AddToLibrary saves an album to the user's library. Safe to repeat.
func (s *SpotifyService) AddToLibrary(ctx context.Context, albumID string) error {
	body := map[string][]string{"ids": {albumID}}
	return s.doRequest(ctx, http.MethodPut, "/me/albums", body, nil)
}

// RemoveFromLibrary removes an album from the user's library. Safe to repeat.
func (s *SpotifyService) RemoveFromLibrary(ctx context.Context, albumID string) error {
	body := map[string][]string{"ids": {albumID}}
	return s.doRequest(ctx, http.MethodDelete, "/me/albums", body, nil)
}

// FollowArtists follows every artist id in a single request.
func (s *SpotifyService) FollowArtists(ctx context.Context, artistIDs []string) error {
	if len(artistIDs) == 0 {
		return nil
	}

	body := map[string][]string{"ids": artistIDs}
	return s.doRequest(ctx, http.MethodPut, "/me/following?type=artist", body, nil)
}

// ListPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) ListPlaylists(ctx context.Context) ([]PlaylistSummary, error) {
	var allPlaylists []PlaylistSummary
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var response SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			allPlaylists = append(allPlaylists, PlaylistSummary{
				ID:         sp.ID,
				Name:       sp.Name,
				TrackCount: sp.Tracks.Total,
				Public:     sp.Public,
			})
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return allPlaylists, nil
}

// CreatePlaylist creates a playlist for the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*PlaylistSummary, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var created SpotifySimplePlaylist
	if err := s.doRequest(ctx, http.MethodPost, "/me/playlists", body, &created); err != nil {
		return nil, err
	}

	return &PlaylistSummary{
		ID:         created.ID,
		Name:       created.Name,
		TrackCount: created.Tracks.Total,
		Public:     created.Public,
	}, nil
}

// AddTrackToPlaylist appends a track URI to the playlist.
func (s *SpotifyService) AddTrackToPlaylist(ctx context.Context, playlistID, trackURI string) error {
	body := map[string][]string{"uris": {trackURI}}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// albumFromSpotify converts a Spotify album record to the domain entity with
// flags zeroed and no review attached.
func albumFromSpotify(sa SpotifyAlbum) *models.Album {
	album := &models.Album{
		ID:          sa.ID,
		Title:       sa.Name,
		ReleaseDate: sa.ReleaseDate,
		Genres:      sa.Genres,
		Type:        albumTypeFromSpotify(sa.AlbumType),
	}

	for _, artist := range sa.Artists {
		album.Artists = append(album.Artists, models.Artist{ID: artist.ID, Name: artist.Name})
	}

	for _, img := range sa.Images {
		album.Images = append(album.Images, models.Image{URL: img.URL, Height: img.Height, Width: img.Width})
	}

	return album
}

func albumTypeFromSpotify(albumType string) models.AlbumType {
	switch strings.ToLower(albumType) {
	case "single":
		return models.TypeSingle
	case "compilation":
		return models.TypeCompilation
	default:
		return models.TypeAlbum
	}
}
