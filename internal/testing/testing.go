// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
)

// MockCatalog is a configurable test double for [services.Catalog].
//
// Each method delegates to its corresponding Func field when set and returns
// zero values otherwise. Calls records method names in invocation order.
type MockCatalog struct {
	mu    sync.Mutex
	Calls []string

	AuthenticateFunc       func(ctx context.Context, credentials map[string]string) error
	SearchAlbumFunc        func(ctx context.Context, artist, title string) (*services.AlbumSummary, error)
	GetAlbumFunc           func(ctx context.Context, albumID string) (*models.Album, error)
	GetAlbumTracksFunc     func(ctx context.Context, albumID string) ([]services.TrackSummary, error)
	GetTrackFunc           func(ctx context.Context, trackID string) (*services.TrackDetail, error)
	AddToLibraryFunc       func(ctx context.Context, albumID string) error
	RemoveFromLibraryFunc  func(ctx context.Context, albumID string) error
	FollowArtistsFunc      func(ctx context.Context, artistIDs []string) error
	ListPlaylistsFunc      func(ctx context.Context) ([]services.PlaylistSummary, error)
	CreatePlaylistFunc     func(ctx context.Context, name, description string, public bool) (*services.PlaylistSummary, error)
	AddTrackToPlaylistFunc func(ctx context.Context, playlistID, trackURI string) error
}

func (m *MockCatalog) record(method string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, method)
	m.mu.Unlock()
}

// CallCount returns how many times the named method was invoked.
func (m *MockCatalog) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.Calls {
		if call == method {
			count++
		}
	}
	return count
}

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.record("Authenticate")
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, credentials)
	}
	return nil
}

func (m *MockCatalog) SearchAlbum(ctx context.Context, artist, title string) (*services.AlbumSummary, error) {
	m.record("SearchAlbum")
	if m.SearchAlbumFunc != nil {
		return m.SearchAlbumFunc(ctx, artist, title)
	}
	return nil, nil
}

func (m *MockCatalog) GetAlbum(ctx context.Context, albumID string) (*models.Album, error) {
	m.record("GetAlbum")
	if m.GetAlbumFunc != nil {
		return m.GetAlbumFunc(ctx, albumID)
	}
	return nil, nil
}

func (m *MockCatalog) GetAlbumTracks(ctx context.Context, albumID string) ([]services.TrackSummary, error) {
	m.record("GetAlbumTracks")
	if m.GetAlbumTracksFunc != nil {
		return m.GetAlbumTracksFunc(ctx, albumID)
	}
	return nil, nil
}

func (m *MockCatalog) GetTrack(ctx context.Context, trackID string) (*services.TrackDetail, error) {
	m.record("GetTrack")
	if m.GetTrackFunc != nil {
		return m.GetTrackFunc(ctx, trackID)
	}
	return nil, nil
}

func (m *MockCatalog) AddToLibrary(ctx context.Context, albumID string) error {
	m.record("AddToLibrary")
	if m.AddToLibraryFunc != nil {
		return m.AddToLibraryFunc(ctx, albumID)
	}
	return nil
}

func (m *MockCatalog) RemoveFromLibrary(ctx context.Context, albumID string) error {
	m.record("RemoveFromLibrary")
	if m.RemoveFromLibraryFunc != nil {
		return m.RemoveFromLibraryFunc(ctx, albumID)
	}
	return nil
}

func (m *MockCatalog) FollowArtists(ctx context.Context, artistIDs []string) error {
	m.record("FollowArtists")
	if m.FollowArtistsFunc != nil {
		return m.FollowArtistsFunc(ctx, artistIDs)
	}
	return nil
}

func (m *MockCatalog) ListPlaylists(ctx context.Context) ([]services.PlaylistSummary, error) {
	m.record("ListPlaylists")
	if m.ListPlaylistsFunc != nil {
		return m.ListPlaylistsFunc(ctx)
	}
	return nil, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name, description string, public bool) (*services.PlaylistSummary, error) {
	m.record("CreatePlaylist")
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, name, description, public)
	}
	return nil, nil
}

func (m *MockCatalog) AddTrackToPlaylist(ctx context.Context, playlistID, trackURI string) error {
	m.record("AddTrackToPlaylist")
	if m.AddTrackToPlaylistFunc != nil {
		return m.AddTrackToPlaylistFunc(ctx, playlistID, trackURI)
	}
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

// MockSource is a test double for [services.ReviewSource].
type MockSource struct {
	Reviews []models.Review
	Err     error
}

func (m *MockSource) FetchReviews(ctx context.Context) ([]models.Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Reviews, nil
}

func (m *MockSource) Name() string { return "mock-feed" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
