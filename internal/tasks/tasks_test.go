package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func newTestEngine(catalog services.Catalog, source services.ReviewSource) *Engine {
	return NewEngine(EngineOpts{
		Catalog:   catalog,
		Source:    source,
		RateLimit: 1000,
		Now:       fixedClock(2026),
	})
}

func matchingCatalog() *tu.MockCatalog {
	return &tu.MockCatalog{
		SearchAlbumFunc: func(ctx context.Context, artist, title string) (*services.AlbumSummary, error) {
			return &services.AlbumSummary{ID: "al-" + title, Title: title, Artists: []string{artist}}, nil
		},
		GetAlbumFunc: func(ctx context.Context, albumID string) (*models.Album, error) {
			return &models.Album{
				ID:          albumID,
				Title:       albumID,
				Artists:     []models.Artist{{ID: "ar-1", Name: "Artist"}},
				ReleaseDate: "2026-03-01",
				Type:        models.TypeAlbum,
			}, nil
		},
	}
}

func TestMatchReviews(t *testing.T) {
	t.Run("matches reviews in order and attaches records", func(t *testing.T) {
		catalog := matchingCatalog()
		engine := newTestEngine(catalog, nil)

		reviews := []models.Review{
			{Artist: "A", Album: "First", Score: 8.1},
			{Artist: "B", Album: "Second", Score: 6.4},
		}

		result, err := engine.MatchReviews(context.Background(), nil, reviews)
		if err != nil {
			t.Fatalf("match failed: %v", err)
		}

		if result.MatchedCount != 2 || result.SkippedCount != 0 {
			t.Fatalf("expected 2 matches, got %d matched %d skipped", result.MatchedCount, result.SkippedCount)
		}
		if result.MatchPercentage != 100 {
			t.Errorf("expected 100%%, got %.1f", result.MatchPercentage)
		}

		if result.Albums[0].ID != "al-First" || result.Albums[1].ID != "al-Second" {
			t.Errorf("albums out of review order: %v", result.Albums)
		}

		for i, album := range result.Albums {
			if album.Review == nil {
				t.Fatalf("album %d missing review record", i)
			}
			if album.Review.Score != reviews[i].Score {
				t.Errorf("album %d review score = %.1f, want %.1f", i, album.Review.Score, reviews[i].Score)
			}
			if album.Favorited || album.Listened {
				t.Errorf("album %d flags should start false", i)
			}
		}
	})

	t.Run("skips unmatched and failed reviews without aborting", func(t *testing.T) {
		catalog := matchingCatalog()
		catalog.SearchAlbumFunc = func(ctx context.Context, artist, title string) (*services.AlbumSummary, error) {
			switch title {
			case "Missing":
				return nil, fmt.Errorf("%w: %s", shared.ErrNoMatch, title)
			case "Broken":
				return nil, errors.New("boom")
			default:
				return &services.AlbumSummary{ID: "al-" + title}, nil
			}
		}

		engine := newTestEngine(catalog, nil)

		reviews := []models.Review{
			{Artist: "A", Album: "Missing"},
			{Artist: "B", Album: "Found"},
			{Artist: "C", Album: "Broken"},
		}

		result, err := engine.MatchReviews(context.Background(), nil, reviews)
		if err != nil {
			t.Fatalf("batch should not abort: %v", err)
		}

		if result.MatchedCount != 1 || result.SkippedCount != 2 {
			t.Fatalf("expected 1 matched 2 skipped, got %d/%d", result.MatchedCount, result.SkippedCount)
		}

		if !result.Results[0].Skipped || result.Results[0].Error != nil {
			t.Error("clean no-match skip should carry no error")
		}
		if !result.Results[2].Skipped || result.Results[2].Error == nil {
			t.Error("failed lookup skip should carry its error")
		}
		if len(result.Albums) != 1 || result.Albums[0].ID != "al-Found" {
			t.Errorf("unexpected album set: %v", result.Albums)
		}
	})

	t.Run("aborts on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		catalog := matchingCatalog()
		catalog.SearchAlbumFunc = func(ctx context.Context, artist, title string) (*services.AlbumSummary, error) {
			cancel()
			return nil, ctx.Err()
		}

		engine := newTestEngine(catalog, nil)

		_, err := engine.MatchReviews(ctx, nil, []models.Review{{Artist: "A", Album: "X"}, {Artist: "B", Album: "Y"}})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("nil catalog", func(t *testing.T) {
		engine := NewEngine(EngineOpts{})
		if _, err := engine.MatchReviews(context.Background(), nil, nil); !errors.Is(err, shared.ErrCatalogUnavailable) {
			t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
		}
	})
}

func TestFetchAndMatch(t *testing.T) {
	t.Run("fetches then matches", func(t *testing.T) {
		source := &tu.MockSource{Reviews: []models.Review{{Artist: "A", Album: "First"}}}
		engine := newTestEngine(matchingCatalog(), source)

		result, err := engine.FetchAndMatch(context.Background(), nil)
		if err != nil {
			t.Fatalf("fetch and match failed: %v", err)
		}
		if result.TotalReviews != 1 || result.MatchedCount != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("feed failure aborts", func(t *testing.T) {
		source := &tu.MockSource{Err: shared.ErrSourceUnavailable}
		engine := newTestEngine(matchingCatalog(), source)

		if _, err := engine.FetchAndMatch(context.Background(), nil); !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Fatalf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("nil source", func(t *testing.T) {
		engine := newTestEngine(matchingCatalog(), nil)
		if _, err := engine.FetchAndMatch(context.Background(), nil); !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Fatalf("expected ErrSourceUnavailable, got %v", err)
		}
	})
}

// favoriteCatalog returns a catalog primed for a full favorite sequence.
func favoriteCatalog() *tu.MockCatalog {
	return &tu.MockCatalog{
		GetAlbumTracksFunc: func(ctx context.Context, albumID string) ([]services.TrackSummary, error) {
			return []services.TrackSummary{
				{ID: "t1", Title: "One", TrackNumber: 1},
				{ID: "t2", Title: "Two", TrackNumber: 2},
				{ID: "t3", Title: "Three", TrackNumber: 3},
			}, nil
		},
		GetTrackFunc: func(ctx context.Context, trackID string) (*services.TrackDetail, error) {
			popularity := map[string]int{"t1": 44, "t2": 71, "t3": 71}
			return &services.TrackDetail{
				ID:         trackID,
				Title:      trackID,
				URI:        "spotify:track:" + trackID,
				Popularity: popularity[trackID],
			}, nil
		},
		ListPlaylistsFunc: func(ctx context.Context) ([]services.PlaylistSummary, error) {
			return []services.PlaylistSummary{{ID: "pl-other", Name: "Road Trip"}}, nil
		},
		CreatePlaylistFunc: func(ctx context.Context, name, description string, public bool) (*services.PlaylistSummary, error) {
			return &services.PlaylistSummary{ID: "pl-new", Name: name, Public: public}, nil
		},
	}
}

func testAlbum() *models.Album {
	return &models.Album{
		ID:    "al-1",
		Title: "Album",
		Artists: []models.Artist{
			{ID: "ar-1", Name: "Artist One"},
			{ID: "ar-2", Name: "Artist Two"},
			{ID: "ar-1", Name: "Artist One"},
		},
		ReleaseDate: "2024-11-08",
		Type:        models.TypeAlbum,
	}
}

func TestToggleFavorite(t *testing.T) {
	t.Run("favorite runs full sequence", func(t *testing.T) {
		catalog := favoriteCatalog()

		var followed []string
		catalog.FollowArtistsFunc = func(ctx context.Context, artistIDs []string) error {
			followed = artistIDs
			return nil
		}

		var insertedURI, insertedPlaylist string
		catalog.AddTrackToPlaylistFunc = func(ctx context.Context, playlistID, trackURI string) error {
			insertedPlaylist = playlistID
			insertedURI = trackURI
			return nil
		}

		var createdName, createdDesc string
		catalog.CreatePlaylistFunc = func(ctx context.Context, name, description string, public bool) (*services.PlaylistSummary, error) {
			createdName = name
			createdDesc = description
			if public {
				t.Error("yearly playlist should be private")
			}
			return &services.PlaylistSummary{ID: "pl-new", Name: name}, nil
		}

		engine := newTestEngine(catalog, nil)
		album := testAlbum()

		if err := engine.ToggleFavorite(context.Background(), nil, album); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}

		if !album.Favorited {
			t.Error("album should be favorited")
		}

		if catalog.CallCount("AddToLibrary") != 1 {
			t.Error("expected one library add")
		}

		// Duplicate artist ids collapse, order preserved.
		if len(followed) != 2 || followed[0] != "ar-1" || followed[1] != "ar-2" {
			t.Errorf("unexpected follow set: %v", followed)
		}

		// t2 and t3 tie at 71; first in track order wins.
		if insertedURI != "spotify:track:t2" {
			t.Errorf("expected top track t2, got %s", insertedURI)
		}
		if insertedPlaylist != "pl-new" {
			t.Errorf("expected new yearly playlist, got %s", insertedPlaylist)
		}

		// Clock is pinned to 2026.
		if createdName != "Top Albums 2026" {
			t.Errorf("unexpected playlist name %q", createdName)
		}
		if createdDesc != "Favorite album tracks from 2026" {
			t.Errorf("unexpected playlist description %q", createdDesc)
		}
	})

	t.Run("favorite reuses existing yearly playlist", func(t *testing.T) {
		catalog := favoriteCatalog()
		catalog.ListPlaylistsFunc = func(ctx context.Context) ([]services.PlaylistSummary, error) {
			return []services.PlaylistSummary{
				{ID: "pl-2025", Name: "Top Albums 2025"},
				{ID: "pl-2026", Name: "Top Albums 2026"},
			}, nil
		}

		var insertedPlaylist string
		catalog.AddTrackToPlaylistFunc = func(ctx context.Context, playlistID, trackURI string) error {
			insertedPlaylist = playlistID
			return nil
		}

		engine := newTestEngine(catalog, nil)
		album := testAlbum()

		if err := engine.ToggleFavorite(context.Background(), nil, album); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}

		if insertedPlaylist != "pl-2026" {
			t.Errorf("expected existing playlist pl-2026, got %s", insertedPlaylist)
		}
		if catalog.CallCount("CreatePlaylist") != 0 {
			t.Error("should not create a playlist when one exists")
		}
	})

	t.Run("failure reverts the local flag", func(t *testing.T) {
		catalog := favoriteCatalog()
		catalog.AddTrackToPlaylistFunc = func(ctx context.Context, playlistID, trackURI string) error {
			return errors.New("insert rejected")
		}

		engine := newTestEngine(catalog, nil)
		album := testAlbum()

		err := engine.ToggleFavorite(context.Background(), nil, album)
		if err == nil {
			t.Fatal("expected toggle to fail")
		}

		var serr *SyncError
		if !errors.As(err, &serr) {
			t.Fatalf("expected SyncError, got %T", err)
		}
		if serr.Step != StepPlaylistInsert {
			t.Errorf("expected failure at playlist_insert, got %s", serr.Step)
		}

		if album.Favorited {
			t.Error("favorite flag should be reverted")
		}
	})

	t.Run("early failure skips later steps", func(t *testing.T) {
		catalog := favoriteCatalog()
		catalog.AddToLibraryFunc = func(ctx context.Context, albumID string) error {
			return errors.New("library unavailable")
		}

		engine := newTestEngine(catalog, nil)
		album := testAlbum()

		err := engine.ToggleFavorite(context.Background(), nil, album)

		var serr *SyncError
		if !errors.As(err, &serr) || serr.Step != StepLibraryAdd {
			t.Fatalf("expected failure at library_add, got %v", err)
		}

		if catalog.CallCount("FollowArtists") != 0 || catalog.CallCount("GetAlbumTracks") != 0 {
			t.Error("later steps should not run after a failed library add")
		}
	})

	t.Run("unfavorite only removes from library", func(t *testing.T) {
		catalog := favoriteCatalog()
		engine := newTestEngine(catalog, nil)

		album := testAlbum()
		album.Favorited = true

		if err := engine.ToggleFavorite(context.Background(), nil, album); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}

		if album.Favorited {
			t.Error("album should be unfavorited")
		}
		if catalog.CallCount("RemoveFromLibrary") != 1 {
			t.Error("expected one library remove")
		}
		for _, method := range []string{"AddToLibrary", "FollowArtists", "GetAlbumTracks", "ListPlaylists", "AddTrackToPlaylist"} {
			if catalog.CallCount(method) != 0 {
				t.Errorf("%s should not be called on unfavorite", method)
			}
		}
	})

	t.Run("unfavorite failure reverts the flag", func(t *testing.T) {
		catalog := favoriteCatalog()
		catalog.RemoveFromLibraryFunc = func(ctx context.Context, albumID string) error {
			return errors.New("remove rejected")
		}

		engine := newTestEngine(catalog, nil)
		album := testAlbum()
		album.Favorited = true

		err := engine.ToggleFavorite(context.Background(), nil, album)

		var serr *SyncError
		if !errors.As(err, &serr) || serr.Step != StepLibraryRemove {
			t.Fatalf("expected failure at library_remove, got %v", err)
		}
		if !album.Favorited {
			t.Error("favorite flag should be restored")
		}
	})
}

func TestMostPopularTrack(t *testing.T) {
	t.Run("empty track list fails", func(t *testing.T) {
		catalog := favoriteCatalog()
		catalog.GetAlbumTracksFunc = func(ctx context.Context, albumID string) ([]services.TrackSummary, error) {
			return nil, nil
		}

		engine := newTestEngine(catalog, nil)
		if _, err := engine.mostPopularTrack(context.Background(), "al-1"); err == nil {
			t.Fatal("expected error for trackless album")
		}
	})

	t.Run("single track fetch failure fails the step", func(t *testing.T) {
		catalog := favoriteCatalog()
		catalog.GetTrackFunc = func(ctx context.Context, trackID string) (*services.TrackDetail, error) {
			if trackID == "t2" {
				return nil, errors.New("fetch failed")
			}
			return &services.TrackDetail{ID: trackID, Popularity: 1}, nil
		}

		engine := newTestEngine(catalog, nil)
		if _, err := engine.mostPopularTrack(context.Background(), "al-1"); err == nil {
			t.Fatal("expected error when a track fetch fails")
		}
	})
}

func TestDistinctArtistIDs(t *testing.T) {
	artists := []models.Artist{
		{ID: "b", Name: "B"},
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}

	ids := distinctArtistIDs(artists)
	want := []string{"b", "a", "c"}

	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}
