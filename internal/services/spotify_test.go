package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing/httpmock"
	"golang.org/x/oauth2"
)

// newTestSpotify points a service at a test server with a fake token in place.
func newTestSpotify(t *testing.T, handler http.HandlerFunc) *SpotifyService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test-client",
		"client_secret": "test-secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.token = &oauth2.Token{AccessToken: "test-token"}
	srv.httpClient = server.Client()
	srv.baseURL = server.URL

	return srv
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("Requires Client ID and Secret", func(t *testing.T) {
		if _, err := NewSpotifyService(map[string]string{"client_secret": "s"}); err == nil {
			t.Error("expected error for missing client_id")
		}
		if _, err := NewSpotifyService(map[string]string{"client_id": "c"}); err == nil {
			t.Error("expected error for missing client_secret")
		}
	})

	t.Run("Defaults Redirect URI", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.config.RedirectURL != "http://localhost:3000/callback" {
			t.Errorf("unexpected redirect URL %s", srv.config.RedirectURL)
		}
	})

	t.Run("Auth URL Carries State", func(t *testing.T) {
		srv, _ := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})
		authURL := srv.GetAuthURL("state-123")
		if !strings.Contains(authURL, "state=state-123") {
			t.Errorf("auth URL missing state: %s", authURL)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	t.Run("Access Token", func(t *testing.T) {
		srv, _ := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})

		err := srv.Authenticate(context.Background(), map[string]string{
			"access_token":  "tok",
			"refresh_token": "ref",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.token.AccessToken != "tok" || srv.token.RefreshToken != "ref" {
			t.Error("token fields not stored")
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		srv, _ := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})

		err := srv.Authenticate(context.Background(), map[string]string{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Unauthenticated Requests Rejected", func(t *testing.T) {
		srv, _ := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})

		_, err := srv.SearchAlbum(context.Background(), "a", "b")
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestSearchAlbum(t *testing.T) {
	t.Run("Returns First Result", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search" {
				t.Errorf("expected path '/search', got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("type"); got != "album" {
				t.Errorf("expected type=album, got %s", got)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("unexpected auth header %s", got)
			}

			json.NewEncoder(w).Encode(map[string]any{
				"albums": map[string]any{
					"items": []map[string]any{
						{
							"id":      "album-1",
							"name":    "OK Computer",
							"artists": []map[string]any{{"id": "ar-1", "name": "Radiohead"}},
						},
					},
				},
			})
		})

		summary, err := srv.SearchAlbum(context.Background(), "Radiohead", "OK Computer")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if summary.ID != "album-1" || summary.Title != "OK Computer" {
			t.Errorf("unexpected summary %+v", summary)
		}
		if len(summary.Artists) != 1 || summary.Artists[0] != "Radiohead" {
			t.Errorf("unexpected artists %v", summary.Artists)
		}
	})

	t.Run("Empty Result Set", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"albums": map[string]any{"items": []any{}},
			})
		})

		_, err := srv.SearchAlbum(context.Background(), "Nobody", "Nothing")
		if !errors.Is(err, shared.ErrNoMatch) {
			t.Fatalf("expected ErrNoMatch, got %v", err)
		}
	})

	t.Run("Unauthorized Response", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := srv.SearchAlbum(context.Background(), "a", "b")
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := srv.SearchAlbum(context.Background(), "a", "b")
		if !errors.Is(err, shared.ErrCatalogUnavailable) {
			t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.httpClient = &http.Client{
			Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
		}

		_, err := srv.SearchAlbum(context.Background(), "a", "b")
		if !errors.Is(err, shared.ErrCatalogUnavailable) {
			t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
		}
	})
}

func TestGetAlbum(t *testing.T) {
	srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/albums/album-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":           "album-1",
			"name":         "In Rainbows",
			"album_type":   "album",
			"release_date": "2007-10-10",
			"genres":       []string{"art rock"},
			"artists":      []map[string]any{{"id": "ar-1", "name": "Radiohead"}},
			"images":       []map[string]any{{"url": "http://img", "height": 640, "width": 640}},
		})
	})

	album, err := srv.GetAlbum(context.Background(), "album-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if album.Title != "In Rainbows" || album.ReleaseDate != "2007-10-10" {
		t.Errorf("unexpected album %+v", album)
	}
	if album.ReleaseYear() != "2007" {
		t.Errorf("expected release year 2007, got %s", album.ReleaseYear())
	}
	if len(album.Artists) != 1 || album.Artists[0].ID != "ar-1" {
		t.Errorf("unexpected artists %v", album.Artists)
	}
	if album.Favorited || album.Listened {
		t.Error("flags should be zeroed on a fresh record")
	}
}

func TestAlbumTypeFromSpotify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"album", "album"},
		{"single", "single"},
		{"compilation", "compilation"},
		{"SINGLE", "single"},
		{"ep", "album"},
		{"", "album"},
	}

	for _, tt := range tests {
		if got := albumTypeFromSpotify(tt.input); string(got) != tt.want {
			t.Errorf("albumTypeFromSpotify(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestLibraryMutations(t *testing.T) {
	t.Run("Add Sends PUT With Album ID", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			if r.URL.Path != "/me/albums" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			body, _ := io.ReadAll(r.Body)
			var payload map[string][]string
			json.Unmarshal(body, &payload)
			if len(payload["ids"]) != 1 || payload["ids"][0] != "album-1" {
				t.Errorf("unexpected body %s", body)
			}

			w.WriteHeader(http.StatusOK)
		})

		if err := srv.AddToLibrary(context.Background(), "album-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Remove Sends DELETE", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			w.WriteHeader(http.StatusOK)
		})

		if err := srv.RemoveFromLibrary(context.Background(), "album-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Follow Batches Artist IDs", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			if got := r.URL.Query().Get("type"); got != "artist" {
				t.Errorf("expected type=artist, got %s", got)
			}

			body, _ := io.ReadAll(r.Body)
			var payload map[string][]string
			json.Unmarshal(body, &payload)
			if len(payload["ids"]) != 2 {
				t.Errorf("unexpected body %s", body)
			}

			w.WriteHeader(http.StatusNoContent)
		})

		if err := srv.FollowArtists(context.Background(), []string{"ar-1", "ar-2"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Follow Skips Empty Set", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected for an empty artist set")
		})

		if err := srv.FollowArtists(context.Background(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestListPlaylists(t *testing.T) {
	t.Run("Follows Pagination", func(t *testing.T) {
		srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			next := "more"
			page := map[string]any{
				"items": []map[string]any{
					{"id": "pl-1", "name": "Top Albums 2026", "tracks": map[string]int{"total": 12}},
				},
				"next": &next,
			}
			if r.URL.Query().Get("offset") == "50" {
				page = map[string]any{
					"items": []map[string]any{
						{"id": "pl-2", "name": "Road Trip", "public": true},
					},
					"next": nil,
				}
			}
			json.NewEncoder(w).Encode(page)
		})

		playlists, err := srv.ListPlaylists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists across pages, got %d", len(playlists))
		}
		if playlists[0].Name != "Top Albums 2026" || playlists[0].TrackCount != 12 {
			t.Errorf("unexpected first playlist %+v", playlists[0])
		}
		if playlists[1].ID != "pl-2" || !playlists[1].Public {
			t.Errorf("unexpected second playlist %+v", playlists[1])
		}
	})
}

func TestCreatePlaylist(t *testing.T) {
	srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/me/playlists" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["name"] != "Top Albums 2026" {
			t.Errorf("unexpected name %v", payload["name"])
		}
		if payload["public"] != false {
			t.Errorf("expected private playlist, got %v", payload["public"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":   "pl-new",
			"name": payload["name"],
		})
	})

	created, err := srv.CreatePlaylist(context.Background(), "Top Albums 2026", "Favorite album tracks from 2026", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID != "pl-new" || created.Name != "Top Albums 2026" {
		t.Errorf("unexpected playlist %+v", created)
	}
}

func TestAddTrackToPlaylist(t *testing.T) {
	srv := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl-1/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var payload map[string][]string
		json.NewDecoder(r.Body).Decode(&payload)
		if len(payload["uris"]) != 1 || payload["uris"][0] != "spotify:track:t1" {
			t.Errorf("unexpected body %v", payload)
		}

		w.WriteHeader(http.StatusCreated)
	})

	if err := srv.AddTrackToPlaylist(context.Background(), "pl-1", "spotify:track:t1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
