package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func sampleAlbum(spotifyID, title string) models.Album {
	return models.Album{
		ID:          spotifyID,
		Title:       title,
		Artists:     []models.Artist{{ID: "ar-1", Name: "Artist"}},
		ReleaseDate: "2024-11-08",
		Genres:      []string{"indie rock"},
		Type:        models.TypeAlbum,
		Review: &models.Review{
			Artist:      "Artist",
			Album:       title,
			Score:       8.2,
			URL:         "https://pitchfork.com/reviews/albums/x/",
			PublishDate: "2024-11-10T05:00:00",
		},
	}
}

func TestAlbumRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("Round Trip With Review", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAlbumRepository(db)
			album := models.NewPersistedAlbum(0, sampleAlbum("sp-1", "First"))

			if err := repo.Create(album); err != nil {
				t.Fatalf("failed to create album: %v", err)
			}
			if album.ID() == "" {
				t.Fatal("expected generated row id")
			}

			got, err := repo.Get(album.ID())
			if err != nil {
				t.Fatalf("failed to get album: %v", err)
			}

			entity := got.Album()
			if entity.ID != "sp-1" || entity.Title != "First" {
				t.Errorf("unexpected entity %+v", entity)
			}
			if len(entity.Artists) != 1 || entity.Artists[0].Name != "Artist" {
				t.Errorf("artists not round-tripped: %v", entity.Artists)
			}
			if len(entity.Genres) != 1 || entity.Genres[0] != "indie rock" {
				t.Errorf("genres not round-tripped: %v", entity.Genres)
			}
			if entity.Review == nil {
				t.Fatal("review should be reconstructed")
			}
			if entity.Review.Score != 8.2 || entity.Review.URL == "" {
				t.Errorf("review not round-tripped: %+v", entity.Review)
			}
		})

		t.Run("Without Review", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAlbumRepository(db)
			entity := sampleAlbum("sp-1", "First")
			entity.Review = nil

			album := models.NewPersistedAlbum(0, entity)
			if err := repo.Create(album); err != nil {
				t.Fatalf("failed to create album: %v", err)
			}

			got, err := repo.Get(album.ID())
			if err != nil {
				t.Fatalf("failed to get album: %v", err)
			}
			if got.Album().Review != nil {
				t.Error("expected nil review")
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAlbumRepository(db)
			album := models.NewPersistedAlbum(0, models.Album{Title: "No Catalog ID"})

			if err := repo.Create(album); err == nil {
				t.Fatal("expected validation error for missing catalog id")
			}
		})

		t.Run("DuplicateCatalogID", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAlbumRepository(db)
			if err := repo.Create(models.NewPersistedAlbum(0, sampleAlbum("sp-1", "First"))); err != nil {
				t.Fatalf("failed to create first album: %v", err)
			}
			if err := repo.Create(models.NewPersistedAlbum(0, sampleAlbum("sp-1", "Duplicate"))); err == nil {
				t.Fatal("expected error for duplicate catalog id")
			}
		})
	})

	t.Run("GetByCatalogID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAlbumRepository(db)
		if err := repo.Create(models.NewPersistedAlbum(0, sampleAlbum("sp-1", "First"))); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		got, err := repo.GetByCatalogID("sp-1")
		if err != nil {
			t.Fatalf("failed to get album: %v", err)
		}
		if got.Album().Title != "First" {
			t.Errorf("unexpected album %+v", got.Album())
		}

		if _, err := repo.GetByCatalogID("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateFlags", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAlbumRepository(db)
		if err := repo.Create(models.NewPersistedAlbum(0, sampleAlbum("sp-1", "First"))); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		if err := repo.UpdateFlags("sp-1", true, true); err != nil {
			t.Fatalf("failed to update flags: %v", err)
		}

		got, err := repo.GetByCatalogID("sp-1")
		if err != nil {
			t.Fatalf("failed to get album: %v", err)
		}
		if !got.Album().Favorited || !got.Album().Listened {
			t.Error("flags not persisted")
		}

		if err := repo.UpdateFlags("missing", true, false); err == nil {
			t.Fatal("expected error for unknown catalog id")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAlbumRepository(db)
		album := models.NewPersistedAlbum(0, sampleAlbum("sp-1", "First"))
		if err := repo.Create(album); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		if err := repo.Delete(album.ID()); err != nil {
			t.Fatalf("failed to delete album: %v", err)
		}

		if _, err := repo.Get(album.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("soft-deleted album should be invisible, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAlbumRepository(db)

		first := sampleAlbum("sp-1", "First")
		second := sampleAlbum("sp-2", "Second")
		second.ReleaseDate = "2023-02-14"
		second.Type = models.TypeSingle
		third := sampleAlbum("sp-3", "Third")
		third.Favorited = true

		for _, entity := range []models.Album{first, second, third} {
			if err := repo.Create(models.NewPersistedAlbum(0, entity)); err != nil {
				t.Fatalf("failed to create %s: %v", entity.ID, err)
			}
		}

		t.Run("All In Sequence Order", func(t *testing.T) {
			albums, err := repo.List(nil)
			if err != nil {
				t.Fatalf("failed to list albums: %v", err)
			}
			if len(albums) != 3 {
				t.Fatalf("expected 3 albums, got %d", len(albums))
			}
			for i, want := range []string{"sp-1", "sp-2", "sp-3"} {
				if albums[i].Album().ID != want {
					t.Errorf("position %d = %s, want %s", i, albums[i].Album().ID, want)
				}
			}
		})

		t.Run("By Year", func(t *testing.T) {
			albums, err := repo.List(map[string]any{"year": "2023"})
			if err != nil {
				t.Fatalf("failed to list albums: %v", err)
			}
			if len(albums) != 1 || albums[0].Album().ID != "sp-2" {
				t.Errorf("unexpected result %v", albums)
			}
		})

		t.Run("By Favorited", func(t *testing.T) {
			albums, err := repo.List(map[string]any{"favorited": true})
			if err != nil {
				t.Fatalf("failed to list albums: %v", err)
			}
			if len(albums) != 1 || albums[0].Album().ID != "sp-3" {
				t.Errorf("unexpected result %v", albums)
			}
		})

		t.Run("By Type", func(t *testing.T) {
			albums, err := repo.List(map[string]any{"type": "single"})
			if err != nil {
				t.Fatalf("failed to list albums: %v", err)
			}
			if len(albums) != 1 || albums[0].Album().ID != "sp-2" {
				t.Errorf("unexpected result %v", albums)
			}
		})
	})

	t.Run("ReplaceAll", func(t *testing.T) {
		t.Run("Swaps The Collection", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAlbumRepository(db)
			if err := repo.Create(models.NewPersistedAlbum(0, sampleAlbum("sp-old", "Old"))); err != nil {
				t.Fatalf("failed to seed: %v", err)
			}

			err := repo.ReplaceAll([]models.Album{
				sampleAlbum("sp-1", "First"),
				sampleAlbum("sp-2", "Second"),
			})
			if err != nil {
				t.Fatalf("failed to replace collection: %v", err)
			}

			albums, err := repo.List(nil)
			if err != nil {
				t.Fatalf("failed to list albums: %v", err)
			}
			if len(albums) != 2 {
				t.Fatalf("expected 2 albums after replace, got %d", len(albums))
			}
			if albums[0].Album().ID != "sp-1" || albums[1].Album().ID != "sp-2" {
				t.Errorf("unexpected order %v", albums)
			}
			if albums[0].Sequence() != 1 || albums[1].Sequence() != 2 {
				t.Errorf("sequence should restart at 1, got %d/%d", albums[0].Sequence(), albums[1].Sequence())
			}

			if _, err := repo.GetByCatalogID("sp-old"); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("old album should be soft-deleted, got %v", err)
			}
		})

		t.Run("Reinserts A Previously Stored Catalog ID", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAlbumRepository(db)
			if err := repo.ReplaceAll([]models.Album{sampleAlbum("sp-1", "First")}); err != nil {
				t.Fatalf("failed to seed: %v", err)
			}

			// Same catalog id again; the stale soft-deleted row must not
			// trip the unique constraint.
			updated := sampleAlbum("sp-1", "First")
			updated.Favorited = true

			if err := repo.ReplaceAll([]models.Album{updated}); err != nil {
				t.Fatalf("failed to replace with same catalog id: %v", err)
			}

			got, err := repo.GetByCatalogID("sp-1")
			if err != nil {
				t.Fatalf("failed to get album: %v", err)
			}
			if !got.Album().Favorited {
				t.Error("replacement should carry the new flag value")
			}
		})

		t.Run("Empty Set Clears The Collection", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAlbumRepository(db)
			if err := repo.Create(models.NewPersistedAlbum(0, sampleAlbum("sp-1", "First"))); err != nil {
				t.Fatalf("failed to seed: %v", err)
			}

			if err := repo.ReplaceAll(nil); err != nil {
				t.Fatalf("failed to clear collection: %v", err)
			}

			albums, err := repo.List(nil)
			if err != nil {
				t.Fatalf("failed to list albums: %v", err)
			}
			if len(albums) != 0 {
				t.Errorf("expected empty collection, got %d albums", len(albums))
			}
		})
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "albums")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	second, err := NextSequence(db, "albums")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("sequence should increment, got %d then %d", first, second)
	}
}
