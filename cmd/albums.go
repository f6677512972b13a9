package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// AlbumsList prints the persisted collection, optionally filtered.
func (r *Runner) AlbumsList(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.loadCollection(repo); err != nil {
		return err
	}

	r.store.SetFilter(models.Filter{
		Year:          cmd.String("year"),
		Genre:         cmd.String("genre"),
		Type:          models.AlbumType(cmd.String("type")),
		FavoritedOnly: cmd.Bool("favorited"),
		ListenedOnly:  cmd.Bool("listened"),
	})

	albums := r.store.View()

	if cmd.Bool("json") {
		return r.writeJSON(albums, cmd.Bool("pretty"))
	}

	if len(albums) == 0 {
		r.writePlain("No albums in the collection. Run 'crate reviews sync' first.\n")
		return nil
	}

	r.writePlain("Albums (%d):\n\n", len(albums))
	for i, album := range albums {
		flags := ""
		if album.Favorited {
			flags += " ★"
		}
		if album.Listened {
			flags += " ✓"
		}
		r.writePlain("%d. %s - %s%s\n", i+1, strings.Join(album.ArtistNames(), ", "), album.Title, flags)
		r.writePlain("   ID: %s", album.ID)
		if album.ReleaseDate != "" {
			r.writePlain(" • Released: %s", album.ReleaseDate)
		}
		if album.Review != nil {
			r.writePlain(" • Score: %.1f", album.Review.Score)
		}
		r.writePlain("\n")
	}

	return nil
}

// AlbumsFavorite toggles an album's favorite state, synchronizing the remote
// library, artist follows, and the yearly playlist.
func (r *Runner) AlbumsFavorite(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: album id required", shared.ErrMissingArgument)
	}

	if err := r.ensureAuth(ctx); err != nil {
		return err
	}

	db, repo, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.loadCollection(repo); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("→ %s\n", update.Message)
		}
	}()

	err = r.store.ToggleFavorite(ctx, progressCh, id)
	close(progressCh)

	if err != nil {
		return err
	}

	album, err := r.store.Get(id)
	if err != nil {
		return err
	}

	if err := repo.UpdateFlags(id, album.Favorited, album.Listened); err != nil {
		r.logger.Warnf("failed to persist flags: %v", err)
	}

	if album.Favorited {
		r.writePlain("\n★ Favorited '%s'\n", album.Title)
		r.writePlain("Saved to library, followed %d artist(s), and added its top track to the yearly playlist.\n", len(album.Artists))
	} else {
		r.writePlain("\n✓ Removed '%s' from library\n", album.Title)
	}

	return nil
}

// AlbumsListened toggles an album's listened flag. Local state only.
func (r *Runner) AlbumsListened(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: album id required", shared.ErrMissingArgument)
	}

	db, repo, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.loadCollection(repo); err != nil {
		return err
	}

	listened, err := r.store.ToggleListened(id)
	if err != nil {
		return err
	}

	album, err := r.store.Get(id)
	if err != nil {
		return err
	}

	if err := repo.UpdateFlags(id, album.Favorited, listened); err != nil {
		r.logger.Warnf("failed to persist flags: %v", err)
	}

	if listened {
		r.writePlain("✓ Marked '%s' as listened\n", album.Title)
	} else {
		r.writePlain("✓ Marked '%s' as unlistened\n", album.Title)
	}

	return nil
}

// AlbumsExport writes the collection to a file in the requested format.
func (r *Runner) AlbumsExport(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.loadCollection(repo); err != nil {
		return err
	}

	r.store.SetFilter(models.Filter{FavoritedOnly: cmd.Bool("favorited")})
	albums := r.store.View()

	result, err := formatter.WriteExport(albums, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Infof("collection exported to %v (%d albums)", result.File, result.Count)

	r.writePlain("✓ Collection exported to %s\n", result.File)
	r.writePlain("  Format: %s\n", result.Format)
	r.writePlain("  Albums: %d\n", result.Count)
	return nil
}
