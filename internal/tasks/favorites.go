package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"golang.org/x/sync/errgroup"
)

// SyncStep identifies the remote mutation step a toggle failed on.
type SyncStep int

const (
	StepLibraryAdd SyncStep = iota
	StepFollowArtists
	StepRankTracks
	StepResolvePlaylist
	StepPlaylistInsert
	StepLibraryRemove
)

func (s SyncStep) String() string {
	switch s {
	case StepLibraryAdd:
		return "library_add"
	case StepFollowArtists:
		return "follow_artists"
	case StepRankTracks:
		return "rank_tracks"
	case StepResolvePlaylist:
		return "resolve_playlist"
	case StepPlaylistInsert:
		return "playlist_insert"
	case StepLibraryRemove:
		return "library_remove"
	default:
		return ""
	}
}

// SyncError reports a failed favorite toggle: the step that failed and the
// originating error. By the time the caller sees one, the local favorite flag
// has already been restored to its pre-call value.
type SyncError struct {
	Step SyncStep
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("favorite sync failed at %s: %v", e.Step, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ToggleFavorite flips the album's favorite flag and drives the remote
// mutation sequence for the new state.
//
// The flag is flipped optimistically before any remote call so callers see
// consistent local state immediately. If any remote call fails the flip is
// reverted and a [SyncError] is returned; remote side effects already
// committed before the failing call are NOT compensated. Unfavoriting only
// removes the album from the library; playlist entries and artist follows
// are one-way.
//
// No retry is performed; the caller decides whether to re-invoke.
func (e *Engine) ToggleFavorite(ctx context.Context, progress chan<- ProgressUpdate, album *models.Album) error {
	if e.catalog == nil {
		return &SyncError{Step: StepLibraryAdd, Err: fmt.Errorf("catalog not initialized")}
	}

	target := !album.Favorited
	album.Favorited = target

	var serr *SyncError
	if target {
		serr = e.favorite(ctx, progress, album)
	} else {
		serr = e.unfavorite(ctx, progress, album)
	}

	if serr != nil {
		album.Favorited = !target
		e.logger.Errorf("toggle favorite reverted for %s: %v", album.ID, serr)
		return serr
	}

	return nil
}

// favorite runs the remote sequence for a newly favorited album: library add,
// artist follows, most-popular-track selection, yearly playlist upsert, and
// track insertion.
func (e *Engine) favorite(ctx context.Context, progress chan<- ProgressUpdate, album *models.Album) *SyncError {
	e.sendProgress(progress, libraryAddUpdate(1, 5, album.Title))
	if err := e.catalog.AddToLibrary(ctx, album.ID); err != nil {
		return &SyncError{Step: StepLibraryAdd, Err: err}
	}

	e.sendProgress(progress, followArtistsUpdate(2, 5, len(album.Artists)))
	if err := e.catalog.FollowArtists(ctx, distinctArtistIDs(album.Artists)); err != nil {
		return &SyncError{Step: StepFollowArtists, Err: err}
	}

	e.sendProgress(progress, rankTracksUpdate(3, 5, album.Title))
	top, err := e.mostPopularTrack(ctx, album.ID)
	if err != nil {
		return &SyncError{Step: StepRankTracks, Err: err}
	}

	year := e.now().Year()
	e.sendProgress(progress, resolvePlaylistUpdate(4, 5, year))
	playlist, err := e.resolveYearlyPlaylist(ctx, year)
	if err != nil {
		return &SyncError{Step: StepResolvePlaylist, Err: err}
	}

	e.sendProgress(progress, playlistInsertUpdate(5, 5, top.Title, playlist.Name))
	if err := e.catalog.AddTrackToPlaylist(ctx, playlist.ID, top.URI); err != nil {
		return &SyncError{Step: StepPlaylistInsert, Err: err}
	}

	return nil
}

// unfavorite removes the album from the remote library. Follows and playlist
// entries from the earlier favorite are left in place.
func (e *Engine) unfavorite(ctx context.Context, progress chan<- ProgressUpdate, album *models.Album) *SyncError {
	e.sendProgress(progress, libraryRemoveUpdate(1, 1, album.Title))
	if err := e.catalog.RemoveFromLibrary(ctx, album.ID); err != nil {
		return &SyncError{Step: StepLibraryRemove, Err: err}
	}
	return nil
}

// mostPopularTrack fetches the album's track list, fans out per-track detail
// lookups, and selects the track with the highest popularity.
//
// Ties keep the first track encountered in track order. Any single failed
// fetch fails the whole step.
func (e *Engine) mostPopularTrack(ctx context.Context, albumID string) (*services.TrackDetail, error) {
	tracks, err := e.catalog.GetAlbumTracks(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("album %s has no tracks", albumID)
	}

	details := make([]*services.TrackDetail, len(tracks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, track := range tracks {
		g.Go(func() error {
			detail, err := e.catalog.GetTrack(gctx, track.ID)
			if err != nil {
				return fmt.Errorf("track %s: %w", track.ID, err)
			}
			details[i] = detail
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	top := details[0]
	for _, detail := range details[1:] {
		if detail.Popularity > top.Popularity {
			top = detail
		}
	}

	return top, nil
}

// resolveYearlyPlaylist finds the yearly playlist by exact name, creating it
// when absent.
//
// Lookup-then-create is best effort: two toggles racing through the gap can
// create duplicate playlists with the same name. The catalog exposes no
// get-or-create, so the rare duplicate is accepted.
func (e *Engine) resolveYearlyPlaylist(ctx context.Context, year int) (*services.PlaylistSummary, error) {
	name := fmt.Sprintf("Top Albums %d", year)

	playlists, err := e.catalog.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	for _, playlist := range playlists {
		if playlist.Name == name {
			return &playlist, nil
		}
	}

	description := fmt.Sprintf("Favorite album tracks from %d", year)
	return e.catalog.CreatePlaylist(ctx, name, description, false)
}

// distinctArtistIDs returns the album's artist ids with duplicates removed,
// preserving first-seen order.
func distinctArtistIDs(artists []models.Artist) []string {
	seen := make(map[string]struct{}, len(artists))
	ids := make([]string, 0, len(artists))

	for _, artist := range artists {
		if _, ok := seen[artist.ID]; ok {
			continue
		}
		seen[artist.ID] = struct{}{}
		ids = append(ids, artist.ID)
	}

	return ids
}
