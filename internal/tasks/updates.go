package tasks

import (
	"fmt"

	"github.com/desertthunder/crate/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchReviews Phase = iota
	SearchAlbums
	MatchComplete
	LibraryAdd
	LibraryRemove
	FollowArtists
	RankTracks
	ResolvePlaylist
	PlaylistInsert
)

func (p Phase) String() string {
	switch p {
	case FetchReviews:
		return "fetch_reviews"
	case SearchAlbums:
		return "search_albums"
	case MatchComplete:
		return "match_complete"
	case LibraryAdd:
		return "library_add"
	case LibraryRemove:
		return "library_remove"
	case FollowArtists:
		return "follow_artists"
	case RankTracks:
		return "rank_tracks"
	case ResolvePlaylist:
		return "resolve_playlist"
	case PlaylistInsert:
		return "playlist_insert"
	default:
		return ""
	}
}

func fetchReviewsUpdate(step, total int, source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReviews,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching reviews from %s...", source),
	}
}

func searchAlbumUpdate(step, total int, review models.Review) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, review.Artist, review.Album),
		Data:    review,
	}
}

func matchCompleteUpdate(matched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchComplete,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Matched %d of %d reviews", matched, total),
	}
}

func libraryAddUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LibraryAdd,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Saving '%s' to library...", title),
	}
}

func libraryRemoveUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LibraryRemove,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Removing '%s' from library...", title),
	}
}

func followArtistsUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FollowArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Following %d artist(s)...", count),
	}
}

func rankTracksUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RankTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Ranking tracks on '%s'...", title),
	}
}

func resolvePlaylistUpdate(step, total, year int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving playlist 'Top Albums %d'...", year),
	}
}

func playlistInsertUpdate(step, total int, track, playlist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlaylistInsert,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Adding '%s' to '%s'...", track, playlist),
	}
}
