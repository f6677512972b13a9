package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/crate/internal/models"
)

var _ list.Item = albumItem{}

// albumItem wraps [models.Album] to implement [list.Item].
type albumItem struct {
	album models.Album
}

func (i albumItem) FilterValue() string { return i.album.Title }

func (i albumItem) Title() string {
	title := fmt.Sprintf("%s - %s", strings.Join(i.album.ArtistNames(), ", "), i.album.Title)
	if i.album.Favorited {
		title += " ★"
	}
	if i.album.Listened {
		title += " ✓"
	}
	return title
}

func (i albumItem) Description() string {
	desc := i.album.ReleaseDate
	if i.album.Review != nil {
		desc = fmt.Sprintf("%s • %.1f", desc, i.album.Review.Score)
	}
	if i.album.Type != "" && i.album.Type != models.TypeAlbum {
		desc = fmt.Sprintf("%s • %s", desc, i.album.Type)
	}
	return desc
}
