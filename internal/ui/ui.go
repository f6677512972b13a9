package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	BusyView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	store  *library.Store
	source services.ReviewSource

	width  int
	height int

	albumList list.Model
	listReady bool

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	busyTitle    string
	asyncErr     error

	status string
	err    error
	help   help.Model
	keys   keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type busyDoneMsg struct {
	err error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The store should be seeded (from the cache or a prior sync) before the
// program starts; an empty store renders a hint to refresh.
func NewModel(ctx context.Context, store *library.Store, source services.ReviewSource) *Model {
	return &Model{
		ctx:    ctx,
		view:   BrowseView,
		store:  store,
		source: source,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init builds the initial list from the store contents.
func (m *Model) Init() tea.Cmd {
	m.rebuildList()
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.albumList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case BusyView:
			// Sync in progress; only allow bailing out entirely.
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case busyDoneMsg:
		m.view = BrowseView
		m.progressChan = nil
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("✗ %v", msg.err))
		} else {
			m.status = styles.ok.Render("✓ done")
		}
		m.rebuildList()
		return m, nil
	}

	if m.listReady {
		var cmd tea.Cmd
		m.albumList, cmd = m.albumList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case BrowseView:
		return m.renderBrowse()
	case BusyView:
		return m.renderBusy()
	default:
		return ""
	}
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.refresh):
		m.busyTitle = "Refreshing Collection"
		m.view = BusyView
		return m, m.startRefresh()

	case key.Matches(msg, m.keys.favorite):
		album, ok := m.selectedAlbum()
		if !ok {
			return m, nil
		}
		m.busyTitle = fmt.Sprintf("Syncing '%s'", album.Title)
		m.view = BusyView
		return m, m.startToggle(album.ID)

	case key.Matches(msg, m.keys.listened):
		album, ok := m.selectedAlbum()
		if !ok {
			return m, nil
		}
		if _, err := m.store.ToggleListened(album.ID); err != nil {
			m.status = styles.err.Render(fmt.Sprintf("✗ %v", err))
			return m, nil
		}
		m.rebuildList()
		return m, nil

	case key.Matches(msg, m.keys.filter):
		filter := m.store.Filter()
		filter.FavoritedOnly = !filter.FavoritedOnly
		m.store.SetFilter(filter)
		m.rebuildList()
		return m, nil
	}

	if m.listReady {
		var cmd tea.Cmd
		m.albumList, cmd = m.albumList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) selectedAlbum() (models.Album, bool) {
	if !m.listReady {
		return models.Album{}, false
	}
	selected := m.albumList.SelectedItem()
	if selected == nil {
		return models.Album{}, false
	}
	item, ok := selected.(albumItem)
	return item.album, ok
}

func (m *Model) rebuildList() {
	albums := m.store.View()
	items := make([]list.Item, len(albums))
	for i, album := range albums {
		items[i] = albumItem{album: album}
	}

	index := 0
	if m.listReady {
		index = m.albumList.Index()
	}

	m.albumList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.albumList.Title = m.listTitle(len(albums))
	m.albumList.SetShowHelp(false)
	if m.width > 0 {
		m.albumList.SetSize(m.width-4, m.height-8)
	}
	if index < len(items) {
		m.albumList.Select(index)
	}
	m.listReady = true
}

func (m *Model) listTitle(count int) string {
	title := fmt.Sprintf("Crate (%d albums)", count)
	if m.store.Filter().FavoritedOnly {
		title += " • favorites"
	}
	return title
}

func (m *Model) startRefresh() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		reviews, err := m.source.FetchReviews(m.ctx)
		if err == nil {
			_, err = m.store.Refresh(m.ctx, progress, reviews)
		}
		m.asyncErr = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) startToggle(id string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		m.asyncErr = m.store.ToggleFavorite(m.ctx, progress, id)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return busyDoneMsg{err: m.asyncErr}
		}

		update, ok := <-m.progressChan
		if !ok {
			return busyDoneMsg{err: m.asyncErr}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderBrowse() string {
	if !m.listReady || m.store.Len() == 0 {
		hint := styles.help.Render("No albums yet. Press r to fetch and match the latest reviews.")
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s\n\n%s", styles.title.Render("Crate"), hint, helpView)
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	status := m.status
	if status != "" {
		status = "\n" + status
	}

	return fmt.Sprintf("%s%s\n\n%s", m.albumList.View(), status, helpView)
}

func (m *Model) renderBusy() string {
	title := styles.title.Render(m.busyTitle)

	var phase string
	switch m.progress.Phase {
	case tasks.FetchReviews:
		phase = "Fetching reviews..."
	case tasks.SearchAlbums:
		phase = fmt.Sprintf("Matching albums (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.LibraryAdd:
		phase = "Saving album to library..."
	case tasks.LibraryRemove:
		phase = "Removing album from library..."
	case tasks.FollowArtists:
		phase = "Following artists..."
	case tasks.RankTracks:
		phase = "Ranking tracks by popularity..."
	case tasks.ResolvePlaylist:
		phase = "Resolving yearly playlist..."
	case tasks.PlaylistInsert:
		phase = "Adding track to playlist..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}
