// Package ui implements the interactive import workflow: pick a local
// playlist, confirm, watch the import stream in, review the summary.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"trackdeck/internal/models"
	"trackdeck/internal/repositories"
	"trackdeck/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ConfirmView
	ImportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.ImportEngine
	playlists    *repositories.PlaylistRepository
	memberships  *repositories.PlaylistSongRepository
	width        int
	height       int
	playlistList list.Model
	selected     *models.Playlist
	progressChan chan tasks.ProgressUpdate
	done         chan importCompleteMsg
	progress     tasks.ProgressUpdate
	summary      *tasks.ImportSummary
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.ImportEngine, playlists *repositories.PlaylistRepository, memberships *repositories.PlaylistSongRepository) *Model {
	return &Model{
		ctx:         ctx,
		view:        PlaylistListView,
		engine:      engine,
		playlists:   playlists,
		memberships: memberships,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by loading local playlists.
func (m *Model) Init() tea.Cmd {
	return m.loadPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = playlistItem{entry: entry}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Local Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case importCompleteMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case ConfirmView:
		return m.renderConfirm()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected := m.playlistList.SelectedItem(); selected != nil {
			if item, ok := selected.(playlistItem); ok {
				m.selected = item.entry.playlist
				m.view = ConfirmView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PlaylistListView
		return m, nil
	case "y":
		m.view = ImportView
		return m, m.startImport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selected = nil
		m.summary = nil
		m.err = nil
		return m, m.loadPlaylists()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == PlaylistListView {
		m.playlistList, cmd = m.playlistList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.playlists.List(map[string]any{})
		if err != nil {
			return playlistsLoadedMsg{err: err}
		}

		entries := make([]playlistEntry, len(playlists))
		for i, playlist := range playlists {
			count, err := m.memberships.Count(playlist.ID())
			if err != nil {
				return playlistsLoadedMsg{err: err}
			}
			entries[i] = playlistEntry{playlist: playlist, songCount: count}
		}

		return playlistsLoadedMsg{entries: entries}
	}
}

func (m *Model) startImport() tea.Cmd {
	progressChan := make(chan tasks.ProgressUpdate, 50)
	m.progressChan = progressChan
	done := make(chan importCompleteMsg, 1)

	go func() {
		summary, err := m.engine.Run(m.ctx, m.selected.ID(), progressChan)
		done <- importCompleteMsg{summary: summary, err: err}
		close(progressChan)
	}()

	m.done = done
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan := m.progressChan
	done := m.done
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		update, ok := <-progressChan
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Import '%s' from Spotify?", m.selected.Name()))
	info := fmt.Sprintf("\nPlaylist: %s\nSource: %s\n", m.selected.Name(), m.selected.SpotifyRef())

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderImport() string {
	title := styles.title.Render("Importing Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.LoadPlaylist:
		phase = "Loading playlist..."
	case tasks.FetchTracks:
		phase = "Fetching tracks from Spotify..."
	case tasks.ImportTrack:
		phase = fmt.Sprintf("Importing tracks (%d processed)", m.progress.Step)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Import failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.summary == nil {
		return styles.err.Render("No summary available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Import Complete!")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nCreated: %d\nUpdated: %d\nSkipped: %d\nLinked: %d",
		m.selected.Name(),
		m.summary.Created,
		m.summary.Updated,
		m.summary.Skipped,
		m.summary.Linked,
	)

	var skipped string
	if m.summary.Skipped > 0 {
		skipped = fmt.Sprintf("\n\n%s", styles.warn.Render("Some entries were skipped; see the log for details."))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, skipped, helpView)
}
