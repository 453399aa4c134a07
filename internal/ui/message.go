package ui

import (
	"fmt"

	"trackdeck/internal/models"
	"trackdeck/internal/tasks"
)

// playlistEntry pairs a playlist with its current linked song count.
type playlistEntry struct {
	playlist  *models.Playlist
	songCount int
}

// playlistItem wraps a playlist entry to implement list.Item.
type playlistItem struct {
	entry playlistEntry
}

func (i playlistItem) FilterValue() string { return i.entry.playlist.Name() }
func (i playlistItem) Title() string       { return i.entry.playlist.Name() }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d songs • %s", i.entry.songCount, i.entry.playlist.SpotifyRef())
}

type playlistsLoadedMsg struct {
	entries []playlistEntry
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type importCompleteMsg struct {
	summary *tasks.ImportSummary
	err     error
}
