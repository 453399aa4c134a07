package tasks

import (
	"fmt"

	"trackdeck/internal/models"
	"trackdeck/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadPlaylist Phase = iota
	FetchTracks
	ImportTrack
	Summarize
)

func (p Phase) String() string {
	switch p {
	case LoadPlaylist:
		return "load_playlist"
	case FetchTracks:
		return "fetch_tracks"
	case ImportTrack:
		return "import_track"
	case Summarize:
		return "summarize"
	default:
		return ""
	}
}

func loadPlaylistUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadPlaylist,
		Message: "Loading playlist...",
	}
}

func fetchTracksUpdate(playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Message: fmt.Sprintf("Fetching tracks for %s from Spotify...", playlist.Name()),
		Data:    playlist,
	}
}

func importTrackUpdate(position int, item services.PlaylistTrackItem, summary *ImportSummary) ProgressUpdate {
	message := fmt.Sprintf("[%d] skipped entry", position)
	if item.Track != nil && item.Track.Name != "" {
		message = fmt.Sprintf("[%d] %s - %s", position, item.Track.PrimaryArtist(), item.Track.Name)
	}
	return ProgressUpdate{
		Phase:   ImportTrack,
		Step:    position,
		Message: message,
		Data:    *summary,
	}
}

func summaryUpdate(playlist *models.Playlist, summary *ImportSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase: Summarize,
		Step:  summary.Total(),
		Message: fmt.Sprintf("Imported %s: %d created, %d updated, %d skipped, %d linked",
			playlist.Name(), summary.Created, summary.Updated, summary.Skipped, summary.Linked),
		Data: *summary,
	}
}
