// package tasks implements the playlist import pipeline.
//
// The core abstraction is ImportEngine, which streams a Spotify playlist's
// tracks into the local catalog and links them to a local playlist.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"trackdeck/internal/models"
	"trackdeck/internal/repositories"
	"trackdeck/internal/services"
	"trackdeck/internal/shared"
)

// ImportSummary reports what one import run did.
//
// Skipped counts both defective entries and songs already up to date; a
// skipped-but-valid song is still linked, so Linked can exceed
// Created + Updated.
type ImportSummary struct {
	Created int // Songs inserted into the catalog
	Updated int // Songs whose fields changed
	Skipped int // Entries skipped or already up to date
	Linked  int // Membership rows ensured
}

// Total returns the number of playlist entries processed.
func (s *ImportSummary) Total() int {
	return s.Created + s.Updated + s.Skipped
}

// TrackSource streams playlist entries from a remote catalog.
//
// Implemented by [services.SpotifyClient].
type TrackSource interface {
	EachPlaylistTrack(ctx context.Context, playlistRef string, visit func(services.PlaylistTrackItem) error) error
}

// ImportEngine imports a Spotify playlist's tracks into the local song catalog.
//
// Songs are upserted by Spotify track id and linked to the local playlist.
// Defective entries are skipped with a warning; any fetch or storage failure
// aborts the run without a summary.
type ImportEngine struct {
	source      TrackSource
	songs       *repositories.SongRepository
	playlists   *repositories.PlaylistRepository
	memberships *repositories.PlaylistSongRepository
	logger      *log.Logger
}

// NewImportEngine creates an engine with the provided source and repositories.
func NewImportEngine(source TrackSource, songs *repositories.SongRepository, playlists *repositories.PlaylistRepository, memberships *repositories.PlaylistSongRepository, logger *log.Logger) *ImportEngine {
	return &ImportEngine{
		source:      source,
		songs:       songs,
		playlists:   playlists,
		memberships: memberships,
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run imports every track of the given local playlist's Spotify source.
//
// Each playlist entry lands in exactly one summary counter. Valid songs are
// linked to the playlist whether created, updated, or unchanged; entries
// skipped for missing or invalid data are not linked. A fetch or storage
// error aborts the run and no summary is returned.
func (e *ImportEngine) Run(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*ImportSummary, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: track source not initialized", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, loadPlaylistUpdate())

	playlist, err := e.playlists.Get(playlistID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("starting playlist import", "playlist", playlist.Name(), "source", playlist.SpotifyRef())
	e.sendProgress(progress, fetchTracksUpdate(playlist))

	summary := &ImportSummary{}
	position := 0

	err = e.source.EachPlaylistTrack(ctx, playlist.SpotifyRef(), func(item services.PlaylistTrackItem) error {
		position++
		if err := e.importTrack(playlist, item, position, summary); err != nil {
			return err
		}
		e.sendProgress(progress, importTrackUpdate(position, item, summary))
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("playlist import finished",
		"playlist", playlist.Name(),
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"linked", summary.Linked,
	)
	e.sendProgress(progress, summaryUpdate(playlist, summary))

	return summary, nil
}

// importTrack upserts one playlist entry and links it to the playlist.
func (e *ImportEngine) importTrack(playlist *models.Playlist, item services.PlaylistTrackItem, position int, summary *ImportSummary) error {
	track := item.Track
	if track == nil {
		e.skip(summary, position, "missing track payload", "id", "")
		return nil
	}

	title := track.Name
	artist := track.PrimaryArtist()

	if track.ID == "" || title == "" || artist == "" {
		e.skip(summary, position, "incomplete track data", "id", track.ID)
		return nil
	}

	releaseYear := track.ReleaseYear()
	if releaseYear <= 0 {
		e.skip(summary, position, "unparseable release date", "id", track.ID, "release_date", track.Album.ReleaseDate)
		return nil
	}

	song, err := e.songs.GetBySpotifyID(track.ID)
	switch {
	case errors.Is(err, shared.ErrSongNotFound):
		song = models.NewSong(0, track.ID, title, artist, releaseYear)
		if err := e.songs.Create(song); err != nil {
			if isStorageFailure(err) {
				return err
			}
			e.skip(summary, position, "rejected by validation", "id", track.ID, "error", err)
			return nil
		}
		summary.Created++
	case err != nil:
		return err
	case song.Matches(title, artist, releaseYear):
		summary.Skipped++
	default:
		song.SetTitle(title)
		song.SetArtist(artist)
		song.SetReleaseYear(releaseYear)
		if err := e.songs.Update(song); err != nil {
			if isStorageFailure(err) {
				return err
			}
			e.skip(summary, position, "rejected by validation", "id", track.ID, "error", err)
			return nil
		}
		summary.Updated++
	}

	if err := e.memberships.Link(playlist.ID(), song.ID()); err != nil {
		return err
	}
	summary.Linked++

	return nil
}

// skip counts a defective entry and logs why it was passed over.
func (e *ImportEngine) skip(summary *ImportSummary, position int, reason string, keyvals ...any) {
	summary.Skipped++
	e.logger.Warn("skipping playlist entry", append([]any{"position", position, "reason", reason}, keyvals...)...)
}

// isStorageFailure distinguishes database errors from validation rejections.
//
// Validation failures skip the entry; anything else aborts the run.
func isStorageFailure(err error) bool {
	return !errors.Is(err, shared.ErrInvalidInput)
}
