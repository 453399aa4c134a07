package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"trackdeck/internal/models"
	"trackdeck/internal/services"
	"trackdeck/internal/shared"
)

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Manage local playlists and their Spotify sources",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a local playlist backed by a Spotify playlist",
				ArgsUsage: "<name> <spotify-url-uri-or-id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "ref"},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "list",
				Usage: "List local playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
				},
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its imported songs",
				ArgsUsage: "<name-or-id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Action: r.PlaylistShow,
			},
		},
	}
}

// PlaylistAdd registers a local playlist pointing at a Spotify source.
//
// URLs and URIs are normalized up front; other forms are stored as given.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	ref := cmd.StringArg("ref")

	if name == "" || ref == "" {
		return fmt.Errorf("%w: usage: trackdeck playlist add <name> <spotify-url-uri-or-id>", shared.ErrMissingArgument)
	}

	playlistID := services.ExtractPlaylistID(ref)

	st, err := r.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	playlist := models.NewPlaylist(0, name, playlistID)
	if err := st.playlists.Create(playlist); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.logger.Info("playlist added", "name", name, "spotify_ref", playlistID)

	r.writePlain("✓ Playlist '%s' added (source %s)\n", name, playlistID)
	r.writePlain("Run 'trackdeck sync run %s' to import its tracks.\n", name)

	return nil
}

// playlistSummary is the JSON shape for playlist listings.
type playlistSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SpotifyRef string `json:"spotify_ref"`
	SongCount  int    `json:"song_count"`
}

// PlaylistList lists all local playlists with their song counts.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	st, err := r.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	playlists, err := st.playlists.List(map[string]any{})
	if err != nil {
		return err
	}

	summaries := make([]playlistSummary, len(playlists))
	for i, playlist := range playlists {
		count, err := st.memberships.Count(playlist.ID())
		if err != nil {
			return err
		}
		summaries[i] = playlistSummary{
			ID:         playlist.ID(),
			Name:       playlist.Name(),
			SpotifyRef: playlist.SpotifyRef(),
			SongCount:  count,
		}
	}

	if useJSON {
		return r.writeJSON(summaries, pretty)
	}

	if len(summaries) == 0 {
		return r.writePlain("No playlists yet. Run 'trackdeck playlist add' to register one.\n")
	}

	r.writePlain("Found %d playlists:\n\n", len(summaries))
	for i, s := range summaries {
		r.writePlain("%d. %s\n", i+1, s.Name)
		r.writePlain("   Source: %s\n", s.SpotifyRef)
		r.writePlain("   Songs: %d\n\n", s.SongCount)
	}

	return nil
}

// PlaylistShow prints a playlist's songs in link order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: usage: trackdeck playlist show <name-or-id>", shared.ErrMissingArgument)
	}

	st, err := r.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	playlist, err := r.findPlaylist(st, ref)
	if err != nil {
		return err
	}

	songs, err := st.memberships.Songs(playlist.ID())
	if err != nil {
		return err
	}

	r.writePlain("Playlist: %s\n", playlist.Name())
	r.writePlain("Source: %s\n", playlist.SpotifyRef())
	r.writePlain("Songs: %d\n\n", len(songs))

	for i, song := range songs {
		r.writePlain("%d. %s - %s (%d)\n", i+1, song.Artist(), song.Title(), song.ReleaseYear())
	}

	return nil
}
