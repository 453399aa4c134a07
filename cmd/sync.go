package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"trackdeck/internal/shared"
	"trackdeck/internal/tasks"
	"trackdeck/internal/ui"
)

func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Import playlist tracks from Spotify into the catalog",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Import one playlist and print the summary",
				ArgsUsage: "<name-or-id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output summary as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
				},
				Action: r.SyncRun,
			},
			{
				Name:   "ui",
				Usage:  "Pick and import a playlist interactively",
				Action: r.SyncUI,
			},
		},
	}
}

// syncResult is the JSON shape for import summaries.
type syncResult struct {
	Playlist string `json:"playlist"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Linked   int    `json:"linked"`
}

// SyncRun imports one playlist's tracks and reports the summary.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: usage: trackdeck sync run <name-or-id>", shared.ErrMissingArgument)
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

	client, err := r.spotifyClient(st)
	if err != nil {
		return err
	}

	engine := tasks.NewImportEngine(client, st.songs, st.playlists, st.memberships, r.logger)

	summary, err := engine.Run(ctx, playlist.ID(), nil)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(syncResult{
			Playlist: playlist.Name(),
			Created:  summary.Created,
			Updated:  summary.Updated,
			Skipped:  summary.Skipped,
			Linked:   summary.Linked,
		}, cmd.Bool("pretty"))
	}

	r.writePlainln("✓ Import complete: %s", playlist.Name())
	r.writePlain("  Created: %d\n", summary.Created)
	r.writePlain("  Updated: %d\n", summary.Updated)
	r.writePlain("  Skipped: %d\n", summary.Skipped)
	r.writePlain("  Linked:  %d\n", summary.Linked)

	return nil
}

// SyncUI launches the interactive import workflow.
//
// Log output moves to a file so it does not fight the alternate screen.
func (r *Runner) SyncUI(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := r.spotifyClient(st)
	if err != nil {
		return err
	}

	logger, err := shared.NewFileLogger("trackdeck.log")
	if err != nil {
		r.logger.Warn("failed to open log file, logging to stderr", "error", err)
		logger = r.logger
	}

	engine := tasks.NewImportEngine(client, st.songs, st.playlists, st.memberships, logger)
	model := ui.NewModel(ctx, engine, st.playlists, st.memberships)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}

	return nil
}
