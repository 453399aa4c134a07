package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"trackdeck/internal/formatter"
	"trackdeck/internal/shared"
)

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a playlist's songs to CSV, Markdown, or plain text",
		ArgsUsage: "<name-or-id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, or text",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (base filename for csv, directory for markdown)",
			},
		},
		Action: r.Export,
	}
}

// Export writes a playlist's songs to disk in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: usage: trackdeck export <name-or-id>", shared.ErrMissingArgument)
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

	deck := &formatter.Deck{Playlist: playlist, Songs: songs}
	output := cmd.String("output")

	switch format := cmd.String("format"); format {
	case "csv":
		result, err := formatter.WriteCSVExport(deck, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d songs\n", len(songs))
		r.writePlain("  Songs: %s\n", result.SongsFile)
		r.writePlain("  Metadata: %s\n", result.MetadataFile)

	case "markdown", "md":
		mdFile, err := formatter.WriteMarkdownExport(deck, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d songs to %s\n", len(songs), mdFile)

	case "text", "txt":
		textFile, err := formatter.WriteTextExport(deck, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d songs to %s\n", len(songs), textFile)

	default:
		return fmt.Errorf("%w: unknown format %q (expected csv, markdown, or text)", shared.ErrInvalidArgument, format)
	}

	return nil
}
