package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"trackdeck/internal/models"
	"trackdeck/internal/repositories"
	"trackdeck/internal/services"
	"trackdeck/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistCommand, syncCommand, exportCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// store bundles the open database handle with the repositories bound to it.
type store struct {
	db          *sql.DB
	accounts    *repositories.AccountRepository
	songs       *repositories.SongRepository
	playlists   *repositories.PlaylistRepository
	memberships *repositories.PlaylistSongRepository
}

func (s *store) Close() error {
	return s.db.Close()
}

// openStore opens the configured database and wires the repositories.
func (r *Runner) openStore() (*store, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return &store{
		db:          db,
		accounts:    repositories.NewAccountRepository(db),
		songs:       repositories.NewSongRepository(db),
		playlists:   repositories.NewPlaylistRepository(db),
		memberships: repositories.NewPlaylistSongRepository(db),
	}, nil
}

// linkedAccount returns the linked Spotify account.
//
// One account is supported; linking a different one replaces it.
func (r *Runner) linkedAccount(st *store) (*models.Account, error) {
	accounts, err := st.accounts.List(map[string]any{})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no linked account, run 'trackdeck auth link' first", shared.ErrNotAuthenticated)
	}
	return accounts[0], nil
}

// spotifyClient builds an authenticated API client for the linked account.
func (r *Runner) spotifyClient(st *store) (*services.SpotifyClient, error) {
	account, err := r.linkedAccount(st)
	if err != nil {
		return nil, err
	}

	oauth, err := services.NewSpotifyOAuth(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}

	provider := services.NewTokenProvider(account, st.accounts, oauth)
	return services.NewSpotifyClient(provider, r.config), nil
}

// findPlaylist resolves a playlist argument as a name first, then an id.
func (r *Runner) findPlaylist(st *store, ref string) (*models.Playlist, error) {
	playlist, err := st.playlists.GetByName(ref)
	if err == nil {
		return playlist, nil
	}
	return st.playlists.Get(ref)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
