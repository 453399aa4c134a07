package tasks

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"trackdeck/internal/models"
	"trackdeck/internal/repositories"
	"trackdeck/internal/services"
	"trackdeck/internal/shared"
)

// fakeSource replays a fixed set of playlist entries, optionally failing after.
type fakeSource struct {
	items []services.PlaylistTrackItem
	err   error
}

func (f *fakeSource) EachPlaylistTrack(ctx context.Context, playlistRef string, visit func(services.PlaylistTrackItem) error) error {
	for _, item := range f.items {
		if err := visit(item); err != nil {
			return err
		}
	}
	return f.err
}

type testEnv struct {
	db          *sql.DB
	songs       *repositories.SongRepository
	playlists   *repositories.PlaylistRepository
	memberships *repositories.PlaylistSongRepository
	playlist    *models.Playlist
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	env := &testEnv{
		db:          db,
		songs:       repositories.NewSongRepository(db),
		playlists:   repositories.NewPlaylistRepository(db),
		memberships: repositories.NewPlaylistSongRepository(db),
	}

	env.playlist = models.NewPlaylist(0, "Road Trip", "PL1")
	if err := env.playlists.Create(env.playlist); err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}

	return env
}

func (env *testEnv) engine(source TrackSource) *ImportEngine {
	return NewImportEngine(source, env.songs, env.playlists, env.memberships, log.New(io.Discard))
}

func entry(id, name, artist, releaseDate string) services.PlaylistTrackItem {
	return services.PlaylistTrackItem{
		Track: &services.TrackPayload{
			ID:      id,
			Name:    name,
			Artists: []services.ArtistRef{{Name: artist}},
			Album:   services.AlbumRef{ReleaseDate: releaseDate},
		},
	}
}

func TestImportEngineRun(t *testing.T) {
	t.Run("Creates New Songs", func(t *testing.T) {
		env := setupEnv(t)
		source := &fakeSource{items: []services.PlaylistTrackItem{
			entry("t1", "First", "Artist A", "1999-01-01"),
			entry("t2", "Second", "Artist B", "2005"),
		}}

		summary, err := env.engine(source).Run(context.Background(), env.playlist.ID(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Created != 2 || summary.Updated != 0 || summary.Skipped != 0 || summary.Linked != 2 {
			t.Errorf("unexpected summary: %+v", summary)
		}

		song, err := env.songs.GetBySpotifyID("t1")
		if err != nil {
			t.Fatalf("expected song to exist: %v", err)
		}
		if song.ReleaseYear() != 1999 {
			t.Errorf("expected release year 1999, got %d", song.ReleaseYear())
		}

		count, err := env.memberships.Count(env.playlist.ID())
		if err != nil {
			t.Fatalf("failed to count memberships: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 memberships, got %d", count)
		}
	})

	t.Run("Rerun Is Idempotent", func(t *testing.T) {
		env := setupEnv(t)
		source := &fakeSource{items: []services.PlaylistTrackItem{
			entry("t1", "First", "Artist A", "1999-01-01"),
			entry("t2", "Second", "Artist B", "2005"),
		}}
		engine := env.engine(source)

		if _, err := engine.Run(context.Background(), env.playlist.ID(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		summary, err := engine.Run(context.Background(), env.playlist.ID(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Created != 0 || summary.Updated != 0 {
			t.Errorf("rerun should not create or update: %+v", summary)
		}
		if summary.Skipped != 2 {
			t.Errorf("expected 2 skipped on rerun, got %d", summary.Skipped)
		}
		if summary.Linked != 2 {
			t.Errorf("unchanged songs should still be linked, got %d", summary.Linked)
		}

		count, err := env.memberships.Count(env.playlist.ID())
		if err != nil {
			t.Fatalf("failed to count memberships: %v", err)
		}
		if count != 2 {
			t.Errorf("expected no duplicate memberships, got %d", count)
		}
	})

	t.Run("Updates Changed Songs", func(t *testing.T) {
		env := setupEnv(t)
		engine := env.engine(&fakeSource{items: []services.PlaylistTrackItem{
			entry("t1", "Original Title", "Artist A", "1999-01-01"),
		}})

		if _, err := engine.Run(context.Background(), env.playlist.ID(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		engine = env.engine(&fakeSource{items: []services.PlaylistTrackItem{
			entry("t1", "Remastered Title", "Artist A", "2010-05-01"),
		}})

		summary, err := engine.Run(context.Background(), env.playlist.ID(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Updated != 1 || summary.Created != 0 || summary.Linked != 1 {
			t.Errorf("unexpected summary: %+v", summary)
		}

		song, err := env.songs.GetBySpotifyID("t1")
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if song.Title() != "Remastered Title" || song.ReleaseYear() != 2010 {
			t.Errorf("expected updated fields, got %s (%d)", song.Title(), song.ReleaseYear())
		}
	})

	t.Run("Skips Defective Entries Without Linking", func(t *testing.T) {
		env := setupEnv(t)
		source := &fakeSource{items: []services.PlaylistTrackItem{
			{Track: nil},
			entry("", "No ID", "Artist A", "1999"),
			entry("t3", "", "Artist A", "1999"),
			entry("t4", "No Artist", "", "1999"),
			entry("t5", "No Date", "Artist A", ""),
			entry("t6", "Bad Date", "Artist A", "unknown"),
			entry("t7", "Good Track", "Artist A", "1999-01-01"),
		}}

		summary, err := env.engine(source).Run(context.Background(), env.playlist.ID(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Skipped != 6 {
			t.Errorf("expected 6 skipped, got %d", summary.Skipped)
		}
		if summary.Created != 1 || summary.Linked != 1 {
			t.Errorf("expected only the valid track imported and linked: %+v", summary)
		}

		count, err := env.memberships.Count(env.playlist.ID())
		if err != nil {
			t.Fatalf("failed to count memberships: %v", err)
		}
		if count != 1 {
			t.Errorf("skipped entries must not be linked, got %d memberships", count)
		}
	})

	t.Run("Validation Failure Skips And Continues", func(t *testing.T) {
		env := setupEnv(t)
		source := &fakeSource{items: []services.PlaylistTrackItem{
			entry("t1", "Too Old", "Artist A", "1850-01-01"),
			entry("t2", "Fine", "Artist B", "1999-01-01"),
		}}

		summary, err := env.engine(source).Run(context.Background(), env.playlist.ID(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Skipped != 1 || summary.Created != 1 || summary.Linked != 1 {
			t.Errorf("unexpected summary: %+v", summary)
		}

		if _, err := env.songs.GetBySpotifyID("t1"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("rejected song should not be stored, got %v", err)
		}
	})

	t.Run("Fetch Failure Aborts Without Summary", func(t *testing.T) {
		env := setupEnv(t)
		fetchErr := &services.APIError{StatusCode: 502, Body: "bad gateway"}
		source := &fakeSource{
			items: []services.PlaylistTrackItem{entry("t1", "First", "Artist A", "1999")},
			err:   fetchErr,
		}

		summary, err := env.engine(source).Run(context.Background(), env.playlist.ID(), nil)
		if summary != nil {
			t.Error("expected no summary on fetch failure")
		}

		var apiErr *services.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
	})

	t.Run("Unknown Playlist", func(t *testing.T) {
		env := setupEnv(t)

		_, err := env.engine(&fakeSource{}).Run(context.Background(), "missing-id", nil)
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Reports Progress", func(t *testing.T) {
		env := setupEnv(t)
		source := &fakeSource{items: []services.PlaylistTrackItem{
			entry("t1", "First", "Artist A", "1999-01-01"),
		}}

		progress := make(chan ProgressUpdate, 16)
		if _, err := env.engine(source).Run(context.Background(), env.playlist.ID(), progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		phases := map[Phase]bool{}
		for update := range progress {
			phases[update.Phase] = true
		}

		for _, phase := range []Phase{LoadPlaylist, FetchTracks, ImportTrack, Summarize} {
			if !phases[phase] {
				t.Errorf("expected a %s update", phase)
			}
		}
	})
}
