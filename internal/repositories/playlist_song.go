package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"trackdeck/internal/models"
	"trackdeck/internal/shared"
)

// PlaylistSongRepository manages the playlist to song membership table.
//
// Membership rows are append-only. Link is idempotent so re-running an import
// against the same playlist never produces duplicates.
type PlaylistSongRepository struct {
	db *sql.DB
}

// NewPlaylistSongRepository creates a new [PlaylistSongRepository] with the given database connection
func NewPlaylistSongRepository(db *sql.DB) *PlaylistSongRepository {
	return &PlaylistSongRepository{db: db}
}

// Link ensures a membership row exists for the given playlist and song.
//
// Returns nil whether the row was inserted or already present.
func (r *PlaylistSongRepository) Link(playlistID, songID string) error {
	query := `
		INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, created_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.Exec(query, playlistID, songID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to link song to playlist: %w", err)
	}

	return nil
}

// Unlink removes a membership row for the given playlist and song
func (r *PlaylistSongRepository) Unlink(playlistID, songID string) error {
	query := `
		DELETE FROM playlist_songs
		WHERE playlist_id = ? AND song_id = ?
	`

	result, err := r.db.Exec(query, playlistID, songID)
	if err != nil {
		return fmt.Errorf("failed to unlink song from playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s not in playlist %s", shared.ErrSongNotFound, songID, playlistID)
	}

	return nil
}

// Linked reports whether a membership row exists for the given playlist and song
func (r *PlaylistSongRepository) Linked(playlistID, songID string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM playlist_songs
		WHERE playlist_id = ? AND song_id = ?
	`

	var count int
	if err := r.db.QueryRow(query, playlistID, songID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query playlist membership: %w", err)
	}

	return count > 0, nil
}

// Count returns the number of songs linked to the given playlist
func (r *PlaylistSongRepository) Count(playlistID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM playlist_songs
		WHERE playlist_id = ?
	`

	var count int
	if err := r.db.QueryRow(query, playlistID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count playlist songs: %w", err)
	}

	return count, nil
}

// Songs retrieves all songs linked to the given playlist in link order
func (r *PlaylistSongRepository) Songs(playlistID string) ([]*models.Song, error) {
	query := `
		SELECT s.id, s.sequence, s.spotify_id, s.title, s.artist, s.release_year, s.share_token, s.created_at, s.updated_at, s.deleted_at
		FROM songs s
		JOIN playlist_songs ps ON ps.song_id = s.id
		WHERE ps.playlist_id = ? AND s.deleted_at IS NULL
		ORDER BY ps.created_at ASC, s.sequence ASC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		var (
			id          string
			sequence    int
			spotifyID   string
			title       string
			artist      string
			releaseYear int
			shareToken  string
			createdAt   time.Time
			updatedAt   time.Time
			deletedAt   sql.NullTime
		)

		err := rows.Scan(&id, &sequence, &spotifyID, &title, &artist, &releaseYear, &shareToken, &createdAt, &updatedAt, &deletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}

		song := models.NewSong(sequence, spotifyID, title, artist, releaseYear)
		song.SetID(id)
		song.SetShareToken(shareToken)
		song.SetCreatedAt(createdAt)
		song.SetUpdatedAt(updatedAt)
		if deletedAt.Valid {
			song.SetDeletedAt(&deletedAt.Time)
		}

		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}
