package models

import (
	"fmt"
	"time"
)

// Song represents a catalog track keyed by its Spotify track id.
//
// Songs are created on first import and updated in place on later imports when
// any field differs. The sync job never deletes songs.
type Song struct {
	base
	spotifyID   string
	title       string
	artist      string
	releaseYear int
	shareToken  string
}

// NewSong creates a Song with the given attributes.
func NewSong(sequence int, spotifyID, title, artist string, releaseYear int) *Song {
	return &Song{
		base:        newBase(sequence),
		spotifyID:   spotifyID,
		title:       title,
		artist:      artist,
		releaseYear: releaseYear,
	}
}

func (s *Song) SpotifyID() string          { return s.spotifyID }
func (s *Song) Title() string              { return s.title }
func (s *Song) Artist() string             { return s.artist }
func (s *Song) ReleaseYear() int           { return s.releaseYear }
func (s *Song) ShareToken() string         { return s.shareToken }
func (s *Song) SetTitle(title string)      { s.title = title }
func (s *Song) SetArtist(artist string)    { s.artist = artist }
func (s *Song) SetReleaseYear(year int)    { s.releaseYear = year }
func (s *Song) SetShareToken(token string) { s.shareToken = token }

// Matches reports whether the stored fields equal the given attributes.
// Used by the import job to detect unchanged songs.
func (s *Song) Matches(title, artist string, releaseYear int) bool {
	return s.title == title && s.artist == artist && s.releaseYear == releaseYear
}

// Validate checks required fields and the release year range.
func (s *Song) Validate() error {
	if s.spotifyID == "" {
		return fmt.Errorf("spotify_id is required")
	}
	if s.title == "" {
		return fmt.Errorf("title is required")
	}
	if s.artist == "" {
		return fmt.Errorf("artist is required")
	}
	if s.shareToken == "" {
		return fmt.Errorf("share_token is required")
	}

	currentYear := time.Now().Year()
	if s.releaseYear < 1900 || s.releaseYear > currentYear {
		return fmt.Errorf("release_year must be between 1900 and %d, got %d", currentYear, s.releaseYear)
	}

	return nil
}
