// package services provides the Spotify Web API client, OAuth flows, and the
// token provider that keeps a stored credential usable.
package services

import (
	"fmt"
)

// APIError represents a non-2xx response from the Spotify API.
//
// The body is retained verbatim for diagnostics; callers match on StatusCode.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Body)
}

// PlaylistTrackItem represents one entry of a playlist's track listing.
//
// Track is nil for entries whose track payload is absent (removed or
// unavailable tracks); consumers decide how to handle those.
type PlaylistTrackItem struct {
	AddedAt string        `json:"added_at"`
	Track   *TrackPayload `json:"track"`
}

// TrackPayload represents the track object inside a playlist entry.
type TrackPayload struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
	Album   AlbumRef    `json:"album"`
	URI     string      `json:"uri"`
}

// ArtistRef is the compact artist object embedded in a track payload.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the compact album object embedded in a track payload.
//
// ReleaseDate arrives with year, year-month, or full date precision.
type AlbumRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// PrimaryArtist returns the first listed artist name, or the empty string.
func (t *TrackPayload) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// ReleaseYear derives the release year from the album release date prefix.
//
// Returns 0 when the date is missing or does not start with a numeric year.
func (t *TrackPayload) ReleaseYear() int {
	date := t.Album.ReleaseDate
	if len(date) < 4 {
		return 0
	}

	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}

	return year
}

// UserProfile represents the authenticated user's Spotify profile.
type UserProfile struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Images      []ProfileImage `json:"images"`
}

// ProfileImage represents an image resource on a profile.
type ProfileImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// AvatarURL returns the first profile image URL, or the empty string.
func (u *UserProfile) AvatarURL() string {
	if len(u.Images) == 0 {
		return ""
	}
	return u.Images[0].URL
}
