package models

import (
	"fmt"
)

// Playlist represents a named local collection sourced from one Spotify
// playlist reference (full URL, URI, or bare id).
type Playlist struct {
	base
	name       string
	spotifyRef string
}

// NewPlaylist creates a Playlist with the given name and Spotify reference.
func NewPlaylist(sequence int, name, spotifyRef string) *Playlist {
	return &Playlist{
		base:       newBase(sequence),
		name:       name,
		spotifyRef: spotifyRef,
	}
}

func (p *Playlist) Name() string           { return p.name }
func (p *Playlist) SpotifyRef() string     { return p.spotifyRef }
func (p *Playlist) SetName(name string)    { p.name = name }
func (p *Playlist) SetSpotifyRef(r string) { p.spotifyRef = r }

// Validate checks that the playlist has a name and a source reference.
func (p *Playlist) Validate() error {
	if p.name == "" {
		return fmt.Errorf("name is required")
	}
	if p.spotifyRef == "" {
		return fmt.Errorf("spotify_ref is required")
	}
	return nil
}
