package models

import (
	"fmt"
	"time"
)

// Account represents a linked Spotify account and its current credential.
//
// Exactly one live credential exists per account; it is overwritten on refresh
// and never deleted.
type Account struct {
	base
	spotifyUID     string
	displayName    string
	email          string
	avatarURL      string
	accessToken    string
	refreshToken   string
	tokenExpiresAt *time.Time
}

// NewAccount creates an Account for the given Spotify user.
func NewAccount(sequence int, spotifyUID, displayName, email string) *Account {
	return &Account{
		base:        newBase(sequence),
		spotifyUID:  spotifyUID,
		displayName: displayName,
		email:       email,
	}
}

func (a *Account) SpotifyUID() string         { return a.spotifyUID }
func (a *Account) DisplayName() string        { return a.displayName }
func (a *Account) Email() string              { return a.email }
func (a *Account) AvatarURL() string          { return a.avatarURL }
func (a *Account) AccessToken() string        { return a.accessToken }
func (a *Account) RefreshToken() string       { return a.refreshToken }
func (a *Account) TokenExpiresAt() *time.Time { return a.tokenExpiresAt }
func (a *Account) SetDisplayName(name string) { a.displayName = name }
func (a *Account) SetEmail(email string)      { a.email = email }
func (a *Account) SetAvatarURL(url string)    { a.avatarURL = url }

// SetTokens overwrites the stored credential.
//
// An empty refreshToken retains the previous one: the token endpoint is not
// guaranteed to rotate refresh tokens.
func (a *Account) SetTokens(accessToken, refreshToken string, expiresAt time.Time) {
	a.accessToken = accessToken
	if refreshToken != "" {
		a.refreshToken = refreshToken
	}
	a.tokenExpiresAt = &expiresAt
}

// Authenticated reports whether a credential is bound to this account.
func (a *Account) Authenticated() bool {
	return a.accessToken != ""
}

// TokenExpiredAt reports whether the credential is expired at the given instant.
func (a *Account) TokenExpiredAt(now time.Time) bool {
	return a.tokenExpiresAt != nil && !now.Before(*a.tokenExpiresAt)
}

// TokenExpired reports whether the credential is expired now.
func (a *Account) TokenExpired() bool {
	return a.TokenExpiredAt(time.Now())
}

// Validate checks that the account has a Spotify user id.
func (a *Account) Validate() error {
	if a.spotifyUID == "" {
		return fmt.Errorf("spotify_uid is required")
	}
	return nil
}
