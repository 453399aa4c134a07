package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trackdeck/internal/models"
	"trackdeck/internal/repositories"
	"trackdeck/internal/shared"
)

// TokenProvider hands out a valid access token for one account, refreshing
// transparently when the stored credential is expired.
//
// Refreshed credentials are persisted before the new token is returned, so a
// crash mid-import never leaves an unsaved token in memory. A mutex keeps
// concurrent callers from issuing duplicate refresh requests.
type TokenProvider struct {
	account  *models.Account
	accounts *repositories.AccountRepository
	oauth    *SpotifyOAuth

	mu  sync.Mutex
	now func() time.Time
}

// NewTokenProvider creates a provider for the given account.
func NewTokenProvider(account *models.Account, accounts *repositories.AccountRepository, oauth *SpotifyOAuth) *TokenProvider {
	return &TokenProvider{
		account:  account,
		accounts: accounts,
		oauth:    oauth,
		now:      time.Now,
	}
}

// AccessToken returns a currently valid access token, refreshing first when
// the stored one is expired.
//
// Returns [shared.ErrNotAuthenticated] when the account has no credential and
// [shared.ErrRefreshFailed] when the token endpoint rejects the refresh.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	token, _, err := p.AccessTokenTTL(ctx)
	return token, err
}

// AccessTokenTTL returns a valid access token and its remaining lifetime.
//
// The TTL is clamped to zero for credentials at or past their expiry.
func (p *TokenProvider) AccessTokenTTL(ctx context.Context) (string, time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.account.Authenticated() {
		return "", 0, shared.ErrNotAuthenticated
	}

	now := p.now()
	if p.account.TokenExpiredAt(now) {
		if err := p.refresh(ctx); err != nil {
			return "", 0, err
		}
	}

	ttl := time.Duration(0)
	if expiresAt := p.account.TokenExpiresAt(); expiresAt != nil {
		if remaining := expiresAt.Sub(p.now()); remaining > 0 {
			ttl = remaining
		}
	}

	return p.account.AccessToken(), ttl, nil
}

// refresh exchanges the stored refresh token and persists the new credential.
// Caller holds the mutex.
func (p *TokenProvider) refresh(ctx context.Context) error {
	if p.account.RefreshToken() == "" {
		return fmt.Errorf("%w: no refresh token stored", shared.ErrNotAuthenticated)
	}

	tokens, err := p.oauth.Refresh(ctx, p.account.RefreshToken())
	if err != nil {
		return err
	}

	expiresAt := p.now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	p.account.SetTokens(tokens.AccessToken, tokens.RefreshToken, expiresAt)

	if err := p.accounts.Update(p.account); err != nil {
		return fmt.Errorf("failed to persist refreshed credential: %w", err)
	}

	return nil
}
