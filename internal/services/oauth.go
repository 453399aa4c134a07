package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"trackdeck/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// TokenSet is the credential material returned by the token endpoint.
//
// RefreshToken is empty when the endpoint chooses not to rotate it.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// SpotifyOAuth handles the authorization code flow and token refresh against
// the Spotify accounts service.
type SpotifyOAuth struct {
	config     *oauth2.Config
	httpClient *http.Client
	tokenURL   string
}

// NewSpotifyOAuth creates an OAuth handler from the given credentials map.
func NewSpotifyOAuth(credentials map[string]string) (*SpotifyOAuth, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyOAuth{
		config:     config,
		httpClient: http.DefaultClient,
		tokenURL:   spotifyTokenURL,
	}, nil
}

// AuthURL returns the authorization URL for user login with the given CSRF state.
func (o *SpotifyOAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// RedirectURL returns the configured callback URL.
func (o *SpotifyOAuth) RedirectURL() string {
	return o.config.RedirectURL
}

// Exchange trades an authorization code for a token set.
func (o *SpotifyOAuth) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int(token.ExpiresIn),
	}, nil
}

// Refresh trades a refresh token for a fresh token set.
//
// The endpoint may omit refresh_token from the response; the returned set
// carries it through empty so callers retain the old one.
func (o *SpotifyOAuth) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}

	req.SetBasicAuth(o.config.ClientID, o.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrRefreshFailed, resp.StatusCode, string(body))
	}

	var tokens TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token in response", shared.ErrRefreshFailed)
	}

	return &tokens, nil
}
