// Spotify Web API client.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"trackdeck/internal/shared"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// userAgent identifies this client to the API per Spotify's guidelines.
	userAgent = "trackdeck/1.0"

	// trackPageLimit is the maximum page size the playlist tracks endpoint accepts.
	trackPageLimit = 100
)

// trackFields trims playlist track responses to the fields the importer reads.
const trackFields = "items(added_at,track(id,name,uri,artists(id,name),album(id,name,release_date))),next,total"

var (
	playlistURLPattern = regexp.MustCompile(`open\.spotify\.com/playlist/([A-Za-z0-9]+)`)
	playlistURIPattern = regexp.MustCompile(`\Aspotify:playlist:([A-Za-z0-9]+)\z`)
)

// ExtractPlaylistID normalizes a playlist reference into a playlist id.
//
// Accepts a full open.spotify.com URL (query string ignored) or a
// spotify:playlist: URI; any other form passes through unchanged and the
// API decides whether it names a playlist.
func ExtractPlaylistID(ref string) string {
	if m := playlistURLPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	if m := playlistURIPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	return ref
}

// TokenSource supplies a current access token for API requests.
//
// Implemented by [TokenProvider]; a static token can be wrapped with
// [StaticToken] for flows that already hold one.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed access token.
type StaticToken string

func (t StaticToken) AccessToken(ctx context.Context) (string, error) {
	if t == "" {
		return "", shared.ErrNotAuthenticated
	}
	return string(t), nil
}

// SpotifyClient performs authenticated requests against the Spotify Web API.
//
// Requests pass through a rate limiter and carry separate connect and read
// timeouts so a stalled API call cannot hang an import indefinitely.
type SpotifyClient struct {
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	pageLimit  int
}

// NewSpotifyClient creates a client using the sync settings from config.
func NewSpotifyClient(tokens TokenSource, cfg *shared.Config) *SpotifyClient {
	connectTimeout := time.Duration(cfg.Sync.ConnectTimeoutSecs) * time.Second
	readTimeout := time.Duration(cfg.Sync.ReadTimeoutSecs) * time.Second

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
		ResponseHeaderTimeout: readTimeout,
	}

	pageLimit := cfg.Sync.PageLimit
	if pageLimit <= 0 || pageLimit > trackPageLimit {
		pageLimit = trackPageLimit
	}

	limit := rate.Limit(cfg.Sync.RateLimit)
	if limit <= 0 {
		limit = rate.Inf
	}

	return &SpotifyClient{
		tokens:     tokens,
		httpClient: &http.Client{Transport: transport},
		limiter:    rate.NewLimiter(limit, 1),
		baseURL:    spotifyBaseURL,
		pageLimit:  pageLimit,
	}
}

// trackPage is one page of the playlist tracks endpoint.
type trackPage struct {
	Items []PlaylistTrackItem `json:"items"`
	Next  *string             `json:"next"`
	Total int                 `json:"total"`
}

// EachPlaylistTrack walks every entry of the referenced playlist in order,
// fetching pages lazily and invoking visit once per entry.
//
// Iteration stops at the first visit error or fetch failure. Fetch failures
// surface as [*APIError] for non-2xx responses, [shared.ErrTimeout] for
// deadline errors, and wrapped transport errors otherwise.
func (s *SpotifyClient) EachPlaylistTrack(ctx context.Context, playlistRef string, visit func(PlaylistTrackItem) error) error {
	playlistID := ExtractPlaylistID(playlistRef)

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d&fields=%s", s.baseURL, playlistID, s.pageLimit, trackFields)

	for next != "" {
		var page trackPage
		if err := s.get(ctx, next, &page); err != nil {
			return err
		}

		for _, item := range page.Items {
			if err := visit(item); err != nil {
				return err
			}
		}

		if page.Next == nil {
			break
		}
		next = *page.Next
	}

	return nil
}

// UserProfile retrieves the authenticated user's profile.
func (s *SpotifyClient) UserProfile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := s.get(ctx, s.baseURL+"/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// get performs an authenticated GET against an absolute API URL.
func (s *SpotifyClient) get(ctx context.Context, apiURL string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
