package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trackdeck/internal/shared"
)

func testConfig() *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Sync.RateLimit = 0 // unlimited in tests
	return cfg
}

func TestExtractPlaylistID(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		want string
	}{
		{"Full URL", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"URL With Query", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", "37i9dQZF1DXcBWIGoYBM5M"},
		{"Spotify URI", "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"Bare ID", "37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractPlaylistID(tc.ref); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}

	t.Run("Unrecognized Reference Passes Through", func(t *testing.T) {
		for _, ref := range []string{"weird_ref-123", "spotify:track:abc123", "https://example.com/playlist/abc", ""} {
			if got := ExtractPlaylistID(ref); got != ref {
				t.Errorf("expected %q passed through unchanged, got %q", ref, got)
			}
		}
	})
}

func TestTrackPayloadReleaseYear(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"1999-10-12", 1999},
		{"2005-03", 2005},
		{"1987", 1987},
		{"", 0},
		{"19", 0},
		{"abcd-01-01", 0},
	}

	for _, tc := range cases {
		track := TrackPayload{Album: AlbumRef{ReleaseDate: tc.date}}
		if got := track.ReleaseYear(); got != tc.want {
			t.Errorf("ReleaseYear(%q) = %d, expected %d", tc.date, got, tc.want)
		}
	}
}

func TestEachPlaylistTrack(t *testing.T) {
	trackItem := func(id, name, artist, date string) PlaylistTrackItem {
		return PlaylistTrackItem{
			Track: &TrackPayload{
				ID:      id,
				Name:    name,
				Artists: []ArtistRef{{Name: artist}},
				Album:   AlbumRef{ReleaseDate: date},
			},
		}
	}

	t.Run("Walks All Pages In Order", func(t *testing.T) {
		var server *httptest.Server
		requests := 0

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++

			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer token header, got %q", got)
			}
			if got := r.Header.Get("User-Agent"); got != userAgent {
				t.Errorf("expected user agent %q, got %q", userAgent, got)
			}

			page := trackPage{Total: 3}
			if requests == 1 {
				next := server.URL + "/v1/playlists/PL1/tracks?offset=2"
				page.Items = []PlaylistTrackItem{
					trackItem("t1", "First", "Artist A", "1999-01-01"),
					trackItem("t2", "Second", "Artist B", "2005"),
				}
				page.Next = &next
			} else {
				page.Items = []PlaylistTrackItem{trackItem("t3", "Third", "Artist C", "2010-06-15")}
			}

			json.NewEncoder(w).Encode(page)
		}))
		defer server.Close()

		client := NewSpotifyClient(StaticToken("test-token"), testConfig())
		client.baseURL = server.URL

		var seen []string
		err := client.EachPlaylistTrack(context.Background(), "PL1", func(item PlaylistTrackItem) error {
			seen = append(seen, item.Track.ID)
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if requests != 2 {
			t.Errorf("expected 2 page fetches, got %d", requests)
		}

		want := []string{"t1", "t2", "t3"}
		if len(seen) != len(want) {
			t.Fatalf("expected %d tracks, got %d", len(want), len(seen))
		}
		for i := range want {
			if seen[i] != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], seen[i])
			}
		}
	})

	t.Run("Non-2xx Returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"status":404,"message":"Not found"}}`)
		}))
		defer server.Close()

		client := NewSpotifyClient(StaticToken("test-token"), testConfig())
		client.baseURL = server.URL

		err := client.EachPlaylistTrack(context.Background(), "PL1", func(item PlaylistTrackItem) error {
			t.Error("visit should not be called on fetch failure")
			return nil
		})

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", apiErr.StatusCode)
		}
		if apiErr.Body == "" {
			t.Error("expected response body to be retained")
		}
	})

	t.Run("Visit Error Stops Iteration", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			next := "http://unreachable.invalid/page2"
			page := trackPage{
				Items: []PlaylistTrackItem{trackItem("t1", "First", "Artist A", "1999")},
				Next:  &next,
			}
			json.NewEncoder(w).Encode(page)
		}))
		defer server.Close()

		client := NewSpotifyClient(StaticToken("test-token"), testConfig())
		client.baseURL = server.URL

		stop := errors.New("stop")
		err := client.EachPlaylistTrack(context.Background(), "PL1", func(item PlaylistTrackItem) error {
			return stop
		})

		if !errors.Is(err, stop) {
			t.Fatalf("expected visit error to propagate, got %v", err)
		}
		if requests != 1 {
			t.Errorf("expected no further pages after visit error, got %d fetches", requests)
		}
	})

	t.Run("Unrecognized Reference Queried As Given", func(t *testing.T) {
		var requestedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			json.NewEncoder(w).Encode(trackPage{})
		}))
		defer server.Close()

		client := NewSpotifyClient(StaticToken("test-token"), testConfig())
		client.baseURL = server.URL

		err := client.EachPlaylistTrack(context.Background(), "weird_ref-123", func(item PlaylistTrackItem) error {
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if requestedPath != "/playlists/weird_ref-123/tracks" {
			t.Errorf("expected reference passed through to the request, got %s", requestedPath)
		}
	})

	t.Run("Missing Token", func(t *testing.T) {
		client := NewSpotifyClient(StaticToken(""), testConfig())

		err := client.EachPlaylistTrack(context.Background(), "PL1", func(item PlaylistTrackItem) error {
			return nil
		})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestUserProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("expected /me, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(UserProfile{
			ID:          "user1",
			DisplayName: "Test User",
			Email:       "test@example.com",
			Images:      []ProfileImage{{URL: "https://img.example.com/a.jpg"}},
		})
	}))
	defer server.Close()

	client := NewSpotifyClient(StaticToken("test-token"), testConfig())
	client.baseURL = server.URL

	profile, err := client.UserProfile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.ID != "user1" {
		t.Errorf("expected id 'user1', got %s", profile.ID)
	}
	if profile.AvatarURL() != "https://img.example.com/a.jpg" {
		t.Errorf("unexpected avatar URL: %s", profile.AvatarURL())
	}
}
