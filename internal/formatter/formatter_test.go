package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trackdeck/internal/models"
	tu "trackdeck/internal/testing"
)

func testDeck() *Deck {
	one := models.NewSong(1, "track1", "Song One", "Artist One", 1999)
	one.SetShareToken("share1")
	two := models.NewSong(2, "track2", "Song Two", "Artist Two", 2005)
	two.SetShareToken("share2")

	return &Deck{
		Playlist: models.NewPlaylist(1, "Test Playlist", "spotify_pl_1"),
		Songs:    []*models.Song{one, two},
	}
}

func TestRenderers(t *testing.T) {
	t.Run("ToCSV", func(t *testing.T) {
		data, err := ToCSV(testDeck())
		if err != nil {
			t.Fatalf("ToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "SpotifyID,Title,Artist,Year,ShareToken") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		for _, want := range []string{"track1", "Song One", "Artist One", "1999", "share1"} {
			if !strings.Contains(output, want) {
				t.Errorf("CSV missing %q", want)
			}
		}
	})

	t.Run("ToMarkdown", func(t *testing.T) {
		data, err := ToMarkdown(testDeck())
		if err != nil {
			t.Fatalf("ToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Test Playlist") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Songs**: 2") {
			t.Errorf("Markdown missing song count")
		}
		if !strings.Contains(output, "1. Artist One - Song One (1999)") {
			t.Errorf("Markdown missing first song line, got: %s", output)
		}
	})

	t.Run("ToText", func(t *testing.T) {
		data, err := ToText(testDeck())
		if err != nil {
			t.Fatalf("ToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Playlist: Test Playlist") {
			t.Errorf("text missing playlist name")
		}
		if !strings.Contains(output, "2. Artist Two - Song Two") {
			t.Errorf("text missing second song line, got: %s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testDeck())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, `"name": "Test Playlist"`) {
			t.Errorf("metadata missing name, got: %s", output)
		}
		if !strings.Contains(output, `"song_count": 2`) {
			t.Errorf("metadata missing song count, got: %s", output)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "deck")

		result, err := WriteCSVExport(testDeck(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		tu.AssertFileExists(t, result.SongsFile)
		tu.AssertFileExists(t, result.MetadataFile)

		if content := tu.MustReadFile(t, result.SongsFile); !strings.Contains(content, "track1") {
			t.Errorf("songs file missing track data, got: %s", content)
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "deck")

		mdFile, err := WriteMarkdownExport(testDeck(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if filepath.Base(mdFile) != "README.md" {
			t.Errorf("expected README.md, got %s", mdFile)
		}
		tu.AssertFileExists(t, mdFile)
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.txt")

		written, err := WriteTextExport(testDeck(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}

		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		if _, err := os.Stat(written); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})
}
