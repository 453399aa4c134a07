// package formatter renders local playlists to shareable formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"trackdeck/internal/models"
	"trackdeck/internal/shared"
)

// Deck is a local playlist with its linked songs, ready for export.
type Deck struct {
	Playlist *models.Playlist
	Songs    []*models.Song
}

// ToCSV renders a deck as CSV with columns: SpotifyID, Title, Artist, Year, ShareToken
func ToCSV(deck *Deck) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"SpotifyID", "Title", "Artist", "Year", "ShareToken"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range deck.Songs {
		record := []string{
			song.SpotifyID(),
			song.Title(),
			song.Artist(),
			strconv.Itoa(song.ReleaseYear()),
			song.ShareToken(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a deck as a Markdown track listing
func ToMarkdown(deck *Deck) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", deck.Playlist.Name()))
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", deck.Playlist.SpotifyRef()))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(deck.Songs)))

	buf.WriteString("## Songs\n\n")
	for i, song := range deck.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%d)\n", i+1, song.Artist(), song.Title(), song.ReleaseYear()))
	}

	return buf.Bytes(), nil
}

// ToText renders a deck as plain text
func ToText(deck *Deck) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", deck.Playlist.Name()))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(deck.Songs)))

	for i, song := range deck.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist(), song.Title()))
	}

	return buf.Bytes(), nil
}

// playlistMetadata is the JSON shape written alongside CSV exports.
type playlistMetadata struct {
	Name       string `json:"name"`
	SpotifyRef string `json:"spotify_ref"`
	SongCount  int    `json:"song_count"`
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without songs)
func ToMetadataJSON(deck *Deck) ([]byte, error) {
	return shared.MarshalJSON(playlistMetadata{
		Name:       deck.Playlist.Name(),
		SpotifyRef: deck.Playlist.SpotifyRef(),
		SongCount:  len(deck.Songs),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport writes a deck as {base}_songs.csv plus {base}_metadata.json.
//
// Defaults to the playlist name as the base filename.
func WriteCSVExport(deck *Deck, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = deck.Playlist.Name()
	}

	csvData, err := ToCSV(deck)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(deck)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		SongsFile:    songsFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport writes a deck as {dir}/README.md in a dedicated directory.
//
// Directory name defaults to the playlist name.
func WriteMarkdownExport(deck *Deck, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = deck.Playlist.Name()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ToMarkdown(deck)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport writes a deck as {playlist name}_songs.txt.
func WriteTextExport(deck *Deck, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_songs.txt", deck.Playlist.Name())
	}

	textData, err := ToText(deck)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
