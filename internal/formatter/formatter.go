// package formatter provides functions to export the album collection to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// ExportToCSV converts the album collection to CSV format with columns:
// ID, Title, Artists, ReleaseDate, Type, Score, Favorited, Listened
func ExportToCSV(albums []models.Album) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "ReleaseDate", "Type", "Score", "Favorited", "Listened"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, album := range albums {
		score := ""
		if album.Review != nil {
			score = strconv.FormatFloat(album.Review.Score, 'f', 1, 64)
		}
		record := []string{
			album.ID,
			album.Title,
			strings.Join(album.ArtistNames(), "; "),
			album.ReleaseDate,
			string(album.Type),
			score,
			strconv.FormatBool(album.Favorited),
			strconv.FormatBool(album.Listened),
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

// ExportToMarkdown converts the album collection to a Markdown document.
//
// Favorited albums get a star marker; reviews link back to their source.
func ExportToMarkdown(albums []models.Album, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Album Collection"
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Albums**: %d\n\n", len(albums)))

	for i, album := range albums {
		marker := ""
		if album.Favorited {
			marker = " ★"
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, strings.Join(album.ArtistNames(), ", "), album.Title, marker))
		if year := album.ReleaseYear(); year != "" {
			buf.WriteString(fmt.Sprintf("   Released: %s\n", album.ReleaseDate))
		}
		if album.Review != nil {
			buf.WriteString(fmt.Sprintf("   Score: %.1f", album.Review.Score))
			if album.Review.URL != "" {
				buf.WriteString(fmt.Sprintf(" ([review](%s))", album.Review.URL))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts the album collection to plain text format
func ExportToText(albums []models.Album) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Albums: %d\n\n", len(albums)))

	for i, album := range albums {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, strings.Join(album.ArtistNames(), ", "), album.Title))
		if album.Review != nil {
			buf.WriteString(fmt.Sprintf("   Score: %.1f\n", album.Review.Score))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts the album collection to indented JSON
func ExportToJSON(albums []models.Album) ([]byte, error) {
	return shared.MarshalJSON(albums, true)
}

// ExportResult contains the path of the file created by WriteExport
type ExportResult struct {
	File   string
	Format string
	Count  int
}

// WriteExport renders the collection in the named format and writes it to path.
//
// Supported formats: csv, markdown, text, json. Defaults the path to
// collection.{ext} when empty.
func WriteExport(albums []models.Album, format, path string) (*ExportResult, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(albums)
		ext = "csv"
	case "markdown", "md":
		data, err = ExportToMarkdown(albums, "")
		ext = "md"
	case "text", "txt":
		data, err = ExportToText(albums)
		ext = "txt"
	case "json", "":
		data, err = ExportToJSON(albums)
		ext = "json"
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate export: %w", err)
	}

	if path == "" {
		path = "collection." + ext
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	return &ExportResult{File: path, Format: format, Count: len(albums)}, nil
}
