// package formatter renders a user's tune library for export (JSON, CSV, Markdown) and formats values for display
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "csv", "markdown"}

// RecordingExport is the exported form of a [models.Recording].
type RecordingExport struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Notes      string `json:"notes,omitempty"`
	URL        string `json:"url,omitempty"`
	Rating     *int   `json:"rating,omitempty"`
	SortOrder  int    `json:"sort_order"`
	VideoTitle string `json:"video_title,omitempty"`
}

// TuneExport is the exported form of a [models.Tune] with its recordings in display order.
type TuneExport struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Composer   string            `json:"composer,omitempty"`
	Year       string            `json:"year,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Recordings []RecordingExport `json:"recordings"`
}

// LibraryExport is everything one user owns.
type LibraryExport struct {
	Owner      string       `json:"owner"`
	ExportedAt time.Time    `json:"exported_at"`
	Tunes      []TuneExport `json:"tunes"`
}

// NewTuneExport converts a tune and its recordings.
func NewTuneExport(t *models.Tune, recs []*models.Recording) TuneExport {
	te := TuneExport{
		ID:         t.ID(),
		Name:       t.Name(),
		Composer:   t.Composer(),
		Year:       t.YearString(),
		Notes:      t.Notes(),
		Recordings: make([]RecordingExport, 0, len(recs)),
	}
	for _, r := range recs {
		te.Recordings = append(te.Recordings, RecordingExport{
			ID:        r.ID(),
			Name:      r.Name(),
			Notes:     r.Notes(),
			URL:       r.URLString(),
			Rating:    r.Rating(),
			SortOrder: r.SortOrder(),
		})
	}
	return te
}

// RecordingCount returns the number of recordings across all tunes.
func (l *LibraryExport) RecordingCount() int {
	n := 0
	for _, t := range l.Tunes {
		n += len(t.Recordings)
	}
	return n
}

// Annotate fills in video titles from enrichment results keyed by recording id.
func (l *LibraryExport) Annotate(meta map[string]*models.VideoMetadata) {
	for i := range l.Tunes {
		for j := range l.Tunes[i].Recordings {
			rec := &l.Tunes[i].Recordings[j]
			if m, ok := meta[rec.ID]; ok && m != nil {
				rec.VideoTitle = m.Title
			}
		}
	}
}

// ExportToJSON renders the library as indented JSON
func ExportToJSON(lib *LibraryExport) ([]byte, error) {
	return shared.MarshalJSON(lib, true)
}

// ExportToCSV renders one row per recording with columns:
// Tune ID, Tune, Composer, Year, Recording ID, Recording, URL, Rating, Sort Order, Video Title.
//
// Tunes without recordings get a single row with the recording columns left blank.
func ExportToCSV(lib *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Tune ID", "Tune", "Composer", "Year", "Recording ID", "Recording", "URL", "Rating", "Sort Order", "Video Title"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range lib.Tunes {
		tuneCols := []string{t.ID, t.Name, t.Composer, t.Year}
		if len(t.Recordings) == 0 {
			if err := writer.Write(append(tuneCols, "", "", "", "", "", "")); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}

		for _, r := range t.Recordings {
			rating := ""
			if r.Rating != nil {
				rating = strconv.Itoa(*r.Rating)
			}
			row := append(append([]string{}, tuneCols...), r.ID, r.Name, r.URL, rating, strconv.Itoa(r.SortOrder), r.VideoTitle)
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the library as a Markdown document with one section per tune
func ExportToMarkdown(lib *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Tune Library\n\n")
	if lib.Owner != "" {
		buf.WriteString(fmt.Sprintf("**Owner**: %s\n", lib.Owner))
	}
	buf.WriteString(fmt.Sprintf("**Tunes**: %d\n", len(lib.Tunes)))
	buf.WriteString(fmt.Sprintf("**Recordings**: %d\n\n", lib.RecordingCount()))

	for _, t := range lib.Tunes {
		buf.WriteString(fmt.Sprintf("## %s\n\n", t.Name))

		if t.Composer != "" {
			buf.WriteString(fmt.Sprintf("- Composer: %s\n", t.Composer))
		}
		if t.Year != "" {
			buf.WriteString(fmt.Sprintf("- Year: %s\n", t.Year))
		}
		if t.Composer != "" || t.Year != "" {
			buf.WriteString("\n")
		}
		if notes := strings.TrimSpace(t.Notes); notes != "" {
			buf.WriteString(notes + "\n\n")
		}

		if len(t.Recordings) == 0 {
			buf.WriteString("_No recordings._\n\n")
			continue
		}

		buf.WriteString("### Recordings\n\n")
		for i, r := range t.Recordings {
			title := r.Name
			if r.URL != "" {
				title = fmt.Sprintf("[%s](%s)", r.Name, r.URL)
			}
			line := fmt.Sprintf("%d. %s", i+1, title)
			if r.Rating != nil {
				line += " " + FormatRating(r.Rating)
			}
			if r.VideoTitle != "" {
				line += fmt.Sprintf(" (%s)", r.VideoTitle)
			}
			buf.WriteString(line + "\n")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// Export renders lib in the named format.
func Export(lib *LibraryExport, format string) ([]byte, error) {
	switch format {
	case "json":
		return ExportToJSON(lib)
	case "csv":
		return ExportToCSV(lib)
	case "markdown", "md":
		return ExportToMarkdown(lib)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch format {
	case "markdown", "md":
		return "md"
	default:
		return format
	}
}

// WriteExport renders lib and writes it to path.
//
// Defaults to tunebook_export_{epoch}.{ext} in the working directory.
func WriteExport(lib *LibraryExport, format, path string) (string, error) {
	data, err := Export(lib, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("tunebook_export_%d.%s", time.Now().Unix(), Extension(format))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// FormatRating renders a 1–5 rating as stars, or "-" when unrated.
func FormatRating(rating *int) string {
	if rating == nil {
		return "-"
	}
	n := min(max(*rating, 0), models.MaxRating)
	return strings.Repeat("★", n) + strings.Repeat("☆", models.MaxRating-n)
}

// FormatViews renders a view count with thousands separators.
func FormatViews(n uint64) string {
	p := message.NewPrinter(language.English)
	if n == 1 {
		return "1 view"
	}
	return p.Sprintf("%d views", n)
}
