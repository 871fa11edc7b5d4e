package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
	th "github.com/desertthunder/tunebook/internal/testing"
)

func intPtr(i int) *int { return &i }

func sampleLibrary() *LibraryExport {
	return &LibraryExport{
		Owner:      "fiddler@example.com",
		ExportedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Tunes: []TuneExport{
			{
				ID:       "t1",
				Name:     "Cooley's",
				Composer: "Joe Cooley",
				Year:     "c. 1950",
				Notes:    "E dorian",
				Recordings: []RecordingExport{
					{ID: "r1", Name: "Live take", URL: "https://youtu.be/abcdefghijk", Rating: intPtr(4), SortOrder: 1, VideoTitle: "Cooley's Reel"},
					{ID: "r2", Name: "Practice", SortOrder: 2},
				},
			},
			{ID: "t2", Name: "The Kesh", Recordings: []RecordingExport{}},
		},
	}
}

func TestNewTuneExport(t *testing.T) {
	tune := models.NewTune("user-1", "Cooley's")
	tune.SetID("t1")
	tune.SetYear("")

	rec := models.NewRecording("t1", "user-1", "Live take")
	rec.SetID("r1")
	rec.SetURL("https://youtu.be/abcdefghijk")
	rec.SetSortOrder(3)

	te := NewTuneExport(tune, []*models.Recording{rec})
	if te.ID != "t1" || te.Name != "Cooley's" || te.Year != "" {
		t.Errorf("unexpected tune export %+v", te)
	}
	if len(te.Recordings) != 1 || te.Recordings[0].SortOrder != 3 || te.Recordings[0].URL != "https://youtu.be/abcdefghijk" {
		t.Errorf("unexpected recordings %+v", te.Recordings)
	}
}

func TestAnnotate(t *testing.T) {
	lib := sampleLibrary()
	lib.Tunes[0].Recordings[0].VideoTitle = ""

	lib.Annotate(map[string]*models.VideoMetadata{"r1": {Title: "Fetched title"}})

	if got := lib.Tunes[0].Recordings[0].VideoTitle; got != "Fetched title" {
		t.Errorf("expected annotated title, got %q", got)
	}
	if got := lib.Tunes[0].Recordings[1].VideoTitle; got != "" {
		t.Errorf("expected r2 to stay blank, got %q", got)
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleLibrary())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded LibraryExport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded.Tunes) != 2 || decoded.Tunes[0].Recordings[0].Rating == nil {
			t.Errorf("unexpected decoded library %+v", decoded)
		}
		if strings.Contains(string(data), `"rating": null`) {
			t.Error("expected unrated recordings to omit rating")
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleLibrary())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(rows) != 4 {
			t.Fatalf("expected header + 3 rows, got %d", len(rows))
		}
		if rows[0][0] != "Tune ID" || rows[0][9] != "Video Title" {
			t.Errorf("unexpected headers %v", rows[0])
		}
		if rows[1][5] != "Live take" || rows[1][7] != "4" || rows[1][9] != "Cooley's Reel" {
			t.Errorf("unexpected first recording row %v", rows[1])
		}
		if rows[2][7] != "" {
			t.Errorf("expected blank rating for unrated recording, got %q", rows[2][7])
		}
		if rows[3][1] != "The Kesh" || rows[3][4] != "" {
			t.Errorf("expected tune without recordings to have blank recording columns, got %v", rows[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleLibrary())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Tune Library",
			"**Owner**: fiddler@example.com",
			"**Recordings**: 2",
			"## Cooley's",
			"- Composer: Joe Cooley",
			"1. [Live take](https://youtu.be/abcdefghijk) ★★★★☆ (Cooley's Reel)",
			"2. Practice",
			"## The Kesh",
			"_No recordings._",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("Export rejects unknown format", func(t *testing.T) {
		if _, err := Export(sampleLibrary(), "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "library."+Extension(format))
			written, err := WriteExport(sampleLibrary(), format, path)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if written != path {
				t.Errorf("expected %s, got %s", path, written)
			}
			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, "Cooley's") {
				t.Errorf("export missing tune name")
			}
		})
	}

	t.Run("invalid directory", func(t *testing.T) {
		if _, err := WriteExport(sampleLibrary(), "json", filepath.Join(dir, "missing", "out.json")); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestFormatRating(t *testing.T) {
	tests := []struct {
		rating *int
		want   string
	}{
		{nil, "-"},
		{intPtr(1), "★☆☆☆☆"},
		{intPtr(5), "★★★★★"},
		{intPtr(9), "★★★★★"},
	}
	for _, tt := range tests {
		if got := FormatRating(tt.rating); got != tt.want {
			t.Errorf("FormatRating() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatViews(t *testing.T) {
	if got := FormatViews(1); got != "1 view" {
		t.Errorf("FormatViews(1) = %q", got)
	}
	if got := FormatViews(1234567); got != "1,234,567 views" {
		t.Errorf("FormatViews(1234567) = %q", got)
	}
}
