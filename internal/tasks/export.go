package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tunebook/internal/formatter"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// TuneLister lists the tunes a user owns.
type TuneLister interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Tune, error)
}

// RecordingLister lists a tune's recordings in display order.
type RecordingLister interface {
	ListByTune(ctx context.Context, userID, tuneID string) ([]*models.Recording, error)
}

// ExportOpts configures [ExportLibrary].
type ExportOpts struct {
	Format string // json, csv or markdown
	Output string // Destination path; generated when empty
	Enrich bool   // Annotate recordings with video titles
	Locale string // Collation locale for tune ordering
}

// ExportResult summarizes a finished export.
type ExportResult struct {
	Path       string
	Tunes      int
	Recordings int
	Enriched   int
}

// ExportLibrary writes every tune and recording owned by user to a file.
//
// Tunes are ordered by name using locale-aware collation; recordings keep their display order.
func ExportLibrary(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	tunes TuneLister,
	recs RecordingLister,
	enricher *Enricher,
	user models.Identity,
	opts ExportOpts,
) (*ExportResult, error) {
	if user.ID == "" {
		return nil, shared.ErrNotAuthenticated
	}
	if opts.Format == "" {
		opts.Format = "json"
	}
	if _, err := formatter.Export(&formatter.LibraryExport{}, opts.Format); err != nil {
		return nil, err
	}

	owned, err := tunes.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tunes: %w", err)
	}
	shared.SortByName(owned, opts.Locale, (*models.Tune).Name)

	lib := &formatter.LibraryExport{
		Owner:      user.Email,
		ExportedAt: time.Now().UTC(),
		Tunes:      make([]formatter.TuneExport, 0, len(owned)),
	}

	var all []*models.Recording
	for i, t := range owned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sendProgress(progress, loadTuneUpdate(i+1, len(owned), t.Name()))

		tuneRecs, err := recs.ListByTune(ctx, user.ID, t.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to list recordings for %s: %w", t.Name(), err)
		}
		all = append(all, tuneRecs...)
		lib.Tunes = append(lib.Tunes, formatter.NewTuneExport(t, tuneRecs))
	}

	result := &ExportResult{Tunes: len(lib.Tunes), Recordings: lib.RecordingCount()}

	if opts.Enrich && enricher.Enabled() {
		meta := enricher.EnrichAll(ctx, progress, all)
		lib.Annotate(meta)
		result.Enriched = len(meta)
	}

	path, err := formatter.WriteExport(lib, opts.Format, opts.Output)
	if err != nil {
		return nil, err
	}
	result.Path = path
	sendProgress(progress, writeExportUpdate(opts.Format, path))

	return result, nil
}
