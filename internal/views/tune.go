package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// TuneField names an editable tune field.
type TuneField string

const (
	TuneName     TuneField = "name"
	TuneComposer TuneField = "composer"
	TuneYear     TuneField = "year"
	TuneNotes    TuneField = "notes"
)

// TuneFields holds the editable values of a tune as entered.
type TuneFields struct {
	Name     string
	Composer string
	Year     string
	Notes    string
}

func tuneFieldsOf(t *models.Tune) TuneFields {
	return TuneFields{Name: t.Name(), Composer: t.Composer(), Year: t.YearString(), Notes: t.Notes()}
}

// TuneDetail is the state of one open tune.
type TuneDetail struct {
	tunes    TuneRepository
	recs     RecordingRepository
	enricher VideoEnricher
	userID   string
	logger   *log.Logger

	mu         sync.Mutex
	status     Status
	tune       *models.Tune
	fields     TuneFields
	recordings []*models.Recording
	videos     map[string]*models.VideoMetadata
	errMsg     string
	closed     bool
	generation int
}

// NewTuneDetail creates a tune view for userID in the Loading state.
func NewTuneDetail(tunes TuneRepository, recs RecordingRepository, enricher VideoEnricher, userID string, logger *log.Logger) *TuneDetail {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TuneDetail{
		tunes:    tunes,
		recs:     recs,
		enricher: orNoEnrichment(enricher),
		userID:   userID,
		logger:   shared.WithLogger(logger, "view", "tune"),
		videos:   map[string]*models.VideoMetadata{},
	}
}

// Load fetches the tune and its recordings, then enriches the recordings. The view becomes ready only
// after every enrichment attempt has settled.
func (v *TuneDetail) Load(ctx context.Context, id string) Status {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.status = Loading
	v.errMsg = ""
	v.mu.Unlock()

	if v.userID == "" {
		return v.fail(gen, Failed, shared.ErrNotAuthenticated)
	}
	if !shared.IsValidID(id) {
		return v.fail(gen, NotFound, fmt.Errorf("%w: %q", shared.ErrInvalidID, id))
	}

	tune, err := v.tunes.GetForUser(ctx, v.userID, id)
	if err != nil {
		if notFound(err) {
			return v.fail(gen, NotFound, err)
		}
		v.logger.Error("failed to load tune", "tune_id", id, "error", err)
		return v.fail(gen, Failed, err)
	}

	recs, err := v.recs.ListByTune(ctx, v.userID, id)
	if err != nil {
		v.logger.Error("failed to load recordings", "tune_id", id, "error", err)
		return v.fail(gen, Failed, err)
	}

	videos := v.enricher.EnrichAll(ctx, nil, recs)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		v.logger.Debug("dropping stale load", "tune_id", id)
		return v.status
	}
	v.tune = tune
	v.fields = tuneFieldsOf(tune)
	v.recordings = recs
	v.videos = videos
	v.status = Saved
	return v.status
}

func (v *TuneDetail) fail(gen int, status Status, err error) Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return v.status
	}
	v.status = status
	v.errMsg = err.Error()
	return v.status
}

// Edit changes one field locally and marks the view dirty. No store call is made.
func (v *TuneDetail) Edit(field TuneField, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.status.Ready() {
		return fmt.Errorf("%w: tune is %s", shared.ErrInvalidArgument, v.status)
	}

	switch field {
	case TuneName:
		v.fields.Name = value
	case TuneComposer:
		v.fields.Composer = value
	case TuneYear:
		v.fields.Year = value
	case TuneNotes:
		v.fields.Notes = value
	default:
		return fmt.Errorf("%w: unknown tune field %q", shared.ErrInvalidArgument, field)
	}

	v.status = Dirty
	return nil
}

// Save persists the current field values. On failure the view keeps its edits and its state, and
// the error is kept for display.
func (v *TuneDetail) Save(ctx context.Context) error {
	v.mu.Lock()
	if !v.status.Ready() {
		v.mu.Unlock()
		return fmt.Errorf("%w: tune is %s", shared.ErrInvalidArgument, v.status)
	}

	// Copy so a failed update leaves the loaded record untouched.
	updated := *v.tune
	fields := v.fields
	v.mu.Unlock()

	updated.SetName(fields.Name)
	updated.SetComposer(fields.Composer)
	updated.SetYear(fields.Year)
	updated.SetNotes(fields.Notes)

	err := v.tunes.Update(ctx, &updated)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Warn("failed to save tune", "tune_id", updated.ID(), "error", err)
		v.errMsg = err.Error()
		return err
	}

	v.tune = &updated
	v.errMsg = ""
	if v.fields != fields {
		// Edited while the update was in flight; those values are still unsaved.
		return nil
	}
	v.fields = tuneFieldsOf(&updated)
	v.status = Saved
	return nil
}

// Delete removes the tune and its recordings once confirmed. On success the view is Deleted and the
// caller should navigate away; on failure it stays as it was.
func (v *TuneDetail) Delete(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return shared.ErrNotConfirmed
	}

	v.mu.Lock()
	if v.tune == nil {
		v.mu.Unlock()
		return fmt.Errorf("%w: no tune loaded", shared.ErrTuneNotFound)
	}
	id := v.tune.ID()
	v.mu.Unlock()

	err := v.tunes.DeleteForUser(ctx, v.userID, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Warn("failed to delete tune", "tune_id", id, "error", err)
		v.errMsg = err.Error()
		return err
	}
	v.status = Deleted
	v.errMsg = ""
	return nil
}

// Close detaches the view. Loads still in flight are discarded when they finish.
func (v *TuneDetail) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.generation++
}

func (v *TuneDetail) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Error returns the message of the last failed operation, or "".
func (v *TuneDetail) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *TuneDetail) Tune() *models.Tune {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tune
}

func (v *TuneDetail) Fields() TuneFields {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fields
}

func (v *TuneDetail) Recordings() []*models.Recording {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.recordings
}

// Video returns enrichment for a recording, if any was found.
func (v *TuneDetail) Video(recordingID string) (*models.VideoMetadata, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	meta, ok := v.videos[recordingID]
	return meta, ok
}
