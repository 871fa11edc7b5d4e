package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/services"
	"github.com/desertthunder/tunebook/internal/shared"
)

// RecordingField names an editable recording field.
type RecordingField string

const (
	RecordingName  RecordingField = "name"
	RecordingNotes RecordingField = "notes"
)

// RecordingFields holds the editable values of a recording as entered.
type RecordingFields struct {
	Name  string
	Notes string
}

// RecordingDetail is the state of one open recording.
type RecordingDetail struct {
	recs     RecordingRepository
	enricher VideoEnricher
	userID   string
	logger   *log.Logger

	mu         sync.Mutex
	status     Status
	rec        *models.Recording
	fields     RecordingFields
	videoID    string
	video      *models.VideoMetadata
	errMsg     string
	closed     bool
	generation int
}

// NewRecordingDetail creates a recording view for userID in the Loading state.
func NewRecordingDetail(recs RecordingRepository, enricher VideoEnricher, userID string, logger *log.Logger) *RecordingDetail {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RecordingDetail{
		recs:     recs,
		enricher: orNoEnrichment(enricher),
		userID:   userID,
		logger:   shared.WithLogger(logger, "view", "recording"),
	}
}

// Load fetches the recording and, when its url carries a video id, the metadata shown beside the player.
// The player itself only needs the id, so a failed lookup still leaves [RecordingDetail.VideoID] set.
func (v *RecordingDetail) Load(ctx context.Context, id string) Status {
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

	rec, err := v.recs.GetForUser(ctx, v.userID, id)
	if err != nil {
		if notFound(err) {
			return v.fail(gen, NotFound, err)
		}
		v.logger.Error("failed to load recording", "recording_id", id, "error", err)
		return v.fail(gen, Failed, err)
	}

	videoID, _ := services.ExtractVideoID(rec.URLString())
	var video *models.VideoMetadata
	if videoID != "" {
		if meta, ok := v.enricher.Enrich(ctx, rec.URLString()); ok {
			video = meta
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return v.status
	}
	v.rec = rec
	v.fields = RecordingFields{Name: rec.Name(), Notes: rec.Notes()}
	v.videoID = videoID
	v.video = video
	v.status = Saved
	return v.status
}

func (v *RecordingDetail) fail(gen int, status Status, err error) Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return v.status
	}
	v.status = status
	v.errMsg = err.Error()
	return v.status
}

// Edit changes one field locally and marks the view dirty.
func (v *RecordingDetail) Edit(field RecordingField, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.status.Ready() {
		return fmt.Errorf("%w: recording is %s", shared.ErrInvalidArgument, v.status)
	}

	switch field {
	case RecordingName:
		v.fields.Name = value
	case RecordingNotes:
		v.fields.Notes = value
	default:
		return fmt.Errorf("%w: unknown recording field %q", shared.ErrInvalidArgument, field)
	}

	v.status = Dirty
	return nil
}

// Save persists name and notes.
func (v *RecordingDetail) Save(ctx context.Context) error {
	v.mu.Lock()
	if !v.status.Ready() {
		v.mu.Unlock()
		return fmt.Errorf("%w: recording is %s", shared.ErrInvalidArgument, v.status)
	}
	updated := *v.rec
	fields := v.fields
	v.mu.Unlock()

	updated.SetName(fields.Name)
	updated.SetNotes(fields.Notes)

	err := v.recs.Update(ctx, &updated)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Warn("failed to save recording", "recording_id", updated.ID(), "error", err)
		v.errMsg = err.Error()
		return err
	}

	v.rec = &updated
	v.errMsg = ""
	if v.fields != fields {
		// Edited while the update was in flight; those values are still unsaved.
		return nil
	}
	v.fields = RecordingFields{Name: updated.Name(), Notes: updated.Notes()}
	v.status = Saved
	return nil
}

// Delete removes the recording once confirmed and returns the parent tune id to navigate back to.
func (v *RecordingDetail) Delete(ctx context.Context, confirmed bool) (string, error) {
	if !confirmed {
		return "", shared.ErrNotConfirmed
	}

	v.mu.Lock()
	if v.rec == nil {
		v.mu.Unlock()
		return "", fmt.Errorf("%w: no recording loaded", shared.ErrRecordingNotFound)
	}
	id, tuneID := v.rec.ID(), v.rec.TuneID()
	v.mu.Unlock()

	err := v.recs.DeleteForUser(ctx, v.userID, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Warn("failed to delete recording", "recording_id", id, "error", err)
		v.errMsg = err.Error()
		return "", err
	}
	v.status = Deleted
	v.errMsg = ""
	return tuneID, nil
}

// Close detaches the view.
func (v *RecordingDetail) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.generation++
}

func (v *RecordingDetail) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *RecordingDetail) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *RecordingDetail) Recording() *models.Recording {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rec
}

func (v *RecordingDetail) Fields() RecordingFields {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fields
}

// VideoID returns the YouTube id found in the recording's url, or "" when it has none.
func (v *RecordingDetail) VideoID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.videoID
}

// Video returns the metadata for the embedded player, or nil when none is available.
func (v *RecordingDetail) Video() *models.VideoMetadata {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.video
}
