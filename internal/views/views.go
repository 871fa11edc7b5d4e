package views

import (
	"context"
	"errors"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/tasks"
)

// TuneRepository is the store contract the tune views rely on.
type TuneRepository interface {
	Create(ctx context.Context, tune *models.Tune) error
	GetForUser(ctx context.Context, userID, id string) (*models.Tune, error)
	Update(ctx context.Context, tune *models.Tune) error
	DeleteForUser(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string) ([]*models.Tune, error)
}

// RecordingRepository is the store contract the recording views rely on.
type RecordingRepository interface {
	Create(ctx context.Context, rec *models.Recording) error
	GetForUser(ctx context.Context, userID, id string) (*models.Recording, error)
	Update(ctx context.Context, rec *models.Recording) error
	DeleteForUser(ctx context.Context, userID, id string) error
	ListByTune(ctx context.Context, userID, tuneID string) ([]*models.Recording, error)
}

// VideoEnricher decorates recordings with video metadata. See [tasks.Enricher].
type VideoEnricher interface {
	Enabled() bool
	Enrich(ctx context.Context, url string) (*models.VideoMetadata, bool)
	EnrichAll(ctx context.Context, progress chan<- tasks.ProgressUpdate, recs []*models.Recording) map[string]*models.VideoMetadata
}

// Status is the lifecycle state of a detail view.
type Status int

const (
	Loading Status = iota
	Saved
	Dirty
	Deleted
	NotFound
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Saved:
		return "saved"
	case Dirty:
		return "dirty"
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Ready reports whether the view has content to edit.
func (s Status) Ready() bool {
	return s == Saved || s == Dirty
}

// notFound reports whether err means the requested record does not exist for the current user.
func notFound(err error) bool {
	return errors.Is(err, shared.ErrTuneNotFound) ||
		errors.Is(err, shared.ErrRecordingNotFound) ||
		errors.Is(err, shared.ErrInvalidID)
}

// noEnrichment is used when a view is built without an enricher.
type noEnrichment struct{}

func (noEnrichment) Enabled() bool { return false }
func (noEnrichment) Enrich(context.Context, string) (*models.VideoMetadata, bool) {
	return nil, false
}
func (noEnrichment) EnrichAll(context.Context, chan<- tasks.ProgressUpdate, []*models.Recording) map[string]*models.VideoMetadata {
	return map[string]*models.VideoMetadata{}
}

func orNoEnrichment(e VideoEnricher) VideoEnricher {
	if e == nil {
		return noEnrichment{}
	}
	return e
}
