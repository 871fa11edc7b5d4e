package services

import (
	"context"

	"github.com/desertthunder/tunebook/internal/models"
)

// VideoService looks up display metadata for a video id.
type VideoService interface {
	// FetchVideoMetadata returns the metadata for videoID, or false when none is available.
	FetchVideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, bool)

	// Enabled reports whether lookups can succeed at all (an API key is configured).
	Enabled() bool

	// Name returns the name of the service (e.g., "YouTube")
	Name() string
}
