package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

const defaultYTTimeout = 5 * time.Second

var videoParts = []string{"snippet", "contentDetails", "statistics"}

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:embed/|v/|.*[?&]v=)|youtu\.be/)([\w-]{11})`)

// ExtractVideoID returns the 11-character video id embedded in a YouTube link.
func ExtractVideoID(url string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// YouTubeOptions configures a [YouTubeService].
type YouTubeOptions struct {
	APIKey  string
	BaseURL string // overrides the API endpoint; used by tests
	Timeout time.Duration
	Logger  *log.Logger
}

// YouTubeService implements [VideoService] against the YouTube Data API v3.
type YouTubeService struct {
	client  *youtube.Service
	timeout time.Duration
	logger  *log.Logger
}

// NewYouTubeService creates a YouTube Data API client.
//
// Without an API key the service is created disabled: every lookup reports no metadata and no request is made.
func NewYouTubeService(ctx context.Context, opts YouTubeOptions) (*YouTubeService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultYTTimeout
	}

	svc := &YouTubeService{timeout: timeout, logger: shared.WithLogger(logger, "service", "youtube")}
	if opts.APIKey == "" {
		return svc, nil
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.BaseURL))
	}

	client, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Join(shared.ErrServiceUnavailable, err)
	}
	svc.client = client
	return svc, nil
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Enabled reports whether an API key was configured.
func (y *YouTubeService) Enabled() bool {
	return y.client != nil
}

// FetchVideoMetadata issues one videos.list call for videoID.
//
// It returns false, after logging, when the service is disabled, the request fails or times out, or the API
// reports zero items.
func (y *YouTubeService) FetchVideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, bool) {
	if !y.Enabled() || videoID == "" {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	resp, err := y.client.Videos.List(videoParts).Id(videoID).Context(ctx).Do()
	if err != nil {
		y.logFailure(videoID, err)
		return nil, false
	}

	if len(resp.Items) == 0 {
		y.logger.Warn("no video found", "video_id", videoID)
		return nil, false
	}

	meta := toVideoMetadata(resp.Items[0])
	if meta.VideoID == "" {
		meta.VideoID = videoID
	}
	return meta, true
}

func (y *YouTubeService) logFailure(videoID string, err error) {
	var apiErr *googleapi.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		y.logger.Warn("video lookup timed out", "video_id", videoID, "timeout", y.timeout)
	case errors.As(err, &apiErr):
		y.logger.Warn("video lookup rejected", "video_id", videoID, "status", apiErr.Code, "message", apiErr.Message)
	default:
		y.logger.Warn("video lookup failed", "video_id", videoID, "error", err)
	}
}

func toVideoMetadata(v *youtube.Video) *models.VideoMetadata {
	meta := &models.VideoMetadata{VideoID: v.Id, Thumbnails: map[string]models.Thumbnail{}}

	if s := v.Snippet; s != nil {
		meta.Title = s.Title
		meta.Description = s.Description
		meta.ChannelTitle = s.ChannelTitle
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			meta.PublishedAt = t
		}
		if th := s.Thumbnails; th != nil {
			for key, t := range map[string]*youtube.Thumbnail{
				"default":  th.Default,
				"medium":   th.Medium,
				"high":     th.High,
				"standard": th.Standard,
				"maxres":   th.Maxres,
			} {
				if t != nil && t.Url != "" {
					meta.Thumbnails[key] = models.Thumbnail{URL: t.Url, Width: t.Width, Height: t.Height}
				}
			}
		}
	}

	if v.Statistics != nil {
		meta.ViewCount = v.Statistics.ViewCount
	}
	if v.ContentDetails != nil {
		meta.Duration = v.ContentDetails.Duration
	}
	return meta
}
