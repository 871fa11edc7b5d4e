package tasks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/services"
	"github.com/desertthunder/tunebook/internal/shared"
)

// EnrichOpts contains configuration for video enrichment.
type EnrichOpts struct {
	NumWorkers int            // Concurrent lookups (default: 4, max: 10)
	RateLimit  float64        // Lookups per second (default: 10)
	Cache      *MetadataCache // Optional metadata cache
	Metrics    CacheMetrics   // Optional cache hit/miss observer
	Logger     *log.Logger
}

// Enricher decorates recordings with video metadata.
type Enricher struct {
	svc     services.VideoService
	limiter *rate.Limiter
	cache   *MetadataCache
	metrics CacheMetrics
	workers int
	logger  *log.Logger
}

// enrichResult is the outcome of one lookup; ok is false when no metadata was found.
type enrichResult struct {
	recordingID string
	meta        *models.VideoMetadata
	ok          bool
}

// NewEnricher creates an [Enricher] over svc. A nil svc yields a disabled enricher.
func NewEnricher(svc services.VideoService, opts EnrichOpts) *Enricher {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10.0
	}
	if opts.Metrics == nil {
		opts.Metrics = noopCacheMetrics{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Enricher{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.NumWorkers),
		cache:   opts.Cache,
		metrics: opts.Metrics,
		workers: opts.NumWorkers,
		logger:  shared.WithLogger(opts.Logger, "task", "enrich"),
	}
}

// Enabled reports whether lookups can succeed.
func (e *Enricher) Enabled() bool {
	return e != nil && e.svc != nil && e.svc.Enabled()
}

// Enrich extracts a video id from url and looks it up.
func (e *Enricher) Enrich(ctx context.Context, url string) (*models.VideoMetadata, bool) {
	id, ok := services.ExtractVideoID(url)
	if !ok {
		return nil, false
	}
	return e.Lookup(ctx, id)
}

// Lookup returns metadata for videoID from the cache or the video service.
func (e *Enricher) Lookup(ctx context.Context, videoID string) (*models.VideoMetadata, bool) {
	if !e.Enabled() {
		return nil, false
	}

	if meta, ok := e.cache.Get(videoID); ok {
		e.metrics.IncCacheHits()
		return meta, true
	}
	e.metrics.IncCacheMisses()

	if err := e.limiter.Wait(ctx); err != nil {
		e.logger.Debug("lookup abandoned", "video_id", videoID, "error", err)
		return nil, false
	}

	meta, ok := e.svc.FetchVideoMetadata(ctx, videoID)
	if !ok {
		return nil, false
	}

	e.cache.Set(meta)
	return meta, true
}

// EnrichAll looks up every recording with an extractable video id and returns the successful results keyed
// by recording id. It returns only after every lookup has settled.
func (e *Enricher) EnrichAll(ctx context.Context, progress chan<- ProgressUpdate, recs []*models.Recording) map[string]*models.VideoMetadata {
	out := map[string]*models.VideoMetadata{}
	if !e.Enabled() || len(recs) == 0 {
		return out
	}

	type job struct {
		rec     *models.Recording
		videoID string
	}

	jobs := make([]job, 0, len(recs))
	for _, rec := range recs {
		if id, ok := services.ExtractVideoID(rec.URLString()); ok {
			jobs = append(jobs, job{rec: rec, videoID: id})
		}
	}
	if len(jobs) == 0 {
		return out
	}

	start := time.Now()
	results := make([]enrichResult, len(jobs))
	var completed atomic.Int32

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, j := range jobs {
		g.Go(func() error {
			meta, ok := e.Lookup(ctx, j.videoID)
			results[i] = enrichResult{recordingID: j.rec.ID(), meta: meta, ok: ok}

			step := int(completed.Add(1))
			sendProgress(progress, enrichedUpdate(step, len(jobs), j.rec.Name(), ok))
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.ok {
			out[r.recordingID] = r.meta
		}
	}

	e.logger.Debug("enrichment settled", "lookups", len(jobs), "found", len(out), "elapsed", time.Since(start))
	return out
}
