package tasks

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/tunebook/internal/models"
	th "github.com/desertthunder/tunebook/internal/testing"
)

func newRecording(id, name, url string) *models.Recording {
	r := models.NewRecording("tune-1", "user-1", name)
	r.SetID(id)
	r.SetURL(url)
	return r
}

func videoURL(id string) string { return "https://www.youtube.com/watch?v=" + id }

type countingMetrics struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (m *countingMetrics) IncCacheHits()   { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *countingMetrics) IncCacheMisses() { m.mu.Lock(); m.misses++; m.mu.Unlock() }

func TestEnricher(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled service yields empty results", func(t *testing.T) {
		svc := &th.MockVideoService{Disabled: true}
		e := NewEnricher(svc, EnrichOpts{})

		if e.Enabled() {
			t.Error("expected enricher to be disabled")
		}

		got := e.EnrichAll(ctx, nil, []*models.Recording{newRecording("r1", "Take 1", videoURL("dQw4w9WgXcQ"))})
		if len(got) != 0 {
			t.Errorf("expected no results, got %d", len(got))
		}
		if svc.TotalCalls() != 0 {
			t.Errorf("expected no lookups, got %d", svc.TotalCalls())
		}
	})

	t.Run("nil enricher is disabled", func(t *testing.T) {
		var e *Enricher
		if e.Enabled() {
			t.Error("expected nil enricher to be disabled")
		}
	})

	t.Run("enrich extracts id from url", func(t *testing.T) {
		svc := &th.MockVideoService{Videos: map[string]*models.VideoMetadata{
			"dQw4w9WgXcQ": {VideoID: "dQw4w9WgXcQ", Title: "The Silver Spear"},
		}}
		e := NewEnricher(svc, EnrichOpts{})

		meta, ok := e.Enrich(ctx, "https://youtu.be/dQw4w9WgXcQ")
		if !ok {
			t.Fatal("expected metadata")
		}
		if meta.Title != "The Silver Spear" {
			t.Errorf("expected title 'The Silver Spear', got %s", meta.Title)
		}

		if _, ok := e.Enrich(ctx, "https://example.com/not-a-video"); ok {
			t.Error("expected no metadata for non-video url")
		}
	})

	t.Run("skips recordings without video urls", func(t *testing.T) {
		svc := &th.MockVideoService{Videos: map[string]*models.VideoMetadata{
			"aaaaaaaaaaa": {VideoID: "aaaaaaaaaaa", Title: "A"},
		}}
		e := NewEnricher(svc, EnrichOpts{})

		recs := []*models.Recording{
			newRecording("r1", "Video", videoURL("aaaaaaaaaaa")),
			newRecording("r2", "Bandcamp", "https://example.bandcamp.com/track/reel"),
			newRecording("r3", "No link", ""),
		}

		got := e.EnrichAll(ctx, nil, recs)
		if len(got) != 1 {
			t.Fatalf("expected 1 result, got %d", len(got))
		}
		if got["r1"] == nil || got["r1"].Title != "A" {
			t.Errorf("expected r1 to be enriched, got %+v", got["r1"])
		}
		if svc.TotalCalls() != 1 {
			t.Errorf("expected 1 lookup, got %d", svc.TotalCalls())
		}
	})

	t.Run("one failed lookup does not affect the others", func(t *testing.T) {
		videos := map[string]*models.VideoMetadata{}
		var recs []*models.Recording
		for i := range 8 {
			id := fmt.Sprintf("video%06d", i)
			if i != 3 {
				videos[id] = &models.VideoMetadata{VideoID: id, Title: fmt.Sprintf("Title %d", i)}
			}
			recs = append(recs, newRecording(fmt.Sprintf("r%d", i), fmt.Sprintf("Take %d", i), videoURL(id)))
		}

		svc := &th.MockVideoService{Videos: videos, Delay: 5 * time.Millisecond}
		e := NewEnricher(svc, EnrichOpts{NumWorkers: 3, RateLimit: 1000})

		got := e.EnrichAll(ctx, nil, recs)
		if len(got) != 7 {
			t.Fatalf("expected 7 results, got %d", len(got))
		}
		if _, ok := got["r3"]; ok {
			t.Error("expected failed lookup to be absent")
		}
		for i := range 8 {
			if i == 3 {
				continue
			}
			want := fmt.Sprintf("Title %d", i)
			if m := got[fmt.Sprintf("r%d", i)]; m == nil || m.Title != want {
				t.Errorf("r%d: expected %q, got %+v", i, want, m)
			}
		}
	})

	t.Run("reports progress per lookup", func(t *testing.T) {
		svc := &th.MockVideoService{Videos: map[string]*models.VideoMetadata{
			"aaaaaaaaaaa": {VideoID: "aaaaaaaaaaa"},
		}}
		e := NewEnricher(svc, EnrichOpts{})
		progress := make(chan ProgressUpdate, 10)

		e.EnrichAll(ctx, progress, []*models.Recording{
			newRecording("r1", "Found", videoURL("aaaaaaaaaaa")),
			newRecording("r2", "Missing", videoURL("bbbbbbbbbbb")),
		})
		close(progress)

		var found, missing int
		for u := range progress {
			if u.Phase != EnrichRecordings {
				t.Errorf("unexpected phase %s", u.Phase)
			}
			if u.Total != 2 {
				t.Errorf("expected total 2, got %d", u.Total)
			}
			if u.Data == true {
				found++
			} else {
				missing++
			}
		}
		if found != 1 || missing != 1 {
			t.Errorf("expected 1 found and 1 missing, got %d and %d", found, missing)
		}
	})

	t.Run("cache avoids repeat lookups", func(t *testing.T) {
		svc := &th.MockVideoService{Videos: map[string]*models.VideoMetadata{
			"aaaaaaaaaaa": {VideoID: "aaaaaaaaaaa", Title: "Cached"},
		}}
		metrics := &countingMetrics{}
		e := NewEnricher(svc, EnrichOpts{Cache: NewMetadataCache(1, time.Minute), Metrics: metrics})

		for range 3 {
			meta, ok := e.Lookup(ctx, "aaaaaaaaaaa")
			if !ok || meta.Title != "Cached" {
				t.Fatalf("expected cached metadata, got %+v", meta)
			}
		}

		if svc.Calls("aaaaaaaaaaa") != 1 {
			t.Errorf("expected 1 service call, got %d", svc.Calls("aaaaaaaaaaa"))
		}
		if metrics.misses != 1 || metrics.hits != 2 {
			t.Errorf("expected 1 miss and 2 hits, got %d and %d", metrics.misses, metrics.hits)
		}
	})

	t.Run("cancelled context stops lookups", func(t *testing.T) {
		svc := &th.MockVideoService{
			Videos: map[string]*models.VideoMetadata{"aaaaaaaaaaa": {VideoID: "aaaaaaaaaaa"}},
			Delay:  time.Second,
		}
		e := NewEnricher(svc, EnrichOpts{})

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		start := time.Now()
		got := e.EnrichAll(cctx, nil, []*models.Recording{newRecording("r1", "Slow", videoURL("aaaaaaaaaaa"))})
		if len(got) != 0 {
			t.Errorf("expected no results, got %d", len(got))
		}
		if time.Since(start) > 500*time.Millisecond {
			t.Error("expected cancelled enrichment to return promptly")
		}
	})
}

func TestMetadataCache(t *testing.T) {
	t.Run("disabled when size is zero", func(t *testing.T) {
		c := NewMetadataCache(0, time.Minute)
		if c != nil {
			t.Fatal("expected nil cache")
		}
		c.Set(&models.VideoMetadata{VideoID: "x"})
		if _, ok := c.Get("x"); ok {
			t.Error("expected nil cache to miss")
		}
		if c.Len() != 0 {
			t.Errorf("expected 0 entries, got %d", c.Len())
		}
	})

	t.Run("round trips metadata", func(t *testing.T) {
		c := NewMetadataCache(1, time.Minute)
		c.Set(&models.VideoMetadata{VideoID: "abc", Title: "Reel", ViewCount: 42})

		got, ok := c.Get("abc")
		if !ok {
			t.Fatal("expected cache hit")
		}
		if got.Title != "Reel" || got.ViewCount != 42 {
			t.Errorf("unexpected metadata: %+v", got)
		}
		if c.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", c.Len())
		}
	})

	t.Run("ignores entries without id", func(t *testing.T) {
		c := NewMetadataCache(1, time.Minute)
		c.Set(&models.VideoMetadata{Title: "No id"})
		c.Set(nil)
		if c.Len() != 0 {
			t.Errorf("expected 0 entries, got %d", c.Len())
		}
	})
}
