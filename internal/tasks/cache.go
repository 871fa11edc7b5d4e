package tasks

import (
	"time"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"

	"github.com/desertthunder/tunebook/internal/models"
)

// CacheMetrics receives cache hit/miss events.
type CacheMetrics interface {
	IncCacheHits()
	IncCacheMisses()
}

type noopCacheMetrics struct{}

func (noopCacheMetrics) IncCacheHits()   {}
func (noopCacheMetrics) IncCacheMisses() {}

// MetadataCache is a bounded in-process cache of video metadata keyed by video id.
//
// A nil *MetadataCache is a valid, always-missing cache.
type MetadataCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewMetadataCache creates a cache of sizeMB megabytes whose entries live for ttl.
// It returns nil (caching disabled) when sizeMB is not positive.
func NewMetadataCache(sizeMB int, ttl time.Duration) *MetadataCache {
	if sizeMB <= 0 {
		return nil
	}
	return &MetadataCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   max(int(ttl.Seconds()), 1),
	}
}

// Get returns the cached metadata for videoID.
func (c *MetadataCache) Get(videoID string) (*models.VideoMetadata, bool) {
	if c == nil {
		return nil, false
	}

	val, err := c.cache.Get([]byte(videoID))
	if err != nil {
		return nil, false
	}

	var meta models.VideoMetadata
	if err := json.Unmarshal(val, &meta); err != nil {
		c.cache.Del([]byte(videoID))
		return nil, false
	}
	return &meta, true
}

// Set stores meta under its video id.
func (c *MetadataCache) Set(meta *models.VideoMetadata) {
	if c == nil || meta == nil || meta.VideoID == "" {
		return
	}

	val, err := json.Marshal(meta)
	if err != nil {
		return
	}
	_ = c.cache.Set([]byte(meta.VideoID), val, c.ttl)
}

// Len returns the number of cached entries.
func (c *MetadataCache) Len() int64 {
	if c == nil {
		return 0
	}
	return c.cache.EntryCount()
}
