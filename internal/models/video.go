package models

import "time"

// Thumbnail is one rendition of a video thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// VideoMetadata is display metadata for a YouTube video. It is derived on demand and never persisted.
type VideoMetadata struct {
	VideoID      string               `json:"video_id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	ChannelTitle string               `json:"channel_title"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails"`
	ViewCount    uint64               `json:"view_count"`
	PublishedAt  time.Time            `json:"published_at"`
	Duration     string               `json:"duration"`
}

// thumbnailPreference lists thumbnail keys from most to least preferred for list rendering.
var thumbnailPreference = []string{"high", "medium", "default", "standard", "maxres"}

// Thumbnail returns the best available thumbnail for list rendering, if any.
func (v *VideoMetadata) Thumbnail() (Thumbnail, bool) {
	for _, k := range thumbnailPreference {
		if th, ok := v.Thumbnails[k]; ok && th.URL != "" {
			return th, true
		}
	}
	return Thumbnail{}, false
}

// EmbedURL returns the player URL for a video id.
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}

// EmbedURL returns the player URL for the video.
func (v *VideoMetadata) EmbedURL() string {
	return EmbedURL(v.VideoID)
}
