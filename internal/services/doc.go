// Package services wraps the external HTTP APIs the tune library talks to.
//
// # YouTube Data API
//
// [YouTubeService] performs a single videos.list lookup per video id through the official
// google.golang.org/api/youtube/v3 client. Lookups are best effort: every failure (transport,
// quota, bad key, timeout, zero items) is logged and reported as "no metadata" so callers can fall
// back to a plain link.
//
// [ExtractVideoID] recognises the short and long link forms:
//   - https://youtu.be/<id>
//   - https://www.youtube.com/embed/<id>
//   - https://www.youtube.com/v/<id>
//   - https://www.youtube.com/watch?v=<id> (and &v=<id>)
//
// # Service Interface
//
// Consumers depend on [VideoService] so tests and the enrichment worker pool can substitute fakes.
package services
