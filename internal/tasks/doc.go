// Package tasks runs the background work behind the views and commands: video enrichment and library export.
//
// # Enrichment
//
// [Enricher.EnrichAll] decorates a tune's recordings with YouTube metadata. It is a fixed-size task group
// ([errgroup.Group] with a limit) where every task writes only its own result slot, so one failed or slow
// lookup never prevents the others from completing. Lookups go through a [rate.Limiter] and a
// [MetadataCache] (freecache) so reopening a tune does not spend API quota twice.
//
// Only successful lookups appear in the returned map; failures are logged by the video service and
// otherwise ignored.
//
// # Export
//
// [ExportLibrary] collects a user's tunes and recordings, optionally enriches them, and writes the result
// through the formatter package.
//
// # Progress Reporting
//
// Both operations accept an optional progress channel. Updates are sent with select/default so progress
// reporting never blocks the work.
package tasks
