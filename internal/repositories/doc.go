// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for stable insertion ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [UserRepository] : local account persistence with email-based lookups
//   - [SessionRepository] : locally issued login sessions
//   - [TuneRepository] : tunes, scoped to their owning user
//   - [RecordingRepository] : recordings, ordered by sort order within their tune
//
// Deleting a tune soft-deletes its recordings in the same transaction, so no recording outlives its tune.
//
// Sequence numbers provide stable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
