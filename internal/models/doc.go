// Package models defines domain entities and persistence interfaces for tunebook.
//
// The package contains two categories of types:
//
// 1. Persistent Entities: database-backed models with full lifecycle management
//   - [User] : locally managed identities (email + password hash)
//   - [Session] : locally issued login sessions
//   - [Tune] : a musical piece owned by exactly one user
//   - [Recording] : a performance or reference recording attached to one tune
//
// 2. Derived values that are never persisted
//   - [Identity] : the {id, email} pair any identity provider resolves a session to
//   - [VideoMetadata] : display metadata fetched from the YouTube Data API
//
// All persistent entities implement the [Model] interface providing ID, timestamps, validation and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
