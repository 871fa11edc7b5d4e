package models

import (
	"fmt"
	"strings"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Recording is one performance or reference recording of a [Tune].
//
// Recordings within a tune display in ascending sort order. A recording created without an explicit
// sort order is placed after its siblings by the repository.
type Recording struct {
	record
	tuneID    string
	userID    string
	name      string
	notes     string
	url       *string
	rating    *int
	sortOrder *int
}

// NewRecording creates a [Recording] for tuneID owned by userID.
func NewRecording(tuneID, userID, name string) *Recording {
	return &Recording{record: newRecord(), tuneID: tuneID, userID: userID, name: strings.TrimSpace(name)}
}

func (r *Recording) TuneID() string { return r.tuneID }
func (r *Recording) UserID() string { return r.userID }
func (r *Recording) Name() string   { return r.name }
func (r *Recording) Notes() string  { return r.notes }
func (r *Recording) URL() *string   { return r.url }
func (r *Recording) Rating() *int   { return r.rating }

// URLString returns the url or "" when absent.
func (r *Recording) URLString() string {
	if r.url == nil {
		return ""
	}
	return *r.url
}

// SortOrder returns the display position, 0 until one is assigned.
func (r *Recording) SortOrder() int {
	if r.sortOrder == nil {
		return 0
	}
	return *r.sortOrder
}

// HasSortOrder reports whether a sort order was set explicitly or by the store.
func (r *Recording) HasSortOrder() bool { return r.sortOrder != nil }

func (r *Recording) SetName(name string)   { r.name = strings.TrimSpace(name) }
func (r *Recording) SetNotes(notes string) { r.notes = notes }
func (r *Recording) SetSortOrder(n int)    { r.sortOrder = &n }

// SetURL stores url, normalising blank input to nil.
func (r *Recording) SetURL(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		r.url = nil
		return
	}
	r.url = &url
}

// SetRating stores rating; nil clears it.
func (r *Recording) SetRating(rating *int) {
	if rating == nil {
		r.rating = nil
		return
	}
	v := *rating
	r.rating = &v
}

// OwnedBy reports whether userID owns the recording.
func (r *Recording) OwnedBy(userID string) bool {
	return userID != "" && r.userID == userID
}

// Validate requires a parent tune, an owner, a name and an in-range rating.
func (r *Recording) Validate() error {
	if r.tuneID == "" {
		return fmt.Errorf("recording tune is required")
	}
	if r.userID == "" {
		return fmt.Errorf("recording owner is required")
	}
	if r.name == "" {
		return fmt.Errorf("recording name is required")
	}
	if r.rating != nil && (*r.rating < MinRating || *r.rating > MaxRating) {
		return fmt.Errorf("rating must be between %d and %d, got %d", MinRating, MaxRating, *r.rating)
	}
	return nil
}
