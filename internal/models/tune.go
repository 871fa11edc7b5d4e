package models

import (
	"fmt"
	"strings"
)

// Tune is one musical piece owned by a single user.
//
// Year is free text so partial or approximate dates ("c. 1850", "1920s") survive; it is nil when unknown.
type Tune struct {
	record
	userID   string
	name     string
	composer string
	year     *string
	notes    string
}

// NewTune creates a [Tune] owned by userID with the given name and every other field blank.
func NewTune(userID, name string) *Tune {
	return &Tune{record: newRecord(), userID: userID, name: strings.TrimSpace(name)}
}

func (t *Tune) UserID() string   { return t.userID }
func (t *Tune) Name() string     { return t.name }
func (t *Tune) Composer() string { return t.composer }
func (t *Tune) Year() *string    { return t.year }
func (t *Tune) Notes() string    { return t.notes }

// YearString returns the year or "" when absent.
func (t *Tune) YearString() string {
	if t.year == nil {
		return ""
	}
	return *t.year
}

func (t *Tune) SetName(name string)         { t.name = strings.TrimSpace(name) }
func (t *Tune) SetComposer(composer string) { t.composer = strings.TrimSpace(composer) }
func (t *Tune) SetNotes(notes string)       { t.notes = notes }

// SetYear stores year, normalising blank input to nil.
func (t *Tune) SetYear(year string) {
	year = strings.TrimSpace(year)
	if year == "" {
		t.year = nil
		return
	}
	t.year = &year
}

// OwnedBy reports whether userID owns the tune.
func (t *Tune) OwnedBy(userID string) bool {
	return userID != "" && t.userID == userID
}

// Validate requires an owner and a non-empty name.
func (t *Tune) Validate() error {
	if t.userID == "" {
		return fmt.Errorf("tune owner is required")
	}
	if t.name == "" {
		return fmt.Errorf("tune name is required")
	}
	return nil
}
