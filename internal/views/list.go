package views

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// TuneList is the home view: the signed-in user's tunes, or a login prompt.
type TuneList struct {
	LoginRequired bool
	User          *models.Identity
	Tunes         []*models.Tune
}

// LoadTuneList resolves the tune list for state.
//
// Without a session nothing is fetched. A failed fetch is logged and yields an empty list.
func LoadTuneList(ctx context.Context, repo TuneRepository, state auth.State, locale string, logger *log.Logger) *TuneList {
	if !state.Authenticated() {
		return &TuneList{LoginRequired: true}
	}

	list := &TuneList{User: state.User, Tunes: []*models.Tune{}}

	tunes, err := repo.ListByUser(ctx, state.UserID())
	if err != nil {
		if logger != nil {
			logger.Error("failed to list tunes", "user_id", state.UserID(), "error", err)
		}
		return list
	}

	shared.SortByName(tunes, locale, (*models.Tune).Name)
	list.Tunes = tunes
	return list
}

// Len returns the number of tunes listed.
func (l *TuneList) Len() int { return len(l.Tunes) }
