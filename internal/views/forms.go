package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gookit/validate"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// AddTuneForm collects a new tune. Only the name is required.
type AddTuneForm struct {
	Name     string `form:"name" validate:"required|maxLen:200" label:"Name"`
	Composer string `form:"composer" validate:"maxLen:200" label:"Composer"`
	Year     string `form:"year" validate:"maxLen:32" label:"Year"`
	Notes    string `form:"notes" label:"Notes"`

	Err string `form:"-"`
}

// Submit creates the tune for the signed-in user and clears the form.
// It returns the path to redirect to.
func (f *AddTuneForm) Submit(ctx context.Context, repo TuneRepository, state auth.State) (string, error) {
	if !state.Authenticated() {
		return f.failed(shared.ErrNotAuthenticated)
	}

	f.Name = strings.TrimSpace(f.Name)
	if err := validateForm(f); err != nil {
		return f.failed(err)
	}

	tune := models.NewTune(state.UserID(), f.Name)
	tune.SetComposer(f.Composer)
	tune.SetYear(f.Year)
	tune.SetNotes(f.Notes)

	if err := repo.Create(ctx, tune); err != nil {
		return f.failed(err)
	}

	*f = AddTuneForm{}
	return "/", nil
}

func (f *AddTuneForm) failed(err error) (string, error) {
	f.Err = err.Error()
	return "", err
}

// AddRecordingForm collects a new recording for TuneID. Rating and sort order are optional text inputs.
type AddRecordingForm struct {
	TuneID    string `form:"-" validate:"required" label:"Tune"`
	Name      string `form:"name" validate:"required|maxLen:200" label:"Name"`
	Notes     string `form:"notes" label:"Notes"`
	URL       string `form:"url" validate:"fullUrl" label:"URL"`
	Rating    string `form:"rating" label:"Rating"`
	SortOrder string `form:"sort_order" label:"Sort order"`

	Err string `form:"-"`
}

// Submit creates the recording under the form's tune. On failure the form keeps its values.
func (f *AddRecordingForm) Submit(ctx context.Context, repo RecordingRepository, state auth.State) (string, error) {
	if !state.Authenticated() {
		return f.failed(shared.ErrNotAuthenticated)
	}
	if f.TuneID != "" && !shared.IsValidID(f.TuneID) {
		return f.failed(fmt.Errorf("%w: %q", shared.ErrInvalidID, f.TuneID))
	}

	f.Name = strings.TrimSpace(f.Name)
	f.URL = strings.TrimSpace(f.URL)
	if err := validateForm(f); err != nil {
		return f.failed(err)
	}

	rec := models.NewRecording(f.TuneID, state.UserID(), f.Name)
	rec.SetNotes(f.Notes)
	rec.SetURL(f.URL)

	rating, err := optionalInt(f.Rating, "rating")
	if err != nil {
		return f.failed(err)
	}
	if rating != nil && (*rating < models.MinRating || *rating > models.MaxRating) {
		return f.failed(fmt.Errorf("%w: rating must be between %d and %d", shared.ErrInvalidInput, models.MinRating, models.MaxRating))
	}
	rec.SetRating(rating)

	sortOrder, err := optionalInt(f.SortOrder, "sort order")
	if err != nil {
		return f.failed(err)
	}
	if sortOrder != nil {
		rec.SetSortOrder(*sortOrder)
	}

	if err := repo.Create(ctx, rec); err != nil {
		return f.failed(err)
	}

	target := "/tune/" + f.TuneID
	*f = AddRecordingForm{TuneID: f.TuneID}
	return target, nil
}

func (f *AddRecordingForm) failed(err error) (string, error) {
	f.Err = err.Error()
	return "", err
}

func validateForm(form any) error {
	v := validate.Struct(form)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, v.Errors.One())
	}
	return nil
}

func optionalInt(s, label string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a whole number", shared.ErrInvalidInput, label)
	}
	return &n, nil
}
