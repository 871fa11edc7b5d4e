package web

import (
	"errors"
	"net/http"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/server"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/views"
)

// errStatus maps an operation error to the status of the page that reports it.
func errStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrTuneNotFound), errors.Is(err, shared.ErrRecordingNotFound), errors.Is(err, shared.ErrInvalidID):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrNotConfirmed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorText prefers the view's own message and falls back to the failure that was returned.
func errorText(msg string, failure error) string {
	if msg == "" && failure != nil {
		return failure.Error()
	}
	return msg
}

// requireUser renders the login form and reports false when the request has no session.
func (a *App) requireUser(w http.ResponseWriter, r *http.Request) (auth.State, bool) {
	state := server.StateFrom(r.Context())
	if state.Authenticated() {
		return state, true
	}

	data := a.page(r, "Log in")
	data.List = &views.TuneList{LoginRequired: true}
	data.Error = "Log in to continue."
	a.render(w, http.StatusUnauthorized, "list", data)
	return state, false
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	state := server.StateFrom(r.Context())
	data := a.page(r, "")
	data.List = views.LoadTuneList(r.Context(), a.tunes, state, a.locale, a.logger)
	a.render(w, http.StatusOK, "list", data)
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	creds, err := a.provider.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		a.logger.Warn("login failed", "email", email, "error", err)
		data := a.page(r, "Log in")
		data.List = &views.TuneList{LoginRequired: true}
		data.Login = loginData{Email: email}
		data.Error = err.Error()
		a.render(w, errStatus(err), "list", data)
		return
	}

	if err := a.cookies.Save(w, r, creds.Token); err != nil {
		a.logger.Error("failed to save session cookie", "error", err)
		a.renderStatus(w, r, http.StatusInternalServerError, "Could not start your session.")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) signupForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "signup", a.page(r, "Sign up"))
}

func (a *App) signup(w http.ResponseWriter, r *http.Request) {
	email, password := r.PostFormValue("email"), r.PostFormValue("password")

	err := auth.ValidateCredentials(email, password)
	if err == nil {
		_, err = a.provider.Signup(r.Context(), email, password)
	}
	if err != nil {
		data := a.page(r, "Sign up")
		data.Login = loginData{Email: email}
		data.Error = err.Error()
		a.render(w, errStatus(err), "signup", data)
		return
	}

	a.renderRedirect(w, r, "Account created for "+email+". Log in to continue.", "/")
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	state := server.StateFrom(r.Context())
	if state.Token != "" {
		if err := a.provider.Logout(r.Context(), state.Token); err != nil {
			a.logger.Warn("provider logout failed", "error", err)
		}
	}
	if err := a.cookies.Clear(w, r); err != nil {
		a.logger.Warn("failed to clear session cookie", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) addTuneForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	data := a.page(r, "Add Tune")
	data.TuneForm = &views.AddTuneForm{}
	a.render(w, http.StatusOK, "add_tune", data)
}

func (a *App) addTune(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	form := &views.AddTuneForm{
		Name:     r.PostFormValue("name"),
		Composer: r.PostFormValue("composer"),
		Year:     r.PostFormValue("year"),
		Notes:    r.PostFormValue("notes"),
	}
	target, err := form.Submit(r.Context(), a.tunes, state)
	if err != nil {
		data := a.page(r, "Add Tune")
		data.TuneForm = form
		data.Error = form.Err
		a.render(w, errStatus(err), "add_tune", data)
		return
	}

	a.renderRedirect(w, r, "Tune added.", target)
}

// loadTune opens the tune named by the route. Pass a nil enricher on paths that never render videos.
func (a *App) loadTune(w http.ResponseWriter, r *http.Request, state auth.State, enricher views.VideoEnricher) (*views.TuneDetail, bool) {
	v := views.NewTuneDetail(a.tunes, a.recordings, enricher, state.UserID(), a.logger)
	switch v.Load(r.Context(), r.PathValue("id")) {
	case views.NotFound:
		a.renderStatus(w, r, http.StatusNotFound, "No tune found.")
		return nil, false
	case views.Failed:
		a.renderStatus(w, r, http.StatusInternalServerError, v.Error())
		return nil, false
	}
	return v, true
}

func (a *App) renderTune(w http.ResponseWriter, r *http.Request, status int, v *views.TuneDetail, notice string, failure error) {
	tune := v.Tune()
	page := &tunePage{ID: tune.ID(), Fields: v.Fields(), Dirty: v.Status() == views.Dirty}
	for _, rec := range v.Recordings() {
		row := recordingRow{Recording: rec}
		if meta, ok := v.Video(rec.ID()); ok {
			row.Video = meta
		}
		page.Recordings = append(page.Recordings, row)
	}

	data := a.page(r, tune.Name())
	data.Tune = page
	data.Error = errorText(v.Error(), failure)
	data.Notice = notice
	a.render(w, status, "tune", data)
}

func (a *App) showTune(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	v, ok := a.loadTune(w, r, state, a.enricher)
	if !ok {
		return
	}
	defer v.Close()
	a.renderTune(w, r, http.StatusOK, v, "", nil)
}

func (a *App) saveTune(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	v, ok := a.loadTune(w, r, state, a.enricher)
	if !ok {
		return
	}
	defer v.Close()

	if err := r.ParseForm(); err != nil {
		a.renderStatus(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}
	for _, f := range []struct {
		field views.TuneField
		key   string
	}{
		{views.TuneName, "name"},
		{views.TuneComposer, "composer"},
		{views.TuneYear, "year"},
		{views.TuneNotes, "notes"},
	} {
		vals, ok := r.PostForm[f.key]
		if !ok || len(vals) == 0 {
			continue
		}
		if err := v.Edit(f.field, vals[0]); err != nil {
			a.renderTune(w, r, errStatus(err), v, "", err)
			return
		}
	}

	if err := v.Save(r.Context()); err != nil {
		a.renderTune(w, r, errStatus(err), v, "", err)
		return
	}
	a.renderTune(w, r, http.StatusOK, v, "Saved.", nil)
}

func (a *App) deleteTune(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	v, ok := a.loadTune(w, r, state, nil)
	if !ok {
		return
	}
	defer v.Close()

	if err := v.Delete(r.Context(), r.PostFormValue("confirm") == "yes"); err != nil {
		a.renderTune(w, r, errStatus(err), v, "", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) addRecordingForm(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	a.renderRecordingForm(w, r, state, http.StatusOK, &views.AddRecordingForm{TuneID: r.PathValue("id")})
}

func (a *App) renderRecordingForm(w http.ResponseWriter, r *http.Request, state auth.State, status int, form *views.AddRecordingForm) {
	if !shared.IsValidID(form.TuneID) {
		a.renderStatus(w, r, http.StatusNotFound, "No tune found.")
		return
	}
	tune, err := a.tunes.GetForUser(r.Context(), state.UserID(), form.TuneID)
	if err != nil {
		if errStatus(err) == http.StatusNotFound {
			a.renderStatus(w, r, http.StatusNotFound, "No tune found.")
			return
		}
		a.logger.Error("failed to load tune", "tune_id", form.TuneID, "error", err)
		a.renderStatus(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	data := a.page(r, "Add Recording")
	data.ParentTune = tune
	data.RecordingForm = form
	data.Error = form.Err
	a.render(w, status, "add_recording", data)
}

func (a *App) addRecording(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	form := &views.AddRecordingForm{
		TuneID:    r.PathValue("id"),
		Name:      r.PostFormValue("name"),
		Notes:     r.PostFormValue("notes"),
		URL:       r.PostFormValue("url"),
		Rating:    r.PostFormValue("rating"),
		SortOrder: r.PostFormValue("sort_order"),
	}
	target, err := form.Submit(r.Context(), a.recordings, state)
	if err != nil {
		a.renderRecordingForm(w, r, state, errStatus(err), form)
		return
	}

	a.renderRedirect(w, r, "Recording added.", target)
}

func (a *App) loadRecording(w http.ResponseWriter, r *http.Request, state auth.State, enricher views.VideoEnricher) (*views.RecordingDetail, bool) {
	v := views.NewRecordingDetail(a.recordings, enricher, state.UserID(), a.logger)
	switch v.Load(r.Context(), r.PathValue("id")) {
	case views.NotFound:
		a.renderStatus(w, r, http.StatusNotFound, "No recording found.")
		return nil, false
	case views.Failed:
		a.renderStatus(w, r, http.StatusInternalServerError, v.Error())
		return nil, false
	}
	return v, true
}

func (a *App) renderRecording(w http.ResponseWriter, r *http.Request, status int, v *views.RecordingDetail, notice string, failure error) {
	rec := v.Recording()
	data := a.page(r, rec.Name())
	data.Recording = &recordingPage{
		ID:     rec.ID(),
		TuneID: rec.TuneID(),
		Fields: v.Fields(),
		Dirty:  v.Status() == views.Dirty,
		URL:    rec.URLString(),
		Rating: rec.Rating(),
		Video:  v.Video(),
	}
	if id := v.VideoID(); id != "" {
		data.Recording.EmbedURL = models.EmbedURL(id)
	}
	data.Error = errorText(v.Error(), failure)
	data.Notice = notice
	a.render(w, status, "recording", data)
}

func (a *App) showRecording(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	v, ok := a.loadRecording(w, r, state, a.enricher)
	if !ok {
		return
	}
	defer v.Close()
	a.renderRecording(w, r, http.StatusOK, v, "", nil)
}

func (a *App) saveRecording(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	v, ok := a.loadRecording(w, r, state, a.enricher)
	if !ok {
		return
	}
	defer v.Close()

	if err := r.ParseForm(); err != nil {
		a.renderStatus(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}
	for _, f := range []struct {
		field views.RecordingField
		key   string
	}{
		{views.RecordingName, "name"},
		{views.RecordingNotes, "notes"},
	} {
		vals, ok := r.PostForm[f.key]
		if !ok || len(vals) == 0 {
			continue
		}
		if err := v.Edit(f.field, vals[0]); err != nil {
			a.renderRecording(w, r, errStatus(err), v, "", err)
			return
		}
	}

	if err := v.Save(r.Context()); err != nil {
		a.renderRecording(w, r, errStatus(err), v, "", err)
		return
	}
	a.renderRecording(w, r, http.StatusOK, v, "Saved.", nil)
}

func (a *App) deleteRecording(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	v, ok := a.loadRecording(w, r, state, nil)
	if !ok {
		return
	}
	defer v.Close()

	tuneID, err := v.Delete(r.Context(), r.PostFormValue("confirm") == "yes")
	if err != nil {
		a.renderRecording(w, r, errStatus(err), v, "", err)
		return
	}
	http.Redirect(w, r, "/tune/"+tuneID, http.StatusSeeOther)
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request) {
	a.renderStatus(w, r, http.StatusNotFound, "Page not found.")
}
