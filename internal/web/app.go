package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/formatter"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/server"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/views"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{"list", "signup", "add_tune", "tune", "add_recording", "recording", "redirect", "status"}

// Options configures an [App].
type Options struct {
	Tunes         views.TuneRepository
	Recordings    views.RecordingRepository
	Provider      auth.SessionProvider
	Enricher      views.VideoEnricher
	Cookies       *server.CookieSessions
	Logger        *log.Logger
	Locale        string
	RedirectDelay time.Duration
}

// App is the web front end.
type App struct {
	tunes         views.TuneRepository
	recordings    views.RecordingRepository
	provider      auth.SessionProvider
	enricher      views.VideoEnricher
	cookies       *server.CookieSessions
	logger        *log.Logger
	locale        string
	redirectDelay time.Duration
	pages         map[string]*template.Template
}

// New parses the embedded templates and creates an [App].
func New(opts Options) (*App, error) {
	if opts.Tunes == nil || opts.Recordings == nil || opts.Provider == nil || opts.Cookies == nil {
		return nil, fmt.Errorf("%w: web app needs repositories, a session provider and a cookie store", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RedirectDelay < 0 {
		opts.RedirectDelay = 0
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &App{
		tunes:         opts.Tunes,
		recordings:    opts.Recordings,
		provider:      opts.Provider,
		enricher:      opts.Enricher,
		cookies:       opts.Cookies,
		logger:        shared.WithLogger(opts.Logger, "component", "web"),
		locale:        opts.Locale,
		redirectDelay: opts.RedirectDelay,
		pages:         pages,
	}, nil
}

var funcs = template.FuncMap{
	"rating": formatter.FormatRating,
	"views":  formatter.FormatViews,
	"thumbnail": func(v *models.VideoMetadata) *models.Thumbnail {
		if v == nil {
			return nil
		}
		if th, ok := v.Thumbnail(); ok {
			return &th
		}
		return nil
	},
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Router builds the full HTTP handler. Operational handlers such as health and metrics are registered
// ahead of compression and session resolution.
func (a *App) Router(metrics server.Metrics, handlers ...server.Handler) *server.BasicRouter {
	r := server.NewBasicRouter()
	r.Use(server.Recover(a.logger), server.Logging(a.logger), server.Instrument(metrics))
	for _, h := range handlers {
		r.Handler(h)
	}

	r.Use(server.Compress(), server.Authenticate(a.provider, a.cookies, a.logger))
	a.Register(r)
	return r
}

// Register adds the page routes to r.
func (a *App) Register(r server.Router) {
	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.home))
	r.Handle(http.MethodPost, "/login", http.HandlerFunc(a.login))
	r.Handle(http.MethodGet, "/signup", http.HandlerFunc(a.signupForm))
	r.Handle(http.MethodPost, "/signup", http.HandlerFunc(a.signup))
	r.Handle(http.MethodPost, "/logout", http.HandlerFunc(a.logout))
	r.Handle(http.MethodGet, "/add-tune", http.HandlerFunc(a.addTuneForm))
	r.Handle(http.MethodPost, "/add-tune", http.HandlerFunc(a.addTune))
	r.Handle(http.MethodGet, "/tune/{id}", http.HandlerFunc(a.showTune))
	r.Handle(http.MethodPost, "/tune/{id}", http.HandlerFunc(a.saveTune))
	r.Handle(http.MethodPost, "/tune/{id}/delete", http.HandlerFunc(a.deleteTune))
	r.Handle(http.MethodGet, "/tune/{id}/add-recording", http.HandlerFunc(a.addRecordingForm))
	r.Handle(http.MethodPost, "/tune/{id}/add-recording", http.HandlerFunc(a.addRecording))
	r.Handle(http.MethodGet, "/recording/{id}", http.HandlerFunc(a.showRecording))
	r.Handle(http.MethodPost, "/recording/{id}", http.HandlerFunc(a.saveRecording))
	r.Handle(http.MethodPost, "/recording/{id}/delete", http.HandlerFunc(a.deleteRecording))
	r.Handle("", "/", http.HandlerFunc(a.notFound))
}

type loginData struct {
	Email string
}

type redirect struct {
	URL   string
	Delay time.Duration
}

// Meta renders the refresh tag that sends the browser on after the delay.
func (r *redirect) Meta() template.HTML {
	secs := int(math.Ceil(r.Delay.Seconds()))
	return template.HTML(fmt.Sprintf(`<meta http-equiv="refresh" content="%d;url=%s">`, secs, template.HTMLEscapeString(r.URL)))
}

type recordingRow struct {
	Recording *models.Recording
	Video     *models.VideoMetadata
}

type tunePage struct {
	ID         string
	Fields     views.TuneFields
	Dirty      bool
	Recordings []recordingRow
}

type recordingPage struct {
	ID       string
	TuneID   string
	Fields   views.RecordingFields
	Dirty    bool
	URL      string
	Rating   *int
	EmbedURL string
	Video    *models.VideoMetadata
}

type pageData struct {
	Title         string
	User          *models.Identity
	Error         string
	Notice        string
	Login         loginData
	List          *views.TuneList
	Tune          *tunePage
	Recording     *recordingPage
	TuneForm      *views.AddTuneForm
	RecordingForm *views.AddRecordingForm
	ParentTune    *models.Tune
	Redirect      *redirect
}

func (a *App) page(r *http.Request, title string) *pageData {
	return &pageData{Title: title, User: server.StateFrom(r.Context()).User}
}

func (a *App) render(w http.ResponseWriter, status int, name string, data *pageData) {
	tmpl, ok := a.pages[name]
	if !ok {
		a.logger.Error("unknown page", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		a.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *App) renderRedirect(w http.ResponseWriter, r *http.Request, notice, to string) {
	data := a.page(r, "Redirecting")
	data.Notice = notice
	data.Redirect = &redirect{URL: to, Delay: a.redirectDelay}
	a.render(w, http.StatusOK, "redirect", data)
}

func (a *App) renderStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := a.page(r, http.StatusText(status))
	data.Error = msg
	a.render(w, status, "status", data)
}
