package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/repositories"
	"github.com/desertthunder/tunebook/internal/server"
	"github.com/desertthunder/tunebook/internal/services"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, identity provider and enrichment stack are opened on first use so commands such as
// setup work before a database exists.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	password   func(prompt string) (string, error)

	db         *sql.DB
	ownsDB     bool
	tunes      *repositories.TuneRepository
	recordings *repositories.RecordingRepository
	users      *repositories.UserRepository
	sessions   *repositories.SessionRepository
	provider   auth.SessionProvider
	store      *auth.FileStore
	auth       *auth.Manager
	videos     services.VideoService
	enricher   *tasks.Enricher
	metrics    server.Metrics
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB               // Opened from the config when nil
	Provider   auth.SessionProvider  // Built from the config when nil
	Store      *auth.FileStore       // Defaults to [auth.DefaultSessionPath]
	Videos     services.VideoService // Built from the config when nil
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Password   func(prompt string) (string, error) // Prompts on the terminal when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Store == nil {
		opts.Store = auth.NewFileStore(auth.DefaultSessionPath())
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		password:   opts.Password,
		db:         opts.DB,
		provider:   opts.Provider,
		store:      opts.Store,
		videos:     opts.Videos,
		metrics:    server.NewMetrics(opts.Config.Metrics.Enabled),
	}
	if r.password == nil {
		r.password = r.promptPassword
	}
	return r
}

// SetLogger replaces the logger, e.g. to keep the TUI's terminal clean.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// open connects the database and builds the repositories, identity provider and enrichment stack,
// then restores the persisted CLI session. It is a no-op after the first call.
func (r *Runner) open(ctx context.Context) error {
	if r.auth != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return err
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		r.db = db
		r.ownsDB = true
	}
	if err := shared.RunMigrations(r.db); err != nil {
		return err
	}

	r.tunes = repositories.NewTuneRepository(r.db)
	r.recordings = repositories.NewRecordingRepository(r.db)
	r.users = repositories.NewUserRepository(r.db)
	r.sessions = repositories.NewSessionRepository(r.db)

	if r.provider == nil {
		provider, err := auth.NewProvider(r.config.Auth, r.users, r.sessions)
		if err != nil {
			return err
		}
		r.provider = provider
	}

	if err := r.openEnricher(ctx); err != nil {
		return err
	}

	r.auth = auth.NewManager(r.provider, auth.NewSession(), r.store, r.logger)
	if _, err := r.auth.Restore(ctx); err != nil {
		r.logger.Warn("could not restore session", "error", err)
	}
	return nil
}

// openEnricher builds the video lookup stack without touching the database.
func (r *Runner) openEnricher(ctx context.Context) error {
	if r.enricher != nil {
		return nil
	}

	yt := r.config.YouTube
	if r.videos == nil {
		svc, err := services.NewYouTubeService(ctx, services.YouTubeOptions{
			APIKey:  yt.APIKey,
			BaseURL: yt.BaseURL,
			Timeout: yt.Timeout(),
			Logger:  r.logger,
		})
		if err != nil {
			return err
		}
		r.videos = svc
	}

	r.enricher = tasks.NewEnricher(r.videos, tasks.EnrichOpts{
		NumWorkers: yt.Workers,
		RateLimit:  yt.RateLimit,
		Cache:      tasks.NewMetadataCache(yt.CacheSizeMB, yt.CacheTTL()),
		Metrics:    r.metrics,
		Logger:     r.logger,
	})
	return nil
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownsDB {
		return r.db.Close()
	}
	return nil
}

// requireUser opens the runner and returns the logged in identity.
func (r *Runner) requireUser(ctx context.Context) (auth.State, error) {
	if err := r.open(ctx); err != nil {
		return auth.State{}, err
	}

	state := r.auth.Session().Get()
	if !state.Authenticated() {
		return state, fmt.Errorf("%w: run 'tunebook login' first", shared.ErrNotAuthenticated)
	}
	return state, nil
}

func (r *Runner) identity(state auth.State) models.Identity {
	if state.User == nil {
		return models.Identity{}
	}
	return *state.User
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, signupCommand, loginCommand, logoutCommand, whoamiCommand,
		tunesCommand, recordingsCommand, videoCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// promptPassword reads a password without echo when stdin is a terminal, or a line from input otherwise.
func (r *Runner) promptPassword(prompt string) (string, error) {
	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.writePlain("%s", prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		r.writePlain("\n")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// credentials resolves the email argument and the password flag, prompting for the password when unset.
func (r *Runner) credentials(cmd *cli.Command) (string, string, error) {
	email := cmd.StringArg("email")
	if email == "" {
		return "", "", fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = r.password("Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
