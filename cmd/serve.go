package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/server"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/web"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the web interface until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	handler, err := r.webHandler(cmd.Bool("secure-cookies"))
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	url := "http://" + addr
	r.logger.Info("serving web interface", "addr", addr, "auth", r.provider.Name())
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "url", url, "error", err)
		}
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down web interface")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// webHandler builds the router for the opened runner.
func (r *Runner) webHandler(secure bool) (http.Handler, error) {
	secret, err := r.sessionSecret()
	if err != nil {
		return nil, err
	}

	app, err := web.New(web.Options{
		Tunes:         r.tunes,
		Recordings:    r.recordings,
		Provider:      r.provider,
		Enricher:      r.enricher,
		Cookies:       server.NewCookieSessions(secret, r.config.Auth.SessionTTL(), secure),
		Logger:        r.logger,
		Locale:        r.config.Library.Locale,
		RedirectDelay: time.Duration(r.config.Server.RedirectDelayMS) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	handlers := []server.Handler{server.NewHealthHandler(r.db)}
	if m, ok := r.metrics.(*server.PrometheusMetrics); ok {
		handlers = append(handlers, m)
	}
	return app.Router(r.metrics, handlers...), nil
}

// sessionSecret returns the configured cookie secret or a random one that lasts until restart.
func (r *Runner) sessionSecret() ([]byte, error) {
	if s := r.config.Server.SessionSecret; s != "" {
		return []byte(s), nil
	}

	r.logger.Warn("no session secret configured; web sessions will not survive a restart")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}
