package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/tasks"
	"github.com/desertthunder/tunebook/internal/ui"
)

// TUI launches the interactive terminal UI for browsing the library.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunebook-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.open(ctx); err != nil {
		return err
	}

	export := func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.ExportResult, error) {
		state := r.auth.Session().Get()
		return tasks.ExportLibrary(ctx, progress, r.tunes, r.recordings, r.enricher, r.identity(state), tasks.ExportOpts{
			Format: "json",
			Enrich: true,
			Locale: r.config.Library.Locale,
		})
	}

	model := ui.NewModel(ctx, ui.Options{
		Session:    r.auth.Session(),
		Tunes:      r.tunes,
		Recordings: r.recordings,
		Enricher:   r.enricher,
		Export:     export,
		Locale:     r.config.Library.Locale,
		Logger:     fileLogger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
