package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/tasks"
)

// Export writes the logged in user's library to a file, reporting progress as it goes.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	state, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format: cmd.String("format"),
		Output: cmd.String("output"),
		Enrich: !cmd.Bool("no-enrich"),
		Locale: r.config.Library.Locale,
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.printProgress(update)
		}
	}()

	result, err := tasks.ExportLibrary(ctx, progress, r.tunes, r.recordings, r.enricher, r.identity(state), opts)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.logger.Debug("export finished", "path", result.Path, "tunes", result.Tunes, "recordings", result.Recordings)

	r.writePlainHeader("Export complete")
	r.writePlain("File:       %s\n", result.Path)
	r.writePlain("Tunes:      %d\n", result.Tunes)
	r.writePlain("Recordings: %d\n", result.Recordings)
	if opts.Enrich {
		r.writePlain("Videos:     %d found\n", result.Enriched)
	}
	return nil
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	if update.Total > 1 {
		r.writePlain("[%s %d/%d] %s\n", update.Phase, update.Step, update.Total, update.Message)
		return
	}
	r.writePlain("[%s] %s\n", update.Phase, update.Message)
}
