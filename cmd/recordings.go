package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/formatter"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/views"
)

// recordingOutput is the JSON form of a recording with its video.
type recordingOutput struct {
	formatter.RecordingExport
	TuneID   string `json:"tune_id"`
	EmbedURL string `json:"embed_url,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Views    uint64 `json:"views,omitempty"`
}

// RecordingsAdd attaches a recording to a tune.
func (r *Runner) RecordingsAdd(ctx context.Context, cmd *cli.Command) error {
	state, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	tuneID := cmd.StringArg("tune-id")
	if tuneID == "" {
		return fmt.Errorf("%w: tune id", shared.ErrMissingArgument)
	}

	form := &views.AddRecordingForm{
		TuneID:    tuneID,
		Name:      cmd.String("name"),
		URL:       cmd.String("url"),
		Rating:    cmd.String("rating"),
		SortOrder: cmd.String("sort-order"),
		Notes:     cmd.String("notes"),
	}
	name := form.Name
	if _, err := form.Submit(ctx, r.recordings, state); err != nil {
		return err
	}
	return r.writePlain("✓ Recording added: %s\n", name)
}

func (r *Runner) openRecording(ctx context.Context, cmd *cli.Command) (*views.RecordingDetail, error) {
	state, err := r.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return nil, fmt.Errorf("%w: recording id", shared.ErrMissingArgument)
	}

	v := views.NewRecordingDetail(r.recordings, r.enricher, state.UserID(), r.logger)
	switch v.Load(ctx, id) {
	case views.NotFound:
		return nil, fmt.Errorf("%w: no recording found for %q", shared.ErrRecordingNotFound, id)
	case views.Failed:
		return nil, errors.New(v.Error())
	}
	return v, nil
}

// RecordingsShow prints a recording with its video details.
func (r *Runner) RecordingsShow(ctx context.Context, cmd *cli.Command) error {
	v, err := r.openRecording(ctx, cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	rec := v.Recording()
	video := v.Video()

	if cmd.Bool("json") {
		out := recordingOutput{
			RecordingExport: formatter.RecordingExport{
				ID:        rec.ID(),
				Name:      rec.Name(),
				Notes:     rec.Notes(),
				URL:       rec.URLString(),
				Rating:    rec.Rating(),
				SortOrder: rec.SortOrder(),
			},
			TuneID: rec.TuneID(),
		}
		if id := v.VideoID(); id != "" {
			out.EmbedURL = models.EmbedURL(id)
		}
		if video != nil {
			out.VideoTitle = video.Title
			out.Channel = video.ChannelTitle
			out.Views = video.ViewCount
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(rec.Name())
	r.writePlain("ID:      %s\n", rec.ID())
	r.writePlain("Tune:    %s\n", rec.TuneID())
	r.writePlain("Rating:  %s\n", formatter.FormatRating(rec.Rating()))
	r.writePlain("URL:     %s\n", orDash(rec.URLString()))
	if video != nil {
		r.writePlain("Video:   %s\n", video.Title)
		r.writePlain("Channel: %s • %s\n", video.ChannelTitle, formatter.FormatViews(video.ViewCount))
	}
	if id := v.VideoID(); id != "" {
		r.writePlain("Embed:   %s\n", models.EmbedURL(id))
	}
	if notes := rec.Notes(); notes != "" {
		r.writePlainln("%s", notes)
	}
	return nil
}

// RecordingsEdit applies the flags that were set and saves the recording.
func (r *Runner) RecordingsEdit(ctx context.Context, cmd *cli.Command) error {
	v, err := r.openRecording(ctx, cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	edited := false
	for _, f := range []struct {
		field views.RecordingField
		flag  string
	}{
		{views.RecordingName, "name"},
		{views.RecordingNotes, "notes"},
	} {
		if !cmd.IsSet(f.flag) {
			continue
		}
		if err := v.Edit(f.field, cmd.String(f.flag)); err != nil {
			return err
		}
		edited = true
	}
	if !edited {
		return fmt.Errorf("%w: nothing to change; pass --name or --notes", shared.ErrMissingArgument)
	}

	if err := v.Save(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Saved %s\n", v.Recording().Name())
}

// RecordingsDelete removes a recording once confirmed with --yes.
func (r *Runner) RecordingsDelete(ctx context.Context, cmd *cli.Command) error {
	v, err := r.openRecording(ctx, cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	name := v.Recording().Name()
	tuneID, err := v.Delete(ctx, cmd.Bool("yes"))
	if err != nil {
		if errors.Is(err, shared.ErrNotConfirmed) {
			return fmt.Errorf("%w: pass --yes to delete %q", err, name)
		}
		return err
	}
	return r.writePlain("✓ Deleted %s from tune %s\n", name, tuneID)
}
