package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/formatter"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/views"
)

// TunesList prints the logged in user's tunes sorted by name.
func (r *Runner) TunesList(ctx context.Context, cmd *cli.Command) error {
	state, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	list := views.LoadTuneList(ctx, r.tunes, state, r.config.Library.Locale, r.logger)

	if cmd.Bool("json") {
		out := make([]formatter.TuneExport, 0, list.Len())
		for _, t := range list.Tunes {
			out = append(out, formatter.NewTuneExport(t, nil))
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if list.Len() == 0 {
		return r.writePlain("You don't have any tunes yet. Add one with 'tunebook tunes add --name ...'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Tunes (%d)", list.Len()))
	for _, t := range list.Tunes {
		line := t.Name()
		if c := t.Composer(); c != "" {
			line += " • " + c
		}
		if y := t.YearString(); y != "" {
			line += " • " + y
		}
		r.writePlain("%s  %s\n", t.ID(), line)
	}
	return nil
}

// TunesAdd creates a tune from flags.
func (r *Runner) TunesAdd(ctx context.Context, cmd *cli.Command) error {
	state, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	form := &views.AddTuneForm{
		Name:     cmd.String("name"),
		Composer: cmd.String("composer"),
		Year:     cmd.String("year"),
		Notes:    cmd.String("notes"),
	}
	name := form.Name
	if _, err := form.Submit(ctx, r.tunes, state); err != nil {
		return err
	}

	r.logger.Debug("tune added", "name", name)
	return r.writePlain("✓ Tune added: %s\n", name)
}

// openTune loads a tune view for the id argument.
func (r *Runner) openTune(ctx context.Context, cmd *cli.Command) (*views.TuneDetail, error) {
	state, err := r.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return nil, fmt.Errorf("%w: tune id", shared.ErrMissingArgument)
	}

	v := views.NewTuneDetail(r.tunes, r.recordings, r.enricher, state.UserID(), r.logger)
	switch v.Load(ctx, id) {
	case views.NotFound:
		return nil, fmt.Errorf("%w: no tune found for %q", shared.ErrTuneNotFound, id)
	case views.Failed:
		return nil, errors.New(v.Error())
	}
	return v, nil
}

// TunesShow prints a tune, its recordings and their video details.
func (r *Runner) TunesShow(ctx context.Context, cmd *cli.Command) error {
	v, err := r.openTune(ctx, cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	tune := v.Tune()
	recs := v.Recordings()

	if cmd.Bool("json") {
		out := formatter.NewTuneExport(tune, recs)
		for i := range out.Recordings {
			if meta, ok := v.Video(out.Recordings[i].ID); ok {
				out.Recordings[i].VideoTitle = meta.Title
			}
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(tune.Name())
	r.writePlain("ID:        %s\n", tune.ID())
	r.writePlain("Composer:  %s\n", orDash(tune.Composer()))
	r.writePlain("Year:      %s\n", orDash(tune.YearString()))
	if notes := tune.Notes(); notes != "" {
		r.writePlainln("%s", notes)
	}

	r.writePlainln("Recordings (%d)", len(recs))
	if len(recs) == 0 {
		return r.writePlain("No recordings found for this tune.\n")
	}
	for _, rec := range recs {
		r.writePlain("%s  %s  %s\n", rec.ID(), formatter.FormatRating(rec.Rating()), rec.Name())
		if meta, ok := v.Video(rec.ID()); ok {
			r.writePlain("    ▶ %s • %s • %s\n", meta.Title, meta.ChannelTitle, formatter.FormatViews(meta.ViewCount))
		} else if u := rec.URLString(); u != "" {
			r.writePlain("    %s\n", u)
		}
	}
	return nil
}

// TunesEdit applies the flags that were set and saves the tune.
func (r *Runner) TunesEdit(ctx context.Context, cmd *cli.Command) error {
	v, err := r.openTune(ctx, cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	edited := false
	for _, f := range []struct {
		field views.TuneField
		flag  string
	}{
		{views.TuneName, "name"},
		{views.TuneComposer, "composer"},
		{views.TuneYear, "year"},
		{views.TuneNotes, "notes"},
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
		return fmt.Errorf("%w: nothing to change; pass --name, --composer, --year or --notes", shared.ErrMissingArgument)
	}

	if err := v.Save(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Saved %s\n", v.Tune().Name())
}

// TunesDelete removes a tune and its recordings once confirmed with --yes.
func (r *Runner) TunesDelete(ctx context.Context, cmd *cli.Command) error {
	v, err := r.openTune(ctx, cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	name := v.Tune().Name()
	if err := v.Delete(ctx, cmd.Bool("yes")); err != nil {
		if errors.Is(err, shared.ErrNotConfirmed) {
			return fmt.Errorf("%w: pass --yes to delete %q and all of its recordings", err, name)
		}
		return err
	}
	return r.writePlain("✓ Deleted %s\n", name)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
