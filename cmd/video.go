package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/formatter"
	"github.com/desertthunder/tunebook/internal/services"
	"github.com/desertthunder/tunebook/internal/shared"
)

// Video resolves a URL to a video id and looks up its metadata.
//
// No login is needed; only the enrichment stack is opened.
func (r *Runner) Video(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	id, ok := services.ExtractVideoID(url)
	if !ok {
		return fmt.Errorf("%w: no YouTube video id in %q", shared.ErrInvalidArgument, url)
	}

	if err := r.openEnricher(ctx); err != nil {
		return err
	}

	meta, found := r.enricher.Lookup(ctx, id)
	if cmd.Bool("json") {
		if !found {
			return r.writeJSON(map[string]string{"video_id": id}, cmd.Bool("pretty"))
		}
		return r.writeJSON(meta, cmd.Bool("pretty"))
	}

	r.writePlain("Video ID: %s\n", id)
	if !found {
		if !r.enricher.Enabled() {
			return r.writePlain("Video details are unavailable: no YouTube API key is configured.\n")
		}
		return r.writePlain("No video details found.\n")
	}

	r.writePlain("Title:    %s\n", meta.Title)
	r.writePlain("Channel:  %s\n", meta.ChannelTitle)
	r.writePlain("Views:    %s\n", formatter.FormatViews(meta.ViewCount))
	if meta.Duration != "" {
		r.writePlain("Duration: %s\n", meta.Duration)
	}
	if th, ok := meta.Thumbnail(); ok {
		r.writePlain("Thumb:    %s\n", th.URL)
	}
	return r.writePlain("Embed:    %s\n", meta.EmbedURL())
}
