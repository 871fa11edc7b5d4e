package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/tunebook/internal/formatter"
	"github.com/desertthunder/tunebook/internal/models"
)

var (
	_ list.Item = tuneItem{}
	_ list.Item = recordingItem{}
)

// tuneItem wraps [models.Tune] to implement [list.Item].
type tuneItem struct {
	tune *models.Tune
}

func (i tuneItem) FilterValue() string { return i.tune.Name() }
func (i tuneItem) Title() string       { return i.tune.Name() }
func (i tuneItem) Description() string {
	var parts []string
	if c := i.tune.Composer(); c != "" {
		parts = append(parts, c)
	}
	if y := i.tune.YearString(); y != "" {
		parts = append(parts, y)
	}
	if len(parts) == 0 {
		return "Trad."
	}
	return strings.Join(parts, " • ")
}

// recordingItem wraps [models.Recording] and its video, when one was found, to implement [list.Item].
type recordingItem struct {
	recording *models.Recording
	video     *models.VideoMetadata
}

func (i recordingItem) FilterValue() string { return i.recording.Name() }
func (i recordingItem) Title() string {
	if i.video != nil {
		return i.video.Title
	}
	return i.recording.Name()
}

func (i recordingItem) Description() string {
	desc := formatter.FormatRating(i.recording.Rating())
	switch {
	case i.video != nil:
		desc = fmt.Sprintf("%s • %s • %s", desc, i.video.ChannelTitle, formatter.FormatViews(i.video.ViewCount))
	case i.recording.URLString() != "":
		desc = fmt.Sprintf("%s • %s", desc, i.recording.URLString())
	}
	return desc
}
