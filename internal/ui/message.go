package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/tasks"
	"github.com/desertthunder/tunebook/internal/views"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionChanged MsgKind = iota
	MsgTunesLoaded
	MsgTuneLoaded
	MsgRecordingLoaded
	MsgDeleted
	MsgProgressUpdate
	MsgExportComplete
)

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg(state auth.State) Msg {
	return Msg{kind: MsgSessionChanged, data: state}
}

// tunesLoadedMsg is the constructor for [MsgTunesLoaded]
func tunesLoadedMsg(tunes *views.TuneList) Msg {
	return Msg{kind: MsgTunesLoaded, data: tunes}
}

// tuneLoadedMsg is the constructor for [MsgTuneLoaded]
func tuneLoadedMsg(view *views.TuneDetail, status views.Status) Msg {
	return Msg{
		kind: MsgTuneLoaded,
		data: struct {
			view   *views.TuneDetail
			status views.Status
		}{view, status},
	}
}

// recordingLoadedMsg is the constructor for [MsgRecordingLoaded]
func recordingLoadedMsg(view *views.RecordingDetail, status views.Status) Msg {
	return Msg{
		kind: MsgRecordingLoaded,
		data: struct {
			view   *views.RecordingDetail
			status views.Status
		}{view, status},
	}
}

// deletedMsg is the constructor for [MsgDeleted]. tuneID is the tune to return to, or "" for the list.
func deletedMsg(tuneID string, err error) Msg {
	return Msg{
		kind: MsgDeleted,
		data: struct {
			tuneID string
			err    error
		}{tuneID, err},
	}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.ExportResult, err error) Msg {
	return Msg{
		kind: MsgExportComplete,
		data: struct {
			result *tasks.ExportResult
			err    error
		}{result, err},
	}
}
