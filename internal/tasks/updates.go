package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	EnrichRecordings Phase = iota
	LoadLibrary
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case EnrichRecordings:
		return "enrich_recordings"
	case LoadLibrary:
		return "load_library"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func enrichedUpdate(step, total int, recordingName string, ok bool) ProgressUpdate {
	msg := fmt.Sprintf("Fetched video for %s", recordingName)
	if !ok {
		msg = fmt.Sprintf("No video details for %s", recordingName)
	}
	return ProgressUpdate{Phase: EnrichRecordings, Step: step, Total: total, Message: msg, Data: ok}
}

func loadTuneUpdate(step, total int, tuneName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadLibrary,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading %s", tuneName),
	}
}

func writeExportUpdate(format, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %s export to %s", format, path),
		Data:    path,
	}
}
