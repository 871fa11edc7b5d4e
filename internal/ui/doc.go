// Package ui implements an interactive terminal browser for the tune library using bubbletea's Elm
// architecture.
//
// The TUI moves between a handful of screens:
//  1. [ListScreen] : the user's tunes, sorted by name
//  2. [TuneScreen] : one tune's fields and its recordings with video details
//  3. [RecordingScreen] : one recording with its notes, rating and video
//  4. [ConfirmScreen] : confirm deleting the open tune or recording
//  5. [ExportScreen] : progress of a library export, then its result
//
// [LoginScreen] is shown while the process session is logged out. The [Model] subscribes to the
// [auth.Session] and returns to it as soon as the session is cleared.
//
// Screen data is loaded through the views package on command goroutines. Results that arrive after
// the user has navigated away are dropped. Export progress flows through a channel, read one update
// per command, so rendering never blocks.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, y/n, r, x, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
