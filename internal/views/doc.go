// Package views holds the page-level state behind both the web server and the TUI.
//
// Each view depends only on the narrow repository interfaces declared here ([TuneRepository],
// [RecordingRepository]) plus a [VideoEnricher], so any storage or identity backend can sit behind it.
//
// # Tune Detail State Machine
//
//	Loading → Saved ⇄ Dirty → Deleted
//	   ↓
//	NotFound | Failed
//
// [TuneDetail.Edit] moves Saved to Dirty synchronously without touching the store. [TuneDetail.Save]
// returns to Saved on success and stays Dirty on failure. [TuneDetail.Close] detaches the view so
// enrichment results that arrive late are dropped.
//
// [RecordingDetail] follows the same protocol over name and notes.
//
// # Error Rendering
//
// Views never fail to render. Store and auth errors are kept as an inline message ([TuneDetail.Error]);
// enrichment failures are swallowed by the tasks package and only ever result in a plain link.
package views
