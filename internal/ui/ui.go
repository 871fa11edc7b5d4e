package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/formatter"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/tasks"
	"github.com/desertthunder/tunebook/internal/views"
)

// ScreenState represents the current screen in the TUI.
type ScreenState int

const (
	LoginScreen ScreenState = iota
	ListScreen
	TuneScreen
	RecordingScreen
	ConfirmScreen
	ExportScreen
)

// ExportFunc writes the current user's library, reporting progress on the channel.
type ExportFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.ExportResult, error)

// Options holds the dependencies of a [Model].
type Options struct {
	Session    *auth.Session
	Tunes      views.TuneRepository
	Recordings views.RecordingRepository
	Enricher   views.VideoEnricher
	Export     ExportFunc
	Locale     string
	Logger     *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx   context.Context
	opts  Options
	state auth.State

	screen   ScreenState
	previous ScreenState
	width    int
	height   int
	loading  bool
	notice   string
	err      error

	tuneList      list.Model
	recordingList list.Model
	tune          *views.TuneDetail
	recording     *views.RecordingDetail

	sessionCh   chan auth.State
	unsubscribe func()

	progressChan chan tasks.ProgressUpdate
	exportDone   func() tea.Msg
	progress     tasks.ProgressUpdate
	result       *tasks.ExportResult

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Session == nil {
		opts.Session = auth.NewSession()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	opts.Logger = shared.WithLogger(opts.Logger, "component", "tui")

	m := &Model{
		ctx:           ctx,
		opts:          opts,
		state:         opts.Session.Get(),
		tuneList:      list.New(nil, list.NewDefaultDelegate(), 0, 0),
		recordingList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		sessionCh:     make(chan auth.State, 1),
		help:          help.New(),
		keys:          newKeyMap(),
	}
	m.tuneList.Title = "Tunes"
	m.recordingList.Title = "Recordings"

	m.unsubscribe = opts.Session.Subscribe(func(s auth.State) {
		// Only the latest state matters, so a pending one is replaced.
		select {
		case <-m.sessionCh:
		default:
		}
		select {
		case m.sessionCh <- s:
		default:
		}
	})

	if m.state.Authenticated() {
		m.screen = ListScreen
	}
	return m
}

// Close removes the session subscription and drops any open views.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.closeViews()
}

// Screen returns the current screen.
func (m *Model) Screen() ScreenState { return m.screen }

// Init loads the tune list when a user is logged in and starts listening for session changes.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForSession()}
	if m.state.Authenticated() {
		cmds = append(cmds, m.loadTunes())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tuneList.SetSize(msg.Width-4, msg.Height-8)
		m.recordingList.SetSize(msg.Width-4, max(msg.Height-16, 4))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && m.screen != ConfirmScreen && !m.filtering() {
			m.Close()
			return m, tea.Quit
		}
		switch m.screen {
		case LoginScreen:
			return m, nil
		case ListScreen:
			return m.handleListKeys(msg)
		case TuneScreen:
			return m.handleTuneKeys(msg)
		case RecordingScreen:
			return m.handleRecordingKeys(msg)
		case ConfirmScreen:
			return m.handleConfirmKeys(msg)
		case ExportScreen:
			return m.handleExportKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionChanged:
		m.state = msg.data.(auth.State)
		m.closeViews()
		m.err = nil
		if !m.state.Authenticated() {
			m.screen = LoginScreen
			m.tuneList.SetItems(nil)
			return m, m.waitForSession()
		}
		m.screen = ListScreen
		return m, tea.Batch(m.waitForSession(), m.loadTunes())

	case MsgTunesLoaded:
		tunes := msg.data.(*views.TuneList)
		if tunes.LoginRequired || tunes.User == nil || tunes.User.ID != m.state.UserID() {
			return m, nil
		}
		m.loading = false
		items := make([]list.Item, len(tunes.Tunes))
		for i, t := range tunes.Tunes {
			items[i] = tuneItem{tune: t}
		}
		return m, m.tuneList.SetItems(items)

	case MsgTuneLoaded:
		data := msg.data.(struct {
			view   *views.TuneDetail
			status views.Status
		})
		if data.view != m.tune {
			return m, nil
		}
		m.loading = false
		if !data.status.Ready() {
			m.err = fmt.Errorf("%s", loadFailure(data.status, data.view.Error(), "tune"))
			m.tune.Close()
			m.tune = nil
			m.screen = ListScreen
			return m, nil
		}
		m.screen = TuneScreen
		return m, m.recordingList.SetItems(recordingItems(data.view))

	case MsgRecordingLoaded:
		data := msg.data.(struct {
			view   *views.RecordingDetail
			status views.Status
		})
		if data.view != m.recording {
			return m, nil
		}
		m.loading = false
		if !data.status.Ready() {
			m.err = fmt.Errorf("%s", loadFailure(data.status, data.view.Error(), "recording"))
			m.recording.Close()
			m.recording = nil
			return m, nil
		}
		m.screen = RecordingScreen
		return m, nil

	case MsgDeleted:
		data := msg.data.(struct {
			tuneID string
			err    error
		})
		m.loading = false
		if data.err != nil {
			m.err = data.err
			m.screen = m.previous
			return m, nil
		}
		if m.recording != nil {
			m.recording.Close()
			m.recording = nil
			m.notice = "Recording deleted."
			m.screen = TuneScreen
			return m, m.openTune(data.tuneID)
		}
		if m.tune != nil {
			m.tune.Close()
			m.tune = nil
		}
		m.notice = "Tune deleted."
		m.screen = ListScreen
		return m, m.loadTunes()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		data := msg.data.(struct {
			result *tasks.ExportResult
			err    error
		})
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.loading = false
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current screen.
func (m *Model) View() string {
	switch m.screen {
	case LoginScreen:
		return m.renderLogin()
	case ListScreen:
		return m.renderList()
	case TuneScreen:
		return m.renderTune()
	case RecordingScreen:
		return m.renderRecording()
	case ConfirmScreen:
		return m.renderConfirm()
	case ExportScreen:
		return m.renderExport()
	default:
		return ""
	}
}

func (m *Model) filtering() bool {
	switch m.screen {
	case ListScreen:
		return m.tuneList.FilterState() == list.Filtering
	case TuneScreen:
		return m.recordingList.FilterState() == list.Filtering
	}
	return false
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering() {
		var cmd tea.Cmd
		m.tuneList, cmd = m.tuneList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.tuneList.SelectedItem().(tuneItem); ok {
			m.clearStatus()
			return m, m.openTune(item.tune.ID())
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.clearStatus()
		return m, m.loadTunes()
	case key.Matches(msg, m.keys.export):
		if m.opts.Export == nil {
			m.err = fmt.Errorf("%w: export is not configured", shared.ErrServiceUnavailable)
			return m, nil
		}
		m.clearStatus()
		m.screen = ExportScreen
		return m, m.startExport()
	}

	var cmd tea.Cmd
	m.tuneList, cmd = m.tuneList.Update(msg)
	return m, cmd
}

func (m *Model) handleTuneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering() {
		var cmd tea.Cmd
		m.recordingList, cmd = m.recordingList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.clearStatus()
		m.tune.Close()
		m.tune = nil
		m.screen = ListScreen
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.recordingList.SelectedItem().(recordingItem); ok {
			m.clearStatus()
			return m, m.openRecording(item.recording.ID())
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.clearStatus()
		return m, m.openTune(m.tune.Tune().ID())
	case key.Matches(msg, m.keys.remove):
		m.clearStatus()
		m.previous = TuneScreen
		m.screen = ConfirmScreen
		return m, nil
	}

	var cmd tea.Cmd
	m.recordingList, cmd = m.recordingList.Update(msg)
	return m, cmd
}

func (m *Model) handleRecordingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.clearStatus()
		m.recording.Close()
		m.recording = nil
		m.screen = TuneScreen
		return m, nil
	case key.Matches(msg, m.keys.remove):
		m.clearStatus()
		m.previous = RecordingScreen
		m.screen = ConfirmScreen
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.screen = m.previous
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.loading = true
		return m, m.deleteOpen()
	}
	return m, nil
}

func (m *Model) handleExportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.progressChan != nil {
		return m, nil
	}
	if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.enter) {
		m.result = nil
		m.err = nil
		m.screen = ListScreen
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ListScreen:
		m.tuneList, cmd = m.tuneList.Update(msg)
	case TuneScreen:
		m.recordingList, cmd = m.recordingList.Update(msg)
	}
	return m, cmd
}

func (m *Model) clearStatus() {
	m.err = nil
	m.notice = ""
}

func (m *Model) closeViews() {
	if m.recording != nil {
		m.recording.Close()
		m.recording = nil
	}
	if m.tune != nil {
		m.tune.Close()
		m.tune = nil
	}
}

func (m *Model) waitForSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		select {
		case s := <-ch:
			return sessionChangedMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) loadTunes() tea.Cmd {
	m.loading = true
	ctx, state, opts := m.ctx, m.state, m.opts
	return func() tea.Msg {
		return tunesLoadedMsg(views.LoadTuneList(ctx, opts.Tunes, state, opts.Locale, opts.Logger))
	}
}

// openTune replaces the open tune view with a fresh one and loads it. Results for a replaced view are
// dropped when they arrive.
func (m *Model) openTune(id string) tea.Cmd {
	if m.tune != nil {
		m.tune.Close()
	}
	view := views.NewTuneDetail(m.opts.Tunes, m.opts.Recordings, m.opts.Enricher, m.state.UserID(), m.opts.Logger)
	m.tune = view
	m.loading = true

	ctx := m.ctx
	return func() tea.Msg {
		return tuneLoadedMsg(view, view.Load(ctx, id))
	}
}

func (m *Model) openRecording(id string) tea.Cmd {
	if m.recording != nil {
		m.recording.Close()
	}
	view := views.NewRecordingDetail(m.opts.Recordings, m.opts.Enricher, m.state.UserID(), m.opts.Logger)
	m.recording = view
	m.loading = true

	ctx := m.ctx
	return func() tea.Msg {
		return recordingLoadedMsg(view, view.Load(ctx, id))
	}
}

func (m *Model) deleteOpen() tea.Cmd {
	ctx := m.ctx
	if rec := m.recording; rec != nil && m.previous == RecordingScreen {
		return func() tea.Msg {
			tuneID, err := rec.Delete(ctx, true)
			return deletedMsg(tuneID, err)
		}
	}

	tune := m.tune
	return func() tea.Msg {
		return deletedMsg("", tune.Delete(ctx, true))
	}
}

func (m *Model) startExport() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	m.progressChan = progress
	m.progress = tasks.ProgressUpdate{}
	m.result = nil
	m.loading = true

	type outcome struct {
		result *tasks.ExportResult
		err    error
	}
	done := make(chan outcome, 1)

	ctx, export := m.ctx, m.opts.Export
	go func() {
		result, err := export(ctx, progress)
		done <- outcome{result, err}
		close(progress)
	}()

	m.exportDone = func() tea.Msg {
		o := <-done
		return exportCompleteMsg(o.result, o.err)
	}
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, finish := m.progressChan, m.exportDone
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return finish()
		}
		return progressUpdateMsg(update)
	}
}

func recordingItems(v *views.TuneDetail) []list.Item {
	recs := v.Recordings()
	items := make([]list.Item, len(recs))
	for i, rec := range recs {
		video, _ := v.Video(rec.ID())
		items[i] = recordingItem{recording: rec, video: video}
	}
	return items
}

func loadFailure(status views.Status, msg, what string) string {
	if status == views.NotFound {
		return fmt.Sprintf("No %s found.", what)
	}
	if msg == "" {
		return fmt.Sprintf("Could not load %s.", what)
	}
	return msg
}

func (m *Model) statusLine() string {
	switch {
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	case m.loading:
		return styles.help.Render("Loading...") + "\n"
	case m.notice != "":
		return styles.ok.Render(m.notice) + "\n"
	}
	return ""
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("♪ Tunes")
	body := styles.warn.Render("You are not logged in.") + "\n\nRun `tunebook login` in another terminal; this screen updates once the session changes."
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.export, m.keys.quit}
	if len(m.tuneList.Items()) == 0 && !m.loading {
		return fmt.Sprintf("%s\n%sYou don't have any tunes yet. Add one with `tunebook tunes add`.\n\n%s",
			styles.title.Render("Tunes"), m.statusLine(), m.help.ShortHelpView(helpKeys))
	}
	return fmt.Sprintf("%s%s\n\n%s", m.statusLine(), m.tuneList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTune() string {
	if m.tune == nil || m.tune.Tune() == nil {
		return m.statusLine()
	}
	fields := m.tune.Fields()

	var b strings.Builder
	b.WriteString(styles.title.Render(fields.Name))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	fmt.Fprintf(&b, "%s%s\n", styles.field.Render("Composer"), orDash(fields.Composer))
	fmt.Fprintf(&b, "%s%s\n", styles.field.Render("Year"), orDash(fields.Year))
	if fields.Notes != "" {
		fmt.Fprintf(&b, "%s%s\n", styles.field.Render("Notes"), fields.Notes)
	}
	b.WriteString("\n")

	if len(m.recordingList.Items()) == 0 {
		b.WriteString(styles.help.Render("No recordings found for this tune."))
	} else {
		b.WriteString(m.recordingList.View())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.remove, m.keys.refresh, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRecording() string {
	if m.recording == nil || m.recording.Recording() == nil {
		return m.statusLine()
	}
	rec := m.recording.Recording()

	var b strings.Builder
	b.WriteString(styles.title.Render(rec.Name()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	fmt.Fprintf(&b, "%s%s\n", styles.field.Render("Rating"), formatter.FormatRating(rec.Rating()))
	fmt.Fprintf(&b, "%s%s\n", styles.field.Render("URL"), orDash(rec.URLString()))
	if video := m.recording.Video(); video != nil {
		fmt.Fprintf(&b, "%s%s\n", styles.field.Render("Video"), video.Title)
		fmt.Fprintf(&b, "%s%s • %s\n", styles.field.Render("Channel"), video.ChannelTitle, formatter.FormatViews(video.ViewCount))
	}
	if id := m.recording.VideoID(); id != "" {
		fmt.Fprintf(&b, "%s%s\n", styles.field.Render("Watch"), models.EmbedURL(id))
	}
	if notes := m.recording.Fields().Notes; notes != "" {
		fmt.Fprintf(&b, "\n%s\n", notes)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.remove, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	var title string
	if m.previous == RecordingScreen && m.recording != nil && m.recording.Recording() != nil {
		title = fmt.Sprintf("Delete recording '%s'?", m.recording.Recording().Name())
	} else if m.tune != nil && m.tune.Tune() != nil {
		title = fmt.Sprintf("Delete tune '%s' and all of its recordings? This cannot be undone.", m.tune.Tune().Name())
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", styles.warn.Render(title), m.statusLine(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Library")

	if m.progressChan != nil {
		var phase string
		switch m.progress.Phase {
		case tasks.LoadLibrary:
			phase = fmt.Sprintf("Loading tunes (%d/%d)", m.progress.Step, m.progress.Total)
		case tasks.EnrichRecordings:
			phase = fmt.Sprintf("Fetching videos (%d/%d)", m.progress.Step, m.progress.Total)
		case tasks.WriteExport:
			phase = "Writing export..."
		default:
			phase = "Processing..."
		}
		return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s", title, styles.err.Render(fmt.Sprintf("Export failed: %v", m.err)), m.help.ShortHelpView(helpKeys))
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", title, m.help.ShortHelpView(helpKeys))
	}

	info := fmt.Sprintf("Tunes: %d\nRecordings: %d\nVideos: %d\nFile: %s",
		m.result.Tunes, m.result.Recordings, m.result.Enriched, m.result.Path)
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, styles.ok.Render("✓ Export complete"), info, m.help.ShortHelpView(helpKeys))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
