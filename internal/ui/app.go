package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/devices"
	"github.com/sson6926/iotdash/internal/history"
	"github.com/sson6926/iotdash/internal/paging"
	"github.com/sson6926/iotdash/internal/poller"
	"github.com/sson6926/iotdash/internal/prefs"
	"github.com/sson6926/iotdash/internal/sensor"
)

// ViewID represents a top-level view.
type ViewID int

const (
	ViewDashboard ViewID = iota
	ViewSensors
	ViewHistory
	ViewVoice
)

var viewOrder = []ViewID{ViewDashboard, ViewSensors, ViewHistory, ViewVoice}

// String returns the name persisted in prefs.
func (v ViewID) String() string {
	switch v {
	case ViewSensors:
		return "sensors"
	case ViewHistory:
		return "history"
	case ViewVoice:
		return "voice"
	default:
		return "dashboard"
	}
}

// Title returns the label shown in the tab bar.
func (v ViewID) Title() string {
	switch v {
	case ViewSensors:
		return "Sensors"
	case ViewHistory:
		return "Device history"
	case ViewVoice:
		return "Voice history"
	default:
		return "Dashboard"
	}
}

// ParseView maps a prefs name back to a view, defaulting to the dashboard.
func ParseView(name string) ViewID {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range viewOrder {
		if v.String() == name {
			return v
		}
	}
	return ViewDashboard
}

// Backend is the remote API the views read from and write to.
type Backend interface {
	ListDevices(ctx context.Context) ([]api.Device, error)
	SetDeviceStatus(ctx context.Context, id api.ID, status api.Status) error
	LatestSensorData(ctx context.Context, n int) ([]api.SensorSample, error)
	DeviceHistory(ctx context.Context, page, size int) (api.Page[api.HistoryEntry], error)
	VoiceHistory(ctx context.Context, page, size int) (api.Page[api.VoiceCommand], error)
}

// Observer receives poll, toggle and page events, typically for metrics.
type Observer interface {
	poller.Observer
	devices.Observer
	history.Observer
}

// Options configures the UI.
type Options struct {
	Context         context.Context
	Backend         Backend
	Logger          *zap.Logger
	Observer        Observer
	APIBase         string
	PollInterval    time.Duration
	DashboardWindow int
	SensorWindow    int
	PageSize        int
	ThemeName       string
	InitialView     string
	PrefsPath       string
}

// dashboardState is owned by the mounted dashboard view.
type dashboardState struct {
	board    *devices.Board
	poller   *poller.Poller
	selected int

	devices devices.Snapshot
	window  sensor.Snapshot
}

// sensorState is owned by the mounted sensor view.
type sensorState struct {
	poller *poller.Poller
	window sensor.Snapshot
	table  table.Model
}

// pagedState is owned by a mounted history view.
type pagedState[T any] struct {
	list  *history.List[T]
	snap  history.Snapshot[T]
	table table.Model
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx             context.Context
	backend         Backend
	log             *zap.Logger
	observer        Observer
	apiBase         string
	pollInterval    time.Duration
	dashboardWindow int
	sensorWindow    int
	pageSize        int
	prefsPath       string

	// UI state
	theme    Theme
	keys     keyMap
	current  ViewID
	width    int
	height   int
	ready    bool
	showHelp bool
	spinner  spinner.Model
	notice   string

	// Mounted view; exactly one is non-nil after Init.
	dash    *dashboardState
	sensors *sensorState
	history *pagedState[api.HistoryEntry]
	voice   *pagedState[api.VoiceCommand]
}

// New creates a new Bubble Tea model. No view is mounted until Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = poller.DefaultInterval
	}

	dashboardWindow := opts.DashboardWindow
	if dashboardWindow <= 0 {
		dashboardWindow = sensor.DashboardWindow
	}
	sensorWindow := opts.SensorWindow
	if sensorWindow <= 0 {
		sensorWindow = sensor.SensorViewWindow
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = DefaultThemeName
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:             ctx,
		backend:         opts.Backend,
		log:             log,
		observer:        opts.Observer,
		apiBase:         opts.APIBase,
		pollInterval:    pollInterval,
		dashboardWindow: dashboardWindow,
		sensorWindow:    sensorWindow,
		pageSize:        pageSize,
		prefsPath:       prefsPath,
		theme:           GetTheme(themeName),
		keys:            DefaultKeyMap(),
		current:         ParseView(opts.InitialView),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.mount(m.current),
		m.spinner.Tick,
		tickCmd(DefaultUIInterval),
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeTables()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd(DefaultUIInterval)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case devicesLoadedMsg:
		if m.dash != nil && m.dash.board == msg.board {
			m.refresh()
		}
		return m, nil

	case toggleDoneMsg:
		if m.dash != nil && m.dash.board == msg.board {
			if msg.err != nil {
				m.notice = fmt.Sprintf("Could not switch %s %s: %s", orPlaceholder(msg.name), msg.target, api.Message(msg.err))
			}
			m.refresh()
		}
		return m, nil

	case pageLoadedMsg:
		m.refresh()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Close unmounts the active view, stopping its poller.
func (m *Model) Close() {
	m.unmount()
}

// handleKey processes keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unmount()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.resizeTables()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m, m.switchTo(m.neighbourView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.switchTo(m.neighbourView(-1))

	case key.Matches(msg, m.keys.ViewDashboard):
		return m, m.switchTo(ViewDashboard)
	case key.Matches(msg, m.keys.ViewSensors):
		return m, m.switchTo(ViewSensors)
	case key.Matches(msg, m.keys.ViewHistory):
		return m, m.switchTo(ViewHistory)
	case key.Matches(msg, m.keys.ViewVoice):
		return m, m.switchTo(ViewVoice)

	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	}

	switch m.current {
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewSensors:
		if m.sensors != nil {
			var cmd tea.Cmd
			m.sensors.table, cmd = m.sensors.table.Update(msg)
			return m, cmd
		}
	case ViewHistory:
		if m.history != nil {
			return m, handlePagedKey(m.ctx, m.keys, m.history, msg)
		}
	case ViewVoice:
		if m.voice != nil {
			return m, handlePagedKey(m.ctx, m.keys, m.voice, msg)
		}
	}
	return m, nil
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.dash
	if d == nil {
		return m, nil
	}
	count := len(d.devices.Devices)

	switch {
	case key.Matches(msg, m.keys.Up):
		if d.selected > 0 {
			d.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if d.selected < count-1 {
			d.selected++
		}
	case key.Matches(msg, m.keys.Toggle):
		if count == 0 {
			return m, nil
		}
		target := d.devices.Devices[d.selected]
		t, err := d.board.Begin(target.ID)
		if err != nil {
			// Unknown or already pending: nothing to do.
			return m, nil
		}
		m.notice = ""
		m.refresh()
		return m, commitCmd(m.ctx, d.board, t, target.Name)
	}
	return m, nil
}

// handlePagedKey moves relative to the list's live page, not the rendered
// copy, so quick repeated presses each take effect.
func handlePagedKey[T any](ctx context.Context, keys keyMap, s *pagedState[T], msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.NextPage):
		return pageCmd(ctx, s.list.Next)
	case key.Matches(msg, keys.PrevPage):
		return pageCmd(ctx, s.list.Prev)
	case key.Matches(msg, keys.FirstPage):
		return pageCmd(ctx, func(ctx context.Context) error { return s.list.GoTo(ctx, 1) })
	case key.Matches(msg, keys.LastPage):
		return pageCmd(ctx, s.list.Last)
	}
	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return cmd
}

func (m *Model) neighbourView(step int) ViewID {
	for i, v := range viewOrder {
		if v == m.current {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewDashboard
}

// switchTo unmounts the current view and mounts v.
func (m *Model) switchTo(v ViewID) tea.Cmd {
	if v == m.current {
		return nil
	}
	cmd := m.mount(v)
	m.savePrefs()
	return cmd
}

// mount creates the state owned by v and starts its background work. The
// previous view is unmounted first so at most one poller runs.
func (m *Model) mount(v ViewID) tea.Cmd {
	m.unmount()
	m.current = v
	m.notice = ""

	switch v {
	case ViewDashboard:
		board := devices.NewBoard(m.backend,
			devices.WithLogger(m.log.Named("devices")),
			devices.WithObserver(m.observer),
		)
		p := m.newPoller(v.String(), m.dashboardWindow)
		m.dash = &dashboardState{board: board, poller: p}
		p.Start(m.ctx)
		m.refresh()
		return loadDevicesCmd(m.ctx, board)

	case ViewSensors:
		p := m.newPoller(v.String(), m.sensorWindow)
		m.sensors = &sensorState{poller: p, table: m.newTable(sensorColumns(m.width))}
		p.Start(m.ctx)
		m.refresh()
		return nil

	case ViewHistory:
		list := history.NewList[api.HistoryEntry](v.String(), m.backend.DeviceHistory, m.pageSize, m.listOptions()...)
		m.history = &pagedState[api.HistoryEntry]{list: list, table: m.newTable(historyColumns(m.width))}
		m.refresh()
		return loadPageCmd(m.ctx, list)

	case ViewVoice:
		list := history.NewList[api.VoiceCommand](v.String(), m.backend.VoiceHistory, m.pageSize, m.listOptions()...)
		m.voice = &pagedState[api.VoiceCommand]{list: list, table: m.newTable(voiceColumns(m.width))}
		m.refresh()
		return loadPageCmd(m.ctx, list)
	}
	return nil
}

// unmount stops the current view's background work. In-flight responses
// land on state nobody renders any more and are discarded by its owner.
func (m *Model) unmount() {
	if m.dash != nil {
		m.dash.poller.Stop()
		m.dash = nil
	}
	if m.sensors != nil {
		m.sensors.poller.Stop()
		m.sensors = nil
	}
	if m.history != nil {
		m.history.list.Close()
		m.history = nil
	}
	if m.voice != nil {
		m.voice.list.Close()
		m.voice = nil
	}
}

func (m *Model) newPoller(view string, window int) *poller.Poller {
	return poller.New(view, m.backend, sensor.NewWindow(window),
		poller.WithInterval(m.pollInterval),
		poller.WithLogger(m.log.Named("poller")),
		poller.WithObserver(m.observer),
	)
}

func (m *Model) listOptions() []history.Option {
	return []history.Option{
		history.WithLogger(m.log.Named("history")),
		history.WithObserver(m.observer),
	}
}

// reload refetches whatever the current view shows.
func (m *Model) reload() tea.Cmd {
	switch {
	case m.dash != nil:
		return loadDevicesCmd(m.ctx, m.dash.board)
	case m.history != nil:
		return loadPageCmd(m.ctx, m.history.list)
	case m.voice != nil:
		return loadPageCmd(m.ctx, m.voice.list)
	}
	return nil
}

// refresh copies fresh snapshots of the mounted view's state.
func (m *Model) refresh() {
	switch {
	case m.dash != nil:
		m.dash.devices = m.dash.board.Snapshot()
		m.dash.window = m.dash.poller.Window().Snapshot()
		if n := len(m.dash.devices.Devices); m.dash.selected >= n {
			m.dash.selected = maxInt(0, n-1)
		}
	case m.sensors != nil:
		m.sensors.window = m.sensors.poller.Window().Snapshot()
		m.sensors.table.SetRows(sensorRows(m.sensors.window, readingRows))
	case m.history != nil:
		m.history.snap = m.history.list.Snapshot()
		m.history.table.SetRows(historyRows(m.history.snap.Items))
	case m.voice != nil:
		m.voice.snap = m.voice.list.Snapshot()
		m.voice.table.SetRows(voiceRows(m.voice.snap))
	}
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, LastView: m.current.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save prefs failed", zap.Error(err))
	}
}

// Messages

type tickMsg time.Time

type devicesLoadedMsg struct {
	board *devices.Board
	err   error
}

type toggleDoneMsg struct {
	board  *devices.Board
	name   string
	target api.Status
	err    error
}

type pageLoadedMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadDevicesCmd(ctx context.Context, board *devices.Board) tea.Cmd {
	return func() tea.Msg {
		return devicesLoadedMsg{board: board, err: board.Load(ctx)}
	}
}

func commitCmd(ctx context.Context, board *devices.Board, t *devices.Toggle, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, toggleTimeout)
		defer cancel()
		return toggleDoneMsg{board: board, name: name, target: t.Target, err: t.Commit(ctx)}
	}
}

func loadPageCmd[T any](ctx context.Context, list *history.List[T]) tea.Cmd {
	return pageCmd(ctx, list.Load)
}

func pageCmd(ctx context.Context, move func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return pageLoadedMsg{err: move(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// ends.
func Run(opts Options) error {
	if opts.Backend == nil {
		return errors.New("ui: backend is required")
	}
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
