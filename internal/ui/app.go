package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/config"
	"github.com/five82/lookout/internal/device"
	"github.com/five82/lookout/internal/engine"
	"github.com/five82/lookout/internal/prefs"
	"github.com/five82/lookout/internal/state"
)

// Dispatcher executes a user command. It reports false when the command was
// dropped because its control is busy.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd engine.Command) bool
}

// PTZHolder turns press/release input into PTZ start/stop commands.
type PTZHolder interface {
	Press(code string, speed int)
	Repeat(code string, speed int)
	Release(code string)
	ReleaseAll()
	Held() string
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Dispatcher Dispatcher
	Holder     PTZHolder
	Store      *state.Store
	Config     *config.Config
	Logger     zerolog.Logger
	ThemeName  string
	PrefsPath  string
	Speed      int
	LogFile    string
	DeviceURL  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	dispatcher Dispatcher
	holder     PTZHolder
	store      *state.Store
	config     *config.Config
	logger     zerolog.Logger
	prefsPath  string
	logFile    string
	deviceURL  string
	keys       keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	snapshot state.Snapshot

	// PTZ state
	speed   int
	pressed string // direction held by the mouse

	spinner     spinner.Model
	logViewport viewport.Model
	logState    logState

	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = defaultTheme().Name
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	speed := opts.Speed
	if speed == 0 && opts.Config != nil {
		speed = opts.Config.PTZ.Speed
	}
	if speed == 0 {
		speed = engine.DefaultPTZSpeed
	}

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	return Model{
		ctx:         ctx,
		dispatcher:  opts.Dispatcher,
		holder:      opts.Holder,
		store:       opts.Store,
		config:      opts.Config,
		logger:      opts.Logger,
		prefsPath:   prefsPath,
		logFile:     opts.LogFile,
		deviceURL:   opts.DeviceURL,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		speed:       config.ClampSpeed(speed),
		spinner:     spin,
		logViewport: viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(UITick),
		m.spinner.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.syncLogs(false)
		return m, nil

	case diagnosticsMsg:
		m.handleDiagnostics(msg)
		return m, nil

	case dispatchedMsg:
		if !msg.accepted {
			m.logger.Debug().Stringer("kind", msg.kind).Msg("command dropped, control busy")
		}
		return m, nil

	case submitProfileMsg:
		return m, m.dispatch(engine.Command{Kind: engine.KindPTZConfig, Profile: msg.profile})

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m *Model) resize() {
	l := computeLayout(m.width, m.height)
	m.logViewport.Width = max(l.logWidth-2, 0)
	m.logViewport.Height = max(l.height-3, 0) // border and title row
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.syncLogs(true)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.holder != nil {
			m.holder.ReleaseAll()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
		m.syncLogs(true)
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Diagnostics):
		return m, m.toggleDiagnostics()

	case key.Matches(msg, m.keys.Start):
		return m, m.dispatch(engine.Command{Kind: engine.KindStart})

	case key.Matches(msg, m.keys.Stop):
		return m, m.dispatch(engine.Command{Kind: engine.KindStop})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.dispatch(engine.Command{Kind: engine.KindRefresh})

	case key.Matches(msg, m.keys.Simulate):
		return m, m.dispatch(engine.Command{Kind: engine.KindSimulate})

	case key.Matches(msg, m.keys.PTZConfig):
		var profile config.PTZConfig
		if m.config != nil {
			profile = m.config.PTZ
		}
		m.modal = newPTZForm(profile)
		return m, nil

	case key.Matches(msg, m.keys.ZoomIn):
		return m, m.zoom(device.PTZZoomTele)

	case key.Matches(msg, m.keys.ZoomOut):
		return m, m.zoom(device.PTZZoomWide)

	case key.Matches(msg, m.keys.Slower):
		m.adjustSpeed(-1)
		return m, nil

	case key.Matches(msg, m.keys.Faster):
		m.adjustSpeed(1)
		return m, nil
	}

	if code, ok := m.keys.moveCode(msg); ok {
		if m.holder != nil {
			m.holder.Repeat(code, m.speed)
		}
		return m, nil
	}

	m.handleLogScroll(msg)
	return m, nil
}

// handleMouse drives the PTZ pad: press starts a move, release or leaving
// the button stops it. The wheel scrolls the log panel.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.modal != nil {
		return m, nil
	}

	l := computeLayout(m.width, m.height)
	var buttons []padButton
	if l.sideX >= 0 {
		buttons = padLayout(l.sideX, l.padTop, m.speed)
	}
	btn, hit := padHit(buttons, msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			if msg.X < l.logWidth {
				var cmd tea.Cmd
				m.logViewport, cmd = m.logViewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if msg.Button != tea.MouseButtonLeft || !hit {
			return m, nil
		}
		return m.pressPad(btn)

	case tea.MouseActionRelease:
		m.releasePad()

	case tea.MouseActionMotion:
		if m.pressed != "" && (!hit || btn.code != m.pressed) {
			m.releasePad()
		}
	}
	return m, nil
}

func (m Model) pressPad(btn padButton) (tea.Model, tea.Cmd) {
	switch btn.action {
	case padMove:
		m.pressed = btn.code
		if m.holder != nil {
			m.holder.Press(btn.code, m.speed)
		}
	case padStop:
		m.pressed = ""
		if m.holder != nil {
			m.holder.Press(device.PTZStop, 0)
		}
	case padZoom:
		return m, m.zoom(btn.code)
	case padSlower:
		m.adjustSpeed(-1)
	case padFaster:
		m.adjustSpeed(1)
	}
	return m, nil
}

func (m *Model) releasePad() {
	if m.pressed == "" {
		return
	}
	if m.holder != nil {
		m.holder.Release(m.pressed)
	}
	m.pressed = ""
}

func (m Model) zoom(code string) tea.Cmd {
	return m.dispatch(engine.Command{
		Kind: engine.KindPTZZoom,
		PTZ:  device.PTZCommand{Code: code, Speed: m.speed},
	})
}

func (m *Model) adjustSpeed(delta int) {
	next := config.ClampSpeed(m.speed + delta)
	if next == m.speed {
		return
	}
	m.speed = next
	m.savePrefs()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, PTZSpeed: m.speed}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs failed")
	}
}

// dispatch runs cmd off the update loop.
func (m Model) dispatch(cmd engine.Command) tea.Cmd {
	if m.dispatcher == nil {
		return nil
	}
	ctx, d := m.ctx, m.dispatcher
	return func() tea.Msg {
		return dispatchedMsg{kind: cmd.Kind, accepted: d.Dispatch(ctx, cmd)}
	}
}

// handleTick processes the UI tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	if m.logState.diagnostics && m.logFile != "" {
		m.logState.diagTicks++
		if m.logState.diagTicks >= diagnosticsReloadTicks {
			m.logState.diagTicks = 0
			cmds = append(cmds, readDiagnosticsCmd(m.logFile))
		}
	}

	cmds = append(cmds, tickCmd(UITick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderBody())

	return b.String()
}

func (m Model) renderBody() string {
	l := computeLayout(m.width, m.height)
	if l.height < 3 {
		return ""
	}
	logs := m.renderLogs(l.logWidth, l.height)
	if l.sideX < 0 {
		return logs
	}

	held := m.pressed
	if held == "" && m.holder != nil {
		held = m.holder.Held()
	}
	side := lipgloss.JoinVertical(lipgloss.Left,
		m.renderDetections(SideWidth, l.detections),
		m.renderPad(l.sideX, l.padTop, SideWidth, padLayout(l.sideX, l.padTop, m.speed), held),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, logs, side)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type dispatchedMsg struct {
	kind     engine.Kind
	accepted bool
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or
// opts.Context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
