package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lookout/internal/logtail"
)

const (
	// diagnosticsTailLines is how much of the diagnostics log the D view shows.
	diagnosticsTailLines = 400
	// diagnosticsReloadTicks is how many UI ticks pass between diagnostics reloads.
	diagnosticsReloadTicks = 10
)

// logState tracks what the log viewport currently shows.
type logState struct {
	// renderedVersion is the snapshot LogVersion last written to the viewport.
	renderedVersion uint64
	rendered        bool

	diagnostics bool
	diagLines   []string
	diagErr     error
	diagTicks   int
}

type diagnosticsMsg struct {
	lines []string
	err   error
}

func readDiagnosticsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, diagnosticsTailLines)
		if err != nil {
			return diagnosticsMsg{err: err}
		}
		return diagnosticsMsg{lines: logtail.Humanize(lines)}
	}
}

// setLogContent replaces the viewport text. A viewport scrolled to the
// bottom (or one that could not scroll yet) stays pinned to the newest line;
// otherwise the reader's position is kept.
func setLogContent(vp *viewport.Model, content string) {
	anchored := vp.AtBottom() || vp.TotalLineCount() <= vp.Height
	vp.SetContent(content)
	if anchored {
		vp.GotoBottom()
	}
}

// syncLogs re-renders the log panel when its source changed.
func (m *Model) syncLogs(force bool) {
	if m.logState.diagnostics {
		setLogContent(&m.logViewport, m.renderLogLines(m.logState.diagLines, "diagnostics log is empty"))
		return
	}
	if !force && m.logState.rendered && m.logState.renderedVersion == m.snapshot.LogVersion {
		return
	}
	setLogContent(&m.logViewport, m.renderLogLines(m.snapshot.LogLines(), "waiting for device logs"))
	m.logState.renderedVersion = m.snapshot.LogVersion
	m.logState.rendered = true
}

func (m Model) renderLogLines(lines []string, empty string) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	if len(lines) == 0 {
		return styles.FaintText.Render(empty)
	}
	width := m.logViewport.Width
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = m.logLineStyle(styles, logtail.Classify(line)).Render(truncate(line, width))
	}
	return strings.Join(out, "\n")
}

func (m Model) logLineStyle(styles Styles, kind logtail.Kind) lipgloss.Style {
	switch kind {
	case logtail.KindError:
		return styles.DangerText
	case logtail.KindWarn:
		return styles.WarningText
	case logtail.KindUI:
		return styles.AccentText
	case logtail.KindInfo:
		return styles.InfoText
	case logtail.KindDebug:
		return styles.FaintText
	default:
		return styles.Text
	}
}

// toggleDiagnostics flips the log panel between device and diagnostics logs.
func (m *Model) toggleDiagnostics() tea.Cmd {
	m.logState.diagnostics = !m.logState.diagnostics
	m.logState.diagTicks = 0
	m.syncLogs(true)
	m.logViewport.GotoBottom()
	if !m.logState.diagnostics || m.logFile == "" {
		return nil
	}
	return readDiagnosticsCmd(m.logFile)
}

func (m *Model) handleDiagnostics(msg diagnosticsMsg) {
	m.logState.diagErr = msg.err
	if msg.err == nil {
		m.logState.diagLines = msg.lines
	}
	if m.logState.diagnostics {
		m.syncLogs(true)
	}
}

// handleLogScroll moves the log viewport. It reports whether msg was a scroll key.
func (m *Model) handleLogScroll(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
	default:
		return false
	}
	return true
}

// renderLogs renders the bordered log panel.
func (m Model) renderLogs(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	title := "Device log"
	if m.logState.diagnostics {
		title = "Diagnostics " + truncateMiddle(m.logFile, width-20)
	}
	titleLine := bg.Render(title, styles.AccentText.Bold(true))
	if m.logState.diagnostics && m.logState.diagErr != nil {
		titleLine += bg.Spaces(2) + bg.Render(m.logState.diagErr.Error(), styles.DangerText)
	} else if !m.logViewport.AtBottom() {
		titleLine += bg.Spaces(2) + bg.Render("scrolled (G to follow)", styles.WarningText)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		bg.FillLine(titleLine, width-2),
		m.logViewport.View(),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		BorderBackground(lipgloss.Color(m.theme.Background)).
		Background(lipgloss.Color(m.theme.FocusBg)).
		Width(width - 2).
		Height(height - 2).
		Render(body)
}
