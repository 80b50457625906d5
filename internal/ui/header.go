package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lookout/internal/state"
)

// pillLabel is the run-state badge text. A device that stopped answering
// shows as offline regardless of the last known run state.
func pillLabel(snap state.Snapshot) string {
	if snap.IsOffline() {
		return "offline"
	}
	return state.RunLabel(snap)
}

// renderHeader renders the status bar: logo, run pill, alert indicators,
// device address and PTZ speed.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	label := pillLabel(m.snapshot)
	parts := []string{
		bg.Render("lookout", styles.Logo),
		styles.Pill(label).Render(strings.ToUpper(label)),
	}

	if m.snapshot.Flash {
		parts = append(parts, styles.Strobe.Render("ALERT"))
	} else {
		parts = append(parts, bg.Render("alert", styles.FaintText))
	}
	if m.snapshot.Beep {
		parts = append(parts, bg.Render("♪", styles.WarningText.Bold(true)))
	} else {
		parts = append(parts, bg.Render("♪", styles.FaintText))
	}

	if m.deviceURL != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.deviceURL, 40), styles.MutedText))
	}
	parts = append(parts,
		bg.Render("speed", styles.FaintText)+bg.Space()+bg.Render(fmt.Sprintf("%d", m.speed), styles.Text))

	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("Retrying...", styles.WarningText.Bold(true)))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(1).
		Render(bg.Join(parts, sep))
}

// renderCommandBar renders the key hints. Busy controls show a spinner
// in place of their key.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	hints := []struct {
		key, label string
		control    state.Control
	}{
		{"s", "start", state.ControlStart},
		{"x", "stop", state.ControlStop},
		{"r", "refresh", state.ControlRefresh},
		{"a", "simulate", state.ControlSimulate},
		{"c", "ptz config", state.ControlPTZConfig},
		{"D", "diagnostics", ""},
		{"?", "help", ""},
		{"q", "quit", ""},
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		if h.control != "" && m.snapshot.IsBusy(h.control) {
			parts = append(parts,
				bg.Render(m.spinner.View(), styles.WarningText)+bg.Space()+bg.Render(h.label, styles.FaintText))
			continue
		}
		parts = append(parts,
			bg.Render("<"+h.key+">", styles.AccentText)+bg.Space()+bg.Render(h.label, styles.MutedText))
	}
	return bg.FillLine(bg.Space()+bg.Join(parts, "  "), m.width)
}
