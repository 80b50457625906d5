package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Device",
			items: []helpItem{
				{"s", "Start pipeline"},
				{"x", "Stop pipeline"},
				{"r", "Refresh (stop, clear, resume)"},
				{"a", "Simulate alert"},
			},
		},
		{
			title: "PTZ (hold to move)",
			items: []helpItem{
				{"arrows", "Pan/tilt"},
				{"home/pgup", "Up-left/up-right"},
				{"end/pgdn", "Down-left/down-right"},
				{"space", "Stop"},
				{"+/-", "Zoom in/out"},
				{"[/]", "Slower/faster"},
				{"c", "Camera profile"},
				{"mouse", "Press and hold pad buttons"},
			},
		},
		{
			title: "Logs",
			items: []helpItem{
				{"j/k", "Scroll down/up"},
				{"g/G", "Top/bottom (follow)"},
				{"ctrl+d/u", "Half page down/up"},
				{"D", "Device/diagnostics log"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 36)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(46)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
