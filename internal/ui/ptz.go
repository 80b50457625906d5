package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/five82/lookout/internal/device"
)

type padAction int

const (
	padLabel padAction = iota // not clickable
	padMove
	padStop
	padZoom
	padSlower
	padFaster
)

// padButton is one cell of the PTZ pad in screen coordinates.
type padButton struct {
	label  string
	code   string
	action padAction
	x, y   int
	width  int
}

func (b padButton) contains(x, y int) bool {
	return y == b.y && x >= b.x && x < b.x+b.width
}

const (
	padButtonWidth = 8
	padZoomWidth   = 12
	padMargin      = 2
)

// padGrid is the 3x3 direction grid, row-major.
var padGrid = [3][3]struct{ label, code string }{
	{{"↖", device.PTZLeftUp}, {"↑", device.PTZUp}, {"↗", device.PTZRightUp}},
	{{"←", device.PTZLeft}, {"■ stop", device.PTZStop}, {"→", device.PTZRight}},
	{{"↙", device.PTZLeftDown}, {"↓", device.PTZDown}, {"↘", device.PTZRightDown}},
}

// padLayout places the pad buttons with (left, top) as the pad's title row.
// View and the mouse handler both use it, so hit-testing matches what is drawn.
func padLayout(left, top, speed int) []padButton {
	buttons := make([]padButton, 0, 14)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			cell := padGrid[row][col]
			action := padMove
			if cell.code == device.PTZStop {
				action = padStop
			}
			buttons = append(buttons, padButton{
				label:  cell.label,
				code:   cell.code,
				action: action,
				x:      left + padMargin + col*(padButtonWidth+1),
				y:      top + 1 + row,
				width:  padButtonWidth,
			})
		}
	}

	zoomY := top + 5
	buttons = append(buttons,
		padButton{label: "- wide", code: device.PTZZoomWide, action: padZoom, x: left + padMargin, y: zoomY, width: padZoomWidth},
		padButton{label: "+ tele", code: device.PTZZoomTele, action: padZoom, x: left + padMargin + padZoomWidth + 2, y: zoomY, width: padZoomWidth},
	)

	speedY := top + 6
	buttons = append(buttons,
		padButton{label: "slower", action: padSlower, x: left + padMargin, y: speedY, width: padButtonWidth},
		padButton{label: fmt.Sprintf("speed %d", speed), action: padLabel, x: left + padMargin + padButtonWidth + 1, y: speedY, width: padButtonWidth},
		padButton{label: "faster", action: padFaster, x: left + padMargin + 2*(padButtonWidth+1), y: speedY, width: padButtonWidth},
	)
	return buttons
}

// padHeight is the number of rows the pad occupies, title included.
const padHeight = 7

// padHit returns the clickable button under (x, y).
func padHit(buttons []padButton, x, y int) (padButton, bool) {
	return lo.Find(buttons, func(b padButton) bool {
		return b.action != padLabel && b.contains(x, y)
	})
}

// renderPad draws the pad laid out at (left, top) into a block width
// columns wide. held is the direction currently down, if any.
func (m Model) renderPad(left, top, width int, buttons []padButton, held string) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	title := "PTZ"
	if m.config != nil && strings.TrimSpace(m.config.PTZ.Host) != "" {
		title = "PTZ " + truncateMiddle(m.config.PTZ.Host, width-6)
	}
	lines := make([]string, padHeight)
	lines[0] = bg.FillLine(bg.Spaces(1)+bg.Render(title, styles.AccentText.Bold(true)), width)

	rows := lo.GroupBy(buttons, func(b padButton) int { return b.y })
	for i := 1; i < padHeight; i++ {
		row := rows[top+i]
		if len(row) == 0 {
			lines[i] = bg.FillLine("", width)
			continue
		}
		var b strings.Builder
		cursor := left
		for _, btn := range row {
			if gap := btn.x - cursor; gap > 0 {
				b.WriteString(bg.Spaces(gap))
			}
			b.WriteString(m.padButtonStyle(btn, held).Render(btn.label))
			cursor = btn.x + btn.width
		}
		lines[i] = bg.FillLine(b.String(), width)
	}
	return strings.Join(lines, "\n")
}

func (m Model) padButtonStyle(btn padButton, held string) lipgloss.Style {
	style := lipgloss.NewStyle().
		Width(btn.width).
		Align(lipgloss.Center).
		Background(lipgloss.Color(m.theme.SurfaceAlt)).
		Foreground(lipgloss.Color(m.theme.Text))
	switch {
	case btn.action == padLabel:
		return style.Background(lipgloss.Color(m.theme.Surface)).Foreground(lipgloss.Color(m.theme.Muted))
	case btn.action == padMove && btn.code == held:
		return style.Background(lipgloss.Color(m.theme.Accent)).Foreground(lipgloss.Color(m.theme.Background)).Bold(true)
	case btn.action == padStop:
		return style.Foreground(lipgloss.Color(m.theme.Danger)).Bold(true)
	default:
		return style
	}
}
