package ui

import (
	"fmt"
	"strings"

	"github.com/five82/lookout/internal/state"
)

// renderDetections renders the detection list, newest first as the device
// returns them, clipped to height rows including the title.
func (m Model) renderDetections(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	items := state.FormatDetections(m.snapshot.Detections)
	title := bg.Render("Detections", styles.AccentText.Bold(true))
	if len(items) > 0 {
		title += bg.Space() + bg.Render(fmt.Sprintf("(%d)", len(items)), styles.MutedText)
	}

	lines := []string{bg.FillLine(bg.Space()+title, width)}
	switch {
	case len(items) == 0 && m.snapshot.IsOffline():
		lines = append(lines, bg.FillLine(bg.Space()+bg.Render("device offline", styles.DangerText), width))
	case len(items) == 0:
		lines = append(lines, bg.FillLine(bg.Space()+bg.Render("no detections", styles.FaintText), width))
	default:
		for _, item := range items {
			if len(lines) >= height {
				break
			}
			lines = append(lines, bg.FillLine(bg.Space()+bg.Render(truncate(item, width-2), styles.Text), width))
		}
	}
	for len(lines) < height {
		lines = append(lines, bg.FillLine("", width))
	}
	return strings.Join(lines[:height], "\n")
}
