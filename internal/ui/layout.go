package ui

import "time"

// Layout dimensions.
const (
	// SideWidth is the width of the right column (detections and PTZ pad).
	SideWidth = 30

	// MinSideLayoutWidth is the terminal width below which the right column is hidden.
	MinSideLayoutWidth = 72

	// chromeHeight is the header plus command bar.
	chromeHeight = 2
)

// Timing constants.
const (
	// UITick is how often the UI re-reads the store snapshot.
	UITick = 100 * time.Millisecond
)

// bodyLayout splits the area below the header into the log panel and the
// right column. sideX is -1 when the column is hidden.
type bodyLayout struct {
	top        int
	height     int
	logWidth   int
	sideX      int
	padTop     int
	detections int // rows available to the detections list
}

func computeLayout(width, height int) bodyLayout {
	l := bodyLayout{
		top:    chromeHeight,
		height: height - chromeHeight,
		sideX:  -1,
	}
	if l.height < 0 {
		l.height = 0
	}
	l.logWidth = width
	if width >= MinSideLayoutWidth && l.height >= padHeight+2 {
		l.logWidth = width - SideWidth
		l.sideX = l.logWidth
		l.padTop = l.top + l.height - padHeight
		l.detections = l.height - padHeight
	}
	return l
}
