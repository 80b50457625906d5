package ui

import (
	"io"
	"sync"
)

// Bell rings the terminal bell on every alert pulse. It writes to its own
// stream (usually stderr) so the BEL byte lands between renderer frames.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell returns a Bell writing to w. A nil w yields a silent bell.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Alert implements engine.Cue.
func (b *Bell) Alert(string) {
	if b == nil || b.w == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.w, "\a")
}
