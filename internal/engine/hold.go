package engine

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/device"
)

// HoldReleaseWindow is how long a key-driven hold survives without an
// auto-repeat before it is treated as released. Terminals wait roughly
// 500-660 ms before the first auto-repeat, so the window must be longer.
const HoldReleaseWindow = 700 * time.Millisecond

const holdQueueSize = 16

// Holder turns press/release input into PTZ start/stop commands. At most one
// direction is held; a stop is only sent for the direction that is down,
// except device.PTZStop which always sends a stop and never starts.
//
// Commands are queued and delivered in order by Run so a stop can never
// overtake its start.
type Holder struct {
	clock  clock.Clock
	window time.Duration
	logger zerolog.Logger
	queue  chan Command

	mu    sync.Mutex
	down  string
	timer *clock.Timer
	gen   uint64
}

// NewHolder builds a Holder. A zero window uses HoldReleaseWindow.
func NewHolder(clk clock.Clock, window time.Duration, logger zerolog.Logger) *Holder {
	if clk == nil {
		clk = clock.New()
	}
	if window <= 0 {
		window = HoldReleaseWindow
	}
	return &Holder{
		clock:  clk,
		window: window,
		logger: logger,
		queue:  make(chan Command, holdQueueSize),
	}
}

// Run delivers queued commands to dispatch until ctx is cancelled.
func (h *Holder) Run(ctx context.Context, dispatch func(context.Context, Command)) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.queue:
			dispatch(ctx, cmd)
		}
	}
}

// Held returns the code currently held, or "".
func (h *Holder) Held() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.down
}

// Press starts moving in code (mouse button down). Pressing a different
// direction releases the current one first.
func (h *Holder) Press(code string, speed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pressLocked(code, speed)
	h.stopTimerLocked()
}

// Repeat handles keyboard input: the first event starts the move, further
// auto-repeat events keep it alive. The hold is released once no repeat
// arrives within the release window.
func (h *Holder) Repeat(code string, speed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pressLocked(code, speed)
	if code == device.PTZStop {
		return
	}
	h.stopTimerLocked()
	h.gen++
	gen := h.gen
	h.timer = h.clock.AfterFunc(h.window, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.gen != gen {
			return
		}
		h.timer = nil
		h.releaseLocked(code)
	})
}

// Release stops code if it is the held direction (mouse button up or
// pointer leaving the button).
func (h *Holder) Release(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopTimerLocked()
	h.releaseLocked(code)
}

// ReleaseAll stops whatever is held.
func (h *Holder) ReleaseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopTimerLocked()
	if h.down != "" {
		h.releaseLocked(h.down)
	}
}

func (h *Holder) pressLocked(code string, speed int) {
	if code == device.PTZStop {
		h.down = ""
		h.stopTimerLocked()
		h.enqueue(Command{Kind: KindPTZStop, PTZ: device.PTZCommand{Code: device.PTZStop}})
		return
	}
	if h.down == code {
		return
	}
	if h.down != "" {
		h.enqueue(Command{Kind: KindPTZStop, PTZ: device.PTZCommand{Code: h.down}})
	}
	h.down = code
	h.enqueue(Command{Kind: KindPTZStart, PTZ: device.PTZCommand{Code: code, Speed: speed}})
}

func (h *Holder) releaseLocked(code string) {
	if code == "" || h.down != code {
		return
	}
	h.down = ""
	h.enqueue(Command{Kind: KindPTZStop, PTZ: device.PTZCommand{Code: code}})
}

func (h *Holder) stopTimerLocked() {
	h.gen++
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

func (h *Holder) enqueue(cmd Command) {
	select {
	case h.queue <- cmd:
	default:
		h.logger.Warn().Stringer("kind", cmd.Kind).Str("code", cmd.PTZ.Code).Msg("ptz queue full, command dropped")
	}
}
