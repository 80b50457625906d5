package engine

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/five82/lookout/internal/state"
)

// PulseDuration is how long the flash and beep indicators stay on.
const PulseDuration = 260 * time.Millisecond

// Pulse reasons passed to cues.
const (
	ReasonDetections = "detections"
	ReasonSimulate   = "simulate"
)

// Cue is an external effect fired once per alert pulse (terminal bell,
// relay publish). Implementations must not block.
type Cue interface {
	Alert(reason string)
}

// CueFunc adapts a function to Cue.
type CueFunc func(reason string)

// Alert calls f(reason).
func (f CueFunc) Alert(reason string) { f(reason) }

// Signaler drives the transient alert indicators in the store.
type Signaler struct {
	store    *state.Store
	susp     *Suspension
	clock    clock.Clock
	cues     []Cue
	duration time.Duration
}

// NewSignaler wires a signaler to the store and suspension flag.
func NewSignaler(store *state.Store, susp *Suspension, clk clock.Clock, cues ...Cue) *Signaler {
	if clk == nil {
		clk = clock.New()
	}
	return &Signaler{
		store:    store,
		susp:     susp,
		clock:    clk,
		cues:     cues,
		duration: PulseDuration,
	}
}

// Pulse fires one alert unless suspended. It reports whether it fired.
func (s *Signaler) Pulse() bool {
	if s.susp != nil && s.susp.Paused() {
		return false
	}
	s.fire(ReasonDetections)
	return true
}

// Force fires one alert regardless of the suspension flag.
func (s *Signaler) Force() {
	s.fire(ReasonSimulate)
}

// Reset switches both indicators off immediately.
func (s *Signaler) Reset() {
	s.store.SetFlash(false)
	s.store.SetBeep(false)
}

// fire turns both indicators on and schedules independent reverts. A revert
// is not extended by later pulses; it always lands duration after its own pulse.
func (s *Signaler) fire(reason string) {
	s.store.RecordPulse()
	for _, cue := range s.cues {
		if cue != nil {
			cue.Alert(reason)
		}
	}
	s.clock.AfterFunc(s.duration, func() { s.store.SetFlash(false) })
	s.clock.AfterFunc(s.duration, func() { s.store.SetBeep(false) })
}
