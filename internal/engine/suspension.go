package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Suspension is the single pause flag gating poll side effects and alert
// pulses. Readers sample it lock-free; writers are serialised so a deferred
// resume can be dropped when a newer Pause or Resume lands first.
type Suspension struct {
	clock clock.Clock

	mu     sync.Mutex
	gen    uint64
	paused atomic.Bool
}

// NewSuspension returns an active (not paused) suspension cell.
func NewSuspension(clk clock.Clock) *Suspension {
	if clk == nil {
		clk = clock.New()
	}
	return &Suspension{clock: clk}
}

// Paused reports the current flag.
func (s *Suspension) Paused() bool {
	return s.paused.Load()
}

// Pause sets the flag immediately and cancels any pending ResumeAfter.
func (s *Suspension) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.paused.Store(true)
}

// Resume clears the flag immediately and cancels any pending ResumeAfter.
func (s *Suspension) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.paused.Store(false)
}

// ResumeAfter clears the flag once d has elapsed, then calls then (if non-nil).
// The resume is dropped when Pause, Resume or another ResumeAfter happens in
// between; then is not called in that case.
func (s *Suspension) ResumeAfter(d time.Duration, then func()) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.paused.Store(false)
		s.mu.Unlock()
		if then != nil {
			then()
		}
	})
}
