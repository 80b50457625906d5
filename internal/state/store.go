package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/lookout/internal/device"
)

// Control identifies a user-facing trigger that can be busy.
type Control string

// Controls that carry a busy lock.
const (
	ControlStart     Control = "start"
	ControlStop      Control = "stop"
	ControlRefresh   Control = "refresh"
	ControlSimulate  Control = "simulate"
	ControlPTZConfig Control = "ptz-config"
)

// Snapshot represents the latest display state available to the UI.
type Snapshot struct {
	Running   bool
	HasStatus bool

	Logs       []string // last /logs payload, replaced wholesale
	Overlay    []string // UI-only lines, cleared by the next /logs replace
	Detections []device.Detection

	Flash  bool
	Beep   bool
	Pulses uint64

	Busy map[Control]bool

	LogVersion          uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the device has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// IsBusy reports whether control is currently disabled.
func (s Snapshot) IsBusy(c Control) bool {
	return s.Busy[c]
}

// LogLines returns the rendered log panel: device lines followed by overlay lines.
func (s Snapshot) LogLines() []string {
	if len(s.Overlay) == 0 {
		return s.Logs
	}
	out := make([]string, 0, len(s.Logs)+len(s.Overlay))
	out = append(out, s.Logs...)
	return append(out, s.Overlay...)
}

// Store coordinates concurrent updates to the snapshot. The zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetRunning overwrites the run state with the latest authoritative value.
func (s *Store) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Running = running
	s.snapshot.HasStatus = true
}

// ReplaceLogs replaces the log buffer and drops UI overlay lines.
func (s *Store) ReplaceLogs(lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Logs = cloneStrings(lines)
	s.snapshot.Overlay = nil
	s.snapshot.LogVersion++
}

// ReplaceDetections replaces the detection collection.
func (s *Store) ReplaceDetections(items []device.Detection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Detections = cloneDetections(items)
}

// AppendOverlay adds a UI-only line after the device log lines.
func (s *Store) AppendOverlay(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Overlay = append(s.snapshot.Overlay, line)
	s.snapshot.LogVersion++
}

// ClearBuffers empties logs, overlay and detections.
func (s *Store) ClearBuffers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Logs = nil
	s.snapshot.Overlay = nil
	s.snapshot.Detections = nil
	s.snapshot.LogVersion++
}

// RecordPulse switches both alert indicators on and counts the pulse.
func (s *Store) RecordPulse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Flash = true
	s.snapshot.Beep = true
	s.snapshot.Pulses++
}

// SetFlash sets the visual alert indicator.
func (s *Store) SetFlash(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Flash = on
}

// SetBeep sets the audible alert indicator.
func (s *Store) SetBeep(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Beep = on
}

// SetBusy marks a control as disabled (on) or enabled.
func (s *Store) SetBusy(c Control, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Busy == nil {
		s.snapshot.Busy = make(map[Control]bool)
	}
	if on {
		s.snapshot.Busy[c] = true
		return
	}
	delete(s.snapshot.Busy, c)
}

// TryAcquire marks c busy and returns true, or returns false when it already is.
func (s *Store) TryAcquire(c Control) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Busy[c] {
		return false
	}
	if s.snapshot.Busy == nil {
		s.snapshot.Busy = make(map[Control]bool)
	}
	s.snapshot.Busy[c] = true
	return true
}

// RecordPoll notes the outcome of a background poll. When err is non-nil the
// previous data is kept and only the failure bookkeeping changes.
func (s *Store) RecordPoll(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Logs = cloneStrings(s.snapshot.Logs)
	snap.Overlay = cloneStrings(s.snapshot.Overlay)
	snap.Detections = cloneDetections(s.snapshot.Detections)
	if len(s.snapshot.Busy) > 0 {
		snap.Busy = make(map[Control]bool, len(s.snapshot.Busy))
		for k, v := range s.snapshot.Busy {
			snap.Busy[k] = v
		}
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneStrings(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	dup := make([]string, len(lines))
	copy(dup, lines)
	return dup
}

func cloneDetections(items []device.Detection) []device.Detection {
	if len(items) == 0 {
		return nil
	}
	dup := make([]device.Detection, len(items))
	copy(dup, items)
	return dup
}
