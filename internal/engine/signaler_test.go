package engine

import (
	"testing"
	"time"
)

func TestSignaler_PulseSetsAndRevertsIndicators(t *testing.T) {
	h := newHarness(t)

	if !h.signaler.Pulse() {
		t.Fatalf("Pulse() = false, want true while active")
	}
	snap := h.store.Snapshot()
	if !snap.Flash || !snap.Beep || snap.Pulses != 1 {
		t.Fatalf("after pulse flash=%v beep=%v pulses=%d", snap.Flash, snap.Beep, snap.Pulses)
	}
	if got := h.cues.Reasons(); len(got) != 1 || got[0] != ReasonDetections {
		t.Fatalf("cues = %v, want [%s]", got, ReasonDetections)
	}

	h.clock.Add(PulseDuration)
	waitFor(t, "indicator revert", func() bool {
		s := h.store.Snapshot()
		return !s.Flash && !s.Beep
	})
}

func TestSignaler_PulseIsNoopWhileSuspended(t *testing.T) {
	h := newHarness(t)
	h.susp.Pause()

	if h.signaler.Pulse() {
		t.Fatalf("Pulse() = true, want false while paused")
	}
	snap := h.store.Snapshot()
	if snap.Flash || snap.Beep || snap.Pulses != 0 {
		t.Fatalf("paused pulse changed indicators: %+v", snap)
	}
	if got := h.cues.Reasons(); len(got) != 0 {
		t.Fatalf("cues = %v, want none", got)
	}
}

func TestSignaler_ForceBypassesSuspension(t *testing.T) {
	h := newHarness(t)
	h.susp.Pause()

	h.signaler.Force()
	snap := h.store.Snapshot()
	if !snap.Flash || !snap.Beep {
		t.Fatalf("Force did not light indicators")
	}
	if got := h.cues.Reasons(); len(got) != 1 || got[0] != ReasonSimulate {
		t.Fatalf("cues = %v, want [%s]", got, ReasonSimulate)
	}
}

func TestSignaler_RevertIsTimeBased(t *testing.T) {
	h := newHarness(t)

	h.signaler.Pulse()
	h.clock.Add(200 * time.Millisecond)
	h.signaler.Pulse()

	// The first pulse's revert still lands 260ms after it fired.
	h.clock.Add(60 * time.Millisecond)
	waitFor(t, "first revert", func() bool { return !h.store.Snapshot().Flash })

	if got := h.store.Snapshot().Pulses; got != 2 {
		t.Fatalf("Pulses = %d, want 2", got)
	}
}

func TestSignaler_Reset(t *testing.T) {
	h := newHarness(t)
	h.signaler.Pulse()
	h.signaler.Reset()
	snap := h.store.Snapshot()
	if snap.Flash || snap.Beep {
		t.Fatalf("Reset left indicators on")
	}
}
