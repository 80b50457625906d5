package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/device"
)

func drain(h *Holder) []Command {
	var out []Command
	for {
		select {
		case cmd := <-h.queue:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

func describe(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind.String() + ":" + c.PTZ.Code
	}
	return out
}

func assertCommands(t *testing.T, got []Command, want ...string) {
	t.Helper()
	desc := describe(got)
	if len(desc) != len(want) {
		t.Fatalf("commands = %v, want %v", desc, want)
	}
	for i := range want {
		if desc[i] != want[i] {
			t.Fatalf("commands = %v, want %v", desc, want)
		}
	}
}

func TestHolder_PressRelease(t *testing.T) {
	h := NewHolder(clock.NewMock(), 0, zerolog.Nop())

	h.Press(device.PTZUp, 4)
	h.Press(device.PTZUp, 4)
	if h.Held() != device.PTZUp {
		t.Fatalf("Held = %q, want Up", h.Held())
	}
	h.Release(device.PTZUp)
	h.Release(device.PTZUp)

	cmds := drain(h)
	assertCommands(t, cmds, "ptz-start:Up", "ptz-stop:Up")
	if cmds[0].PTZ.Speed != 4 {
		t.Fatalf("start speed = %d, want 4", cmds[0].PTZ.Speed)
	}
}

func TestHolder_ReleaseWithoutPressSendsNothing(t *testing.T) {
	h := NewHolder(clock.NewMock(), 0, zerolog.Nop())
	h.Release(device.PTZLeft)
	h.ReleaseAll()
	assertCommands(t, drain(h))
}

func TestHolder_SwitchDirectionStopsPrevious(t *testing.T) {
	h := NewHolder(clock.NewMock(), 0, zerolog.Nop())
	h.Press(device.PTZLeft, 3)
	h.Press(device.PTZRight, 3)
	h.Release(device.PTZLeft)
	h.ReleaseAll()

	assertCommands(t, drain(h), "ptz-start:Left", "ptz-stop:Left", "ptz-start:Right", "ptz-stop:Right")
}

func TestHolder_StopCodeNeverStarts(t *testing.T) {
	h := NewHolder(clock.NewMock(), 0, zerolog.Nop())
	h.Press(device.PTZStop, 3)
	h.Repeat(device.PTZStop, 3)
	h.Release(device.PTZStop)

	assertCommands(t, drain(h), "ptz-stop:Stop", "ptz-stop:Stop")
	if h.Held() != "" {
		t.Fatalf("Held = %q, want none", h.Held())
	}
}

func TestHolder_RepeatReleasesAfterWindow(t *testing.T) {
	mock := clock.NewMock()
	h := NewHolder(mock, 0, zerolog.Nop())

	h.Repeat(device.PTZDown, 2)
	mock.Add(300 * time.Millisecond)
	h.Repeat(device.PTZDown, 2)
	mock.Add(300 * time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if h.Held() != device.PTZDown {
		t.Fatalf("hold released while repeats kept arriving")
	}

	mock.Add(HoldReleaseWindow)
	waitFor(t, "window release", func() bool { return h.Held() == "" })

	assertCommands(t, drain(h), "ptz-start:Down", "ptz-stop:Down")
}

func TestHolder_SurvivesTerminalInitialRepeatDelay(t *testing.T) {
	mock := clock.NewMock()
	h := NewHolder(mock, 0, zerolog.Nop())

	// The first auto-repeat of a held key arrives after the terminal's
	// initial delay, which is longer than the gap between later repeats.
	h.Repeat(device.PTZLeft, 3)
	mock.Add(660 * time.Millisecond)
	h.Repeat(device.PTZLeft, 3)
	mock.Add(40 * time.Millisecond)
	h.Repeat(device.PTZLeft, 3)
	time.Sleep(5 * time.Millisecond)

	if h.Held() != device.PTZLeft {
		t.Fatalf("Held = %q, want Left across the initial repeat delay", h.Held())
	}
	assertCommands(t, drain(h), "ptz-start:Left")
}

func TestHolder_RunDeliversInOrder(t *testing.T) {
	h := NewHolder(clock.NewMock(), 0, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []Command
	go h.Run(ctx, func(_ context.Context, cmd Command) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, cmd)
	})

	h.Press(device.PTZRightUp, 6)
	h.Release(device.PTZRightUp)

	waitFor(t, "dispatch", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})
	mu.Lock()
	defer mu.Unlock()
	assertCommands(t, got, "ptz-start:RightUp", "ptz-stop:RightUp")
}
