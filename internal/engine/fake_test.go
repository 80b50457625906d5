package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/device"
	"github.com/five82/lookout/internal/state"
)

var errUnreachable = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

// fakeTransport is a scripted device. Zero responses decode like "{}".
type fakeTransport struct {
	mu    sync.Mutex
	calls []string

	status    device.StatusResponse
	statusErr error
	logs      device.LogsResponse
	logsErr   error
	events    device.EventsResponse
	eventsErr error
	limit     int

	results map[string]device.CommandResult
	errs    map[string]error
	ptz     []device.PTZCommand
	profile device.PTZProfile
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		results: make(map[string]device.CommandResult),
		errs:    make(map[string]error),
	}
}

func (f *fakeTransport) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeTransport) count(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeTransport) set(fn func(f *fakeTransport)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeTransport) FetchStatus(context.Context) (device.StatusResponse, error) {
	f.record("/status")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeTransport) FetchLogs(context.Context) (device.LogsResponse, error) {
	f.record("/logs")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs, f.logsErr
}

func (f *fakeTransport) FetchEvents(_ context.Context, limit int) (device.EventsResponse, error) {
	f.record("/events")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	return f.events, f.eventsErr
}

func (f *fakeTransport) post(name string) (device.CommandResult, error) {
	f.record(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[name], f.errs[name]
}

func (f *fakeTransport) Start(context.Context) (device.CommandResult, error) {
	return f.post("/start")
}

func (f *fakeTransport) Stop(context.Context) (device.CommandResult, error) {
	return f.post("/stop")
}

func (f *fakeTransport) Clear(context.Context) (device.CommandResult, error) {
	return f.post("/clear")
}

func (f *fakeTransport) Simulate(context.Context) (device.CommandResult, error) {
	return f.post("/simulate")
}

func (f *fakeTransport) PTZStart(_ context.Context, cmd device.PTZCommand) (device.CommandResult, error) {
	f.mu.Lock()
	f.ptz = append(f.ptz, cmd)
	f.mu.Unlock()
	return f.post("/ptz/start")
}

func (f *fakeTransport) PTZStop(_ context.Context, cmd device.PTZCommand) (device.CommandResult, error) {
	f.mu.Lock()
	f.ptz = append(f.ptz, cmd)
	f.mu.Unlock()
	return f.post("/ptz/stop")
}

func (f *fakeTransport) SavePTZConfig(_ context.Context, p device.PTZProfile) (device.CommandResult, error) {
	f.mu.Lock()
	f.profile = p
	f.mu.Unlock()
	return f.post("/ptz/config")
}

func (f *fakeTransport) PTZCommands() []device.PTZCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]device.PTZCommand, len(f.ptz))
	copy(out, f.ptz)
	return out
}

// harness wires the engine to a fake transport and a mock clock.
type harness struct {
	clock     *clock.Mock
	transport *fakeTransport
	store     *state.Store
	susp      *Suspension
	signaler  *Signaler
	ctrl      *Controller
	poller    *Poller
	cues      *cueRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:     clock.NewMock(),
		transport: newFakeTransport(),
		store:     &state.Store{},
		cues:      &cueRecorder{},
	}
	h.susp = NewSuspension(h.clock)
	h.signaler = NewSignaler(h.store, h.susp, h.clock, h.cues)

	ctrl, err := NewController(ControllerConfig{
		Transport:  h.transport,
		Store:      h.store,
		Suspension: h.susp,
		Signaler:   h.signaler,
		Clock:      h.clock,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.ctrl = ctrl

	poller, err := NewPoller(PollerConfig{
		Transport:  h.transport,
		Store:      h.store,
		Suspension: h.susp,
		Signaler:   h.signaler,
		Clock:      h.clock,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}
	h.poller = poller
	return h
}

type cueRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (c *cueRecorder) Alert(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reasons = append(c.reasons, reason)
}

func (c *cueRecorder) Reasons() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.reasons))
	copy(out, c.reasons)
	return out
}

// waitFor polls cond until it holds; timer callbacks on the mock clock run
// on their own goroutines.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }
