package ui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/lookout/internal/engine"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	commands []engine.Command
	reject   bool
}

func (d *fakeDispatcher) Dispatch(_ context.Context, cmd engine.Command) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = append(d.commands, cmd)
	return !d.reject
}

func (d *fakeDispatcher) Commands() []engine.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]engine.Command(nil), d.commands...)
}

type fakeHolder struct {
	calls []string
	held  string
}

func (h *fakeHolder) Press(code string, speed int) {
	h.calls = append(h.calls, fmt.Sprintf("press %s %d", code, speed))
	h.held = code
}

func (h *fakeHolder) Repeat(code string, speed int) {
	h.calls = append(h.calls, fmt.Sprintf("repeat %s %d", code, speed))
	h.held = code
}

func (h *fakeHolder) Release(code string) {
	h.calls = append(h.calls, "release "+code)
	if h.held == code {
		h.held = ""
	}
}

func (h *fakeHolder) ReleaseAll() {
	h.calls = append(h.calls, "release-all")
	h.held = ""
}

func (h *fakeHolder) Held() string { return h.held }

// newTestModel returns a sized model wired to fakes.
func newTestModel(t interface{ TempDir() string }, d Dispatcher, h PTZHolder) Model {
	m := New(Options{
		Dispatcher: d,
		Holder:     h,
		PrefsPath:  t.TempDir() + "/prefs.toml",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

// runCmd executes a command the way the Bubble Tea runtime would and
// returns its message, or nil.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
