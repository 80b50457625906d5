package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/lookout/internal/config"
	"github.com/five82/lookout/internal/device"
)

func TestPTZFormPrefillsFromConfig(t *testing.T) {
	f := newPTZForm(config.PTZConfig{Host: "cam.local", Port: 8080, Auth: "basic", User: "admin", Password: "pw", Channel: 2, Timeout: 2.5})

	got, err := f.profile()
	if err != nil {
		t.Fatalf("profile() error = %v", err)
	}
	want := device.PTZProfile{Host: "cam.local", Port: 8080, Auth: "basic", User: "admin", Password: "pw", Channel: 2, Timeout: 2.5}
	if got != want {
		t.Fatalf("profile() = %+v, want %+v", got, want)
	}
}

func TestPTZFormBlankNumbersStayZero(t *testing.T) {
	f := newPTZForm(config.PTZConfig{Host: "cam.local"})

	got, err := f.profile()
	if err != nil {
		t.Fatalf("profile() error = %v", err)
	}
	if got.Port != 0 || got.Channel != 0 || got.Timeout != 0 {
		t.Fatalf("profile() = %+v, want zero numeric fields", got)
	}
}

func TestPTZFormRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		field int
		value string
		want  string
	}{
		{"missing host", fieldHost, "", "host is required"},
		{"port text", fieldPort, "http", "port"},
		{"port range", fieldPort, "70000", "port"},
		{"channel zero", fieldChannel, "0", "channel"},
		{"timeout negative", fieldTimeout, "-1", "timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPTZForm(config.PTZConfig{Host: "cam.local"})
			f.inputs[tc.field].SetValue(tc.value)

			if _, err := f.profile(); err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("profile() error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestPTZFormEnterWithErrorStaysOpen(t *testing.T) {
	f := newPTZForm(config.PTZConfig{})
	keys := DefaultKeyMap()

	_, cmd, closed := f.Update(tea.KeyMsg{Type: tea.KeyEnter}, keys)
	if closed || cmd != nil {
		t.Fatalf("form closed on invalid input")
	}
	if f.err == nil {
		t.Fatalf("form error not set")
	}
	if !strings.Contains(f.View(defaultTheme(), 80, 30), "host is required") {
		t.Fatalf("form view does not show the error")
	}
}

func TestPTZFormFocusCyclesAndEscCancels(t *testing.T) {
	f := newPTZForm(config.PTZConfig{})
	keys := DefaultKeyMap()

	f.Update(tea.KeyMsg{Type: tea.KeyShiftTab}, keys)
	if f.focus != fieldTimeout {
		t.Fatalf("focus = %d, want %d (wrapped)", f.focus, fieldTimeout)
	}
	f.Update(tea.KeyMsg{Type: tea.KeyTab}, keys)
	if f.focus != fieldHost {
		t.Fatalf("focus = %d, want %d", f.focus, fieldHost)
	}

	_, cmd, closed := f.Update(tea.KeyMsg{Type: tea.KeyEsc}, keys)
	if !closed || cmd != nil {
		t.Fatalf("esc closed = %v cmd = %v, want closed without command", closed, cmd)
	}
}

func TestPTZFormMasksPassword(t *testing.T) {
	f := newPTZForm(config.PTZConfig{Host: "cam.local", Password: "hunter2"})
	if strings.Contains(f.View(defaultTheme(), 80, 30), "hunter2") {
		t.Fatalf("password rendered in clear text")
	}
}
