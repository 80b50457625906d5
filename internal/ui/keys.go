package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/lookout/internal/device"
)

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit        key.Binding
	Help        key.Binding
	CycleTheme  key.Binding
	Diagnostics key.Binding
	Escape      key.Binding

	// Device controls
	Start    key.Binding
	Stop     key.Binding
	Refresh  key.Binding
	Simulate key.Binding

	// PTZ
	PanUp      key.Binding
	PanDown    key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	PanUpLeft  key.Binding
	PanUpRight key.Binding
	PanDnLeft  key.Binding
	PanDnRight key.Binding
	PTZStop    key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Slower     key.Binding
	Faster     key.Binding
	PTZConfig  key.Binding

	// Log navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Form
	Confirm  key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Diagnostics: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Device/diagnostics log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		// Device controls
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start pipeline"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Stop pipeline"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh (stop + clear)"),
		),
		Simulate: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Simulate alert"),
		),

		// PTZ
		PanUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "Tilt up"),
		),
		PanDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "Tilt down"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "Pan left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "Pan right"),
		),
		PanUpLeft: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "Up-left"),
		),
		PanUpRight: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Up-right"),
		),
		PanDnLeft: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "Down-left"),
		),
		PanDnRight: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "Down-right"),
		),
		PTZStop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "PTZ stop"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Zoom out"),
		),
		Slower: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "PTZ slower"),
		),
		Faster: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "PTZ faster"),
		),
		PTZConfig: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "PTZ camera profile"),
		),

		// Log navigation
		Up: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "Scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		// Form
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Save"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
	}
}

// moveCode maps a PTZ direction key to its device code.
func (k keyMap) moveCode(msg tea.KeyMsg) (string, bool) {
	pairs := []struct {
		binding key.Binding
		code    string
	}{
		{k.PanUp, device.PTZUp},
		{k.PanDown, device.PTZDown},
		{k.PanLeft, device.PTZLeft},
		{k.PanRight, device.PTZRight},
		{k.PanUpLeft, device.PTZLeftUp},
		{k.PanUpRight, device.PTZRightUp},
		{k.PanDnLeft, device.PTZLeftDown},
		{k.PanDnRight, device.PTZRightDown},
		{k.PTZStop, device.PTZStop},
	}
	for _, p := range pairs {
		if key.Matches(msg, p.binding) {
			return p.code, true
		}
	}
	return "", false
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Refresh, k.Simulate, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Refresh, k.Simulate},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.PanUpLeft, k.PanUpRight, k.PanDnLeft, k.PanDnRight},
		{k.PTZStop, k.ZoomIn, k.ZoomOut, k.Slower, k.Faster, k.PTZConfig},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageUp, k.HalfPageDown},
		{k.Diagnostics, k.CycleTheme, k.Help, k.Quit},
	}
}
