package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lookout/internal/config"
	"github.com/five82/lookout/internal/device"
)

// Form field order.
const (
	fieldHost = iota
	fieldPort
	fieldProtocol
	fieldAuth
	fieldUser
	fieldPassword
	fieldChannel
	fieldTimeout
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Host", "Port", "Protocol", "Auth", "User", "Password", "Channel", "Timeout (s)",
}

// submitProfileMsg carries a PTZ profile the user asked to save.
type submitProfileMsg struct {
	profile device.PTZProfile
}

// ptzForm is the camera profile modal.
type ptzForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    error
}

func newPTZForm(cfg config.PTZConfig) *ptzForm {
	f := &ptzForm{}
	values := [fieldCount]string{
		cfg.Host,
		intField(cfg.Port),
		cfg.Protocol,
		cfg.Auth,
		cfg.User,
		cfg.Password,
		intField(cfg.Channel),
		floatField(cfg.Timeout),
	}
	placeholders := [fieldCount]string{
		"192.168.1.64",
		strconv.Itoa(device.DefaultPTZPort),
		device.DefaultPTZProtocol,
		device.DefaultPTZAuth,
		"admin",
		"",
		strconv.Itoa(device.DefaultPTZChannel),
		floatField(device.DefaultPTZTimeout),
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 128
		in.Width = 28
		in.Placeholder = placeholders[i]
		in.SetValue(values[i])
		if i == fieldPassword {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs[i] = in
	}
	f.inputs[fieldHost].Focus()
	return f
}

func intField(v int) string {
	if v <= 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func floatField(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// profile parses the form. Blank numeric fields become zero so the
// controller's defaults apply.
func (f *ptzForm) profile() (device.PTZProfile, error) {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	p := device.PTZProfile{
		Host:     value(fieldHost),
		Protocol: value(fieldProtocol),
		Auth:     value(fieldAuth),
		User:     value(fieldUser),
		Password: f.inputs[fieldPassword].Value(),
	}
	if p.Host == "" {
		return p, errors.New("host is required")
	}

	var errs []error
	if s := value(fieldPort); s != "" {
		port, err := strconv.Atoi(s)
		if err != nil || port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("port %q is not 1-65535", s))
		}
		p.Port = port
	}
	if s := value(fieldChannel); s != "" {
		channel, err := strconv.Atoi(s)
		if err != nil || channel < 1 {
			errs = append(errs, fmt.Errorf("channel %q is not a positive number", s))
		}
		p.Channel = channel
	}
	if s := value(fieldTimeout); s != "" {
		timeout, err := strconv.ParseFloat(s, 64)
		if err != nil || timeout <= 0 {
			errs = append(errs, fmt.Errorf("timeout %q is not a positive number", s))
		}
		p.Timeout = timeout
	}
	return p, errors.Join(errs...)
}

func (f *ptzForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// Update implements Modal.
func (f *ptzForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			return f, nil, true
		case key.Matches(keyMsg, keys.Tab):
			f.setFocus(f.focus + 1)
			return f, textinput.Blink, false
		case key.Matches(keyMsg, keys.ShiftTab):
			f.setFocus(f.focus - 1)
			return f, textinput.Blink, false
		case key.Matches(keyMsg, keys.Confirm):
			profile, err := f.profile()
			if err != nil {
				f.err = err
				return f, nil, false
			}
			return f, func() tea.Msg { return submitProfileMsg{profile: profile} }, true
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

// View implements Modal.
func (f *ptzForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("PTZ Camera Profile"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Width(13)
	for i := range f.inputs {
		label := labelStyle.Inherit(styles.MutedText).Render(fieldLabels[i])
		if i == f.focus {
			label = labelStyle.Inherit(styles.AccentText.Bold(true)).Render(fieldLabels[i])
		}
		b.WriteString(label)
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.err != nil {
		b.WriteString(styles.DangerText.Render(f.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("tab next · enter save · esc cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(48).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
