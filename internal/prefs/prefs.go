// Package prefs persists the lookout UI choices that outlive a session: the
// colour theme and the last PTZ speed. The file lives at
// ~/.config/lookout/prefs.toml unless a path is given.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences. A zero PTZSpeed means "use the configured
// default".
type Prefs struct {
	Theme    string `toml:"theme"`
	PTZSpeed int    `toml:"ptz_speed,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/lookout/prefs.toml"
	defaultTheme     = "Dracula"
	maxPTZSpeed      = 8
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// normalize replaces values a hand-edited file may have broken.
func (p Prefs) normalize() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if p.PTZSpeed < 0 || p.PTZSpeed > maxPTZSpeed {
		p.PTZSpeed = 0
	}
	return p
}

// Load reads preferences from path. Preferences are cosmetic, so a missing,
// unreadable or malformed file yields defaults rather than an error.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return defaults(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return defaults(), nil
	}
	p := defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return defaults(), nil
	}
	return p.normalize(), nil
}

// Save writes preferences to path, creating directories as needed. The file
// is replaced atomically so a crash mid-write never leaves it truncated.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmpName, resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(trimmed, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, rest)
	}
	return filepath.Abs(trimmed)
}
