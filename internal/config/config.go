package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the lookout configuration: device address, poll tuning,
// diagnostics log, PTZ profile and the optional alert relay.
type Config struct {
	DeviceURL        string      `toml:"device_url" env:"DEVICE_URL"`
	PollIntervalMS   int         `toml:"poll_interval_ms" env:"POLL_INTERVAL_MS"`
	EventsLimit      int         `toml:"events_limit" env:"EVENTS_LIMIT"`
	RequestTimeoutMS int         `toml:"request_timeout_ms" env:"REQUEST_TIMEOUT_MS"`
	LogFile          string      `toml:"log_file" env:"LOG_FILE"`
	LogLevel         string      `toml:"log_level" env:"LOG_LEVEL"`
	PTZ              PTZConfig   `toml:"ptz" envPrefix:"PTZ_"`
	Relay            RelayConfig `toml:"relay" envPrefix:"RELAY_"`
}

// PTZConfig is the camera connection profile offered in the PTZ form.
type PTZConfig struct {
	Host     string  `toml:"host" env:"HOST"`
	Port     int     `toml:"port" env:"PORT"`
	Protocol string  `toml:"protocol" env:"PROTOCOL"`
	Auth     string  `toml:"auth" env:"AUTH"`
	User     string  `toml:"user" env:"USER"`
	Password string  `toml:"password" env:"PASSWORD"`
	Channel  int     `toml:"channel" env:"CHANNEL"`
	Timeout  float64 `toml:"timeout" env:"TIMEOUT"`
	Speed    int     `toml:"speed" env:"SPEED"`

	// HoldReleaseMS is how long a key-driven PTZ hold lasts without a
	// terminal auto-repeat. It must exceed the terminal's initial repeat delay.
	HoldReleaseMS int `toml:"hold_release_ms" env:"HOLD_RELEASE_MS"`
}

// RelayConfig enables the MQTT alert relay when Broker is set.
type RelayConfig struct {
	Broker   string `toml:"broker" env:"BROKER"`
	Topic    string `toml:"topic" env:"TOPIC"`
	ClientID string `toml:"client_id" env:"CLIENT_ID"`
}

const (
	envPrefix = "LOOKOUT_"

	defaultConfigPath       = "~/.config/lookout/config.toml"
	defaultDeviceURL        = "127.0.0.1:8000"
	defaultPollIntervalMS   = 800
	defaultEventsLimit      = 30
	defaultRequestTimeoutMS = 4000
	defaultLogFile          = "~/.local/state/lookout/lookout.log"
	defaultLogLevel         = "info"

	defaultPTZPort     = 80
	defaultPTZProtocol = "http"
	defaultPTZAuth     = "digest"
	defaultPTZChannel  = 1
	defaultPTZTimeout  = 4.0
	defaultPTZSpeed    = 3
	defaultHoldRelease = 700

	minHoldReleaseMS = 100
	maxHoldReleaseMS = 5000

	defaultRelayTopic = "lookout/alerts"

	// MinPTZSpeed and MaxPTZSpeed bound the PTZ speed control.
	MinPTZSpeed = 1
	MaxPTZSpeed = 8
	maxEvents   = 200
)

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the TOML file at path (default ~/.config/lookout/config.toml),
// fills blanks with defaults and applies LOOKOUT_* environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.DeviceURL = strings.TrimSpace(c.DeviceURL)
	if c.DeviceURL == "" {
		c.DeviceURL = defaultDeviceURL
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = defaultPollIntervalMS
	}
	if c.EventsLimit <= 0 {
		c.EventsLimit = defaultEventsLimit
	}
	if c.RequestTimeoutMS <= 0 {
		c.RequestTimeoutMS = defaultRequestTimeoutMS
	}
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = defaultLogFile
	}
	c.LogFile = mustExpand(c.LogFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	p := &c.PTZ
	p.Host = strings.TrimSpace(p.Host)
	if p.Port == 0 {
		p.Port = defaultPTZPort
	}
	p.Protocol = strings.ToLower(strings.TrimSpace(p.Protocol))
	if p.Protocol == "" {
		p.Protocol = defaultPTZProtocol
	}
	p.Auth = strings.ToLower(strings.TrimSpace(p.Auth))
	if p.Auth == "" {
		p.Auth = defaultPTZAuth
	}
	if p.Channel == 0 {
		p.Channel = defaultPTZChannel
	}
	if p.Timeout == 0 {
		p.Timeout = defaultPTZTimeout
	}
	if p.Speed == 0 {
		p.Speed = defaultPTZSpeed
	}
	if p.HoldReleaseMS == 0 {
		p.HoldReleaseMS = defaultHoldRelease
	}

	r := &c.Relay
	r.Broker = strings.TrimSpace(r.Broker)
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		r.Topic = defaultRelayTopic
	}
	r.ClientID = strings.TrimSpace(r.ClientID)
	if r.ClientID == "" {
		r.ClientID = defaultClientID()
	}
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error
	if c.EventsLimit < 1 || c.EventsLimit > maxEvents {
		errs = append(errs, fmt.Errorf("events_limit %d out of range 1-%d", c.EventsLimit, maxEvents))
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("log_level %q not recognised", c.LogLevel))
	}
	if c.PTZ.Port < 1 || c.PTZ.Port > 65535 {
		errs = append(errs, fmt.Errorf("ptz.port %d out of range 1-65535", c.PTZ.Port))
	}
	switch c.PTZ.Protocol {
	case "http", "https":
	default:
		errs = append(errs, fmt.Errorf("ptz.protocol %q must be http or https", c.PTZ.Protocol))
	}
	switch c.PTZ.Auth {
	case "digest", "basic", "none":
	default:
		errs = append(errs, fmt.Errorf("ptz.auth %q must be digest, basic or none", c.PTZ.Auth))
	}
	if c.PTZ.Channel < 1 {
		errs = append(errs, fmt.Errorf("ptz.channel %d must be positive", c.PTZ.Channel))
	}
	if c.PTZ.Timeout < 0 {
		errs = append(errs, fmt.Errorf("ptz.timeout must be positive"))
	}
	if c.PTZ.Speed < MinPTZSpeed || c.PTZ.Speed > MaxPTZSpeed {
		errs = append(errs, fmt.Errorf("ptz.speed %d out of range %d-%d", c.PTZ.Speed, MinPTZSpeed, MaxPTZSpeed))
	}
	if c.PTZ.HoldReleaseMS < minHoldReleaseMS || c.PTZ.HoldReleaseMS > maxHoldReleaseMS {
		errs = append(errs, fmt.Errorf("ptz.hold_release_ms %d out of range %d-%d", c.PTZ.HoldReleaseMS, minHoldReleaseMS, maxHoldReleaseMS))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// PollInterval returns the poll delay as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request device timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// HoldRelease returns the key-driven PTZ hold release window.
func (c Config) HoldRelease() time.Duration {
	return time.Duration(c.PTZ.HoldReleaseMS) * time.Millisecond
}

// ClampSpeed bounds a PTZ speed to the supported range.
func ClampSpeed(speed int) int {
	switch {
	case speed < MinPTZSpeed:
		return MinPTZSpeed
	case speed > MaxPTZSpeed:
		return MaxPTZSpeed
	default:
		return speed
	}
}

func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return "lookout"
	}
	return "lookout-" + host
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
