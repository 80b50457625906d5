package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/benbjohnson/clock"

	"github.com/five82/lookout/internal/config"
	"github.com/five82/lookout/internal/device"
	"github.com/five82/lookout/internal/engine"
	"github.com/five82/lookout/internal/prefs"
	"github.com/five82/lookout/internal/ui"
)

// Options configure the lookout application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/lookout/prefs.toml
	DeviceURL  string // overrides device_url when set
	PollMS     int    // milliseconds; zero uses the configured interval
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if url := strings.TrimSpace(opts.DeviceURL); url != "" {
		cfg.DeviceURL = url
	}
	if opts.PollMS > 0 {
		cfg.PollIntervalMS = opts.PollMS
	}
	return cfg, nil
}

// Run boots the lookout TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init diagnostics log: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := device.NewClient(cfg.DeviceURL,
		device.WithTimeout(cfg.RequestTimeout()),
		device.WithLogger(logger.With().Str("component", "device").Logger()),
	)
	if err != nil {
		return fmt.Errorf("init device client: %w", err)
	}

	rt, err := newRuntime(cfg, client, clock.New(), logger, engine.Cue(ui.NewBell(os.Stderr)))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info().
		Str("device", client.BaseURL()).
		Dur("poll", cfg.PollInterval()).
		Bool("relay", rt.relay != nil).
		Msg("lookout starting")
	rt.start(ctx)

	err = ui.Run(ui.Options{
		Context:    ctx,
		Dispatcher: rt.controller,
		Holder:     rt.holder,
		Store:      rt.store,
		Config:     &cfg,
		Logger:     logger.With().Str("component", "ui").Logger(),
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Speed:      userPrefs.PTZSpeed,
		LogFile:    cfg.LogFile,
		DeviceURL:  client.BaseURL(),
	})
	logger.Info().Err(err).Msg("lookout stopped")
	return err
}
