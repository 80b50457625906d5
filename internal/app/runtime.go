package app

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/config"
	"github.com/five82/lookout/internal/device"
	"github.com/five82/lookout/internal/engine"
	"github.com/five82/lookout/internal/relay"
	"github.com/five82/lookout/internal/state"
)

// runtime is the UI-independent core: store, suspension, signaler,
// controller, poller, hold tracker and the optional alert relay.
type runtime struct {
	store      *state.Store
	suspension *engine.Suspension
	signaler   *engine.Signaler
	controller *engine.Controller
	poller     *engine.Poller
	holder     *engine.Holder
	relay      *relay.Relay
	logger     zerolog.Logger
}

// newRuntime wires the engine around transport. Extra cues (the terminal
// bell) are notified on every alert pulse alongside the relay.
func newRuntime(cfg config.Config, transport device.Transport, clk clock.Clock, logger zerolog.Logger, cues ...engine.Cue) (*runtime, error) {
	if clk == nil {
		clk = clock.New()
	}
	rt := &runtime{
		store:  &state.Store{},
		logger: logger,
	}

	relayCfg := relay.Config{
		Broker:   cfg.Relay.Broker,
		Topic:    cfg.Relay.Topic,
		ClientID: cfg.Relay.ClientID,
	}
	if relayCfg.Enabled() {
		rt.relay = relay.New(relayCfg, logger)
		cues = append(cues, rt.relay)
	}

	rt.suspension = engine.NewSuspension(clk)
	rt.signaler = engine.NewSignaler(rt.store, rt.suspension, clk, cues...)

	controller, err := engine.NewController(engine.ControllerConfig{
		Transport:  transport,
		Store:      rt.store,
		Suspension: rt.suspension,
		Signaler:   rt.signaler,
		Clock:      clk,
		Logger:     logger.With().Str("component", "controller").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("init controller: %w", err)
	}
	rt.controller = controller

	poller, err := engine.NewPoller(engine.PollerConfig{
		Transport:    transport,
		Store:        rt.store,
		Suspension:   rt.suspension,
		Signaler:     rt.signaler,
		Clock:        clk,
		Logger:       logger.With().Str("component", "poller").Logger(),
		Interval:     cfg.PollInterval(),
		EventsLimit:  cfg.EventsLimit,
		FetchTimeout: cfg.RequestTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("init poller: %w", err)
	}
	rt.poller = poller

	rt.holder = engine.NewHolder(clk, cfg.HoldRelease(), logger.With().Str("component", "ptz").Logger())
	return rt, nil
}

// start reads /status once, then launches the background goroutines. They
// all stop when ctx is cancelled. It returns immediately after the status read.
func (rt *runtime) start(ctx context.Context) {
	rt.controller.RefreshStatus(ctx)

	go rt.poller.Run(ctx)
	go rt.holder.Run(ctx, func(ctx context.Context, cmd engine.Command) {
		rt.controller.Dispatch(ctx, cmd)
	})

	if rt.relay != nil {
		go func() {
			if err := rt.relay.Connect(ctx); err != nil {
				rt.logger.Warn().Err(err).Msg("alert relay not connected yet, pulses are dropped until it connects")
			}
		}()
		go rt.relay.Run(ctx)
	}
}
