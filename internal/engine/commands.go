package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/device"
	"github.com/five82/lookout/internal/state"
)

const (
	// StatusRefreshDelay is the wait before the authoritative /status read after start/stop/refresh.
	StatusRefreshDelay = 300 * time.Millisecond
	// RefreshGrace is how long Refresh keeps polling suspended.
	RefreshGrace = 800 * time.Millisecond
	// ZoomPulse is how long a zoom button drives the lens before the automatic stop.
	ZoomPulse = 350 * time.Millisecond
	// DefaultPTZSpeed is used when a PTZ command carries no speed.
	DefaultPTZSpeed = 3
)

// Kind names a user command.
type Kind int

// Command kinds.
const (
	KindStart Kind = iota
	KindStop
	KindRefresh
	KindSimulate
	KindPTZStart
	KindPTZStop
	KindPTZZoom
	KindPTZConfig
)

var kindNames = map[Kind]string{
	KindStart:     "start",
	KindStop:      "stop",
	KindRefresh:   "refresh",
	KindSimulate:  "simulate",
	KindPTZStart:  "ptz-start",
	KindPTZStop:   "ptz-stop",
	KindPTZZoom:   "ptz-zoom",
	KindPTZConfig: "ptz-config",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command is one user action. PTZ is used by the PTZ kinds, Profile by KindPTZConfig.
type Command struct {
	Kind    Kind
	PTZ     device.PTZCommand
	Profile device.PTZProfile
}

// ControllerConfig collects the controller's collaborators.
type ControllerConfig struct {
	Transport  device.Transport
	Store      *state.Store
	Suspension *Suspension
	Signaler   *Signaler
	Clock      clock.Clock
	Logger     zerolog.Logger
}

// Controller executes commands against the device and reflects the outcome
// in the store. Dispatch is safe for concurrent use; each control carries its
// own busy lock, distinct controls do not exclude each other.
type Controller struct {
	transport device.Transport
	store     *state.Store
	susp      *Suspension
	signaler  *Signaler
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewController validates cfg.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Transport == nil {
		return nil, errors.New("controller: transport is nil")
	}
	if cfg.Store == nil {
		return nil, errors.New("controller: store is nil")
	}
	if cfg.Suspension == nil {
		return nil, errors.New("controller: suspension is nil")
	}
	if cfg.Signaler == nil {
		return nil, errors.New("controller: signaler is nil")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Controller{
		transport: cfg.Transport,
		store:     cfg.Store,
		susp:      cfg.Suspension,
		signaler:  cfg.Signaler,
		clock:     clk,
		logger:    cfg.Logger,
	}, nil
}

// Dispatch runs cmd to completion. It returns false when the command was
// dropped because its control is already busy.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) bool {
	switch cmd.Kind {
	case KindStart:
		return c.start(ctx)
	case KindStop:
		return c.stop(ctx)
	case KindRefresh:
		return c.refresh(ctx)
	case KindSimulate:
		return c.simulate(ctx)
	case KindPTZStart:
		c.ptzStart(ctx, cmd.PTZ)
		return true
	case KindPTZStop:
		c.ptzStop(ctx, cmd.PTZ)
		return true
	case KindPTZZoom:
		c.ptzZoom(ctx, cmd.PTZ)
		return true
	case KindPTZConfig:
		return c.saveConfig(ctx, cmd.Profile)
	default:
		c.logger.Warn().Stringer("kind", cmd.Kind).Msg("unknown command")
		return false
	}
}

// RefreshStatus reads /status and overwrites the run state. Failures and
// bodies without a running field leave the pill untouched.
func (c *Controller) RefreshStatus(ctx context.Context) {
	resp, err := c.transport.FetchStatus(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Str("endpoint", "/status").Msg("status refresh failed")
		return
	}
	if resp.Running != nil {
		c.store.SetRunning(*resp.Running)
	}
}

func (c *Controller) start(ctx context.Context) bool {
	if !c.store.TryAcquire(state.ControlStart) {
		return false
	}
	defer c.finish(ctx, state.ControlStart)

	c.store.AppendOverlay("[UI] start…")
	res, err := c.transport.Start(ctx)
	switch {
	case err != nil:
		c.store.AppendOverlay("[UI] start error: " + err.Error())
	case res.OK:
		c.store.AppendOverlay("[UI] start ok")
		c.susp.Resume()
	default:
		c.store.AppendOverlay("[UI] start failed")
	}
	if err == nil && res.Running != nil {
		c.store.SetRunning(*res.Running)
	}
	return true
}

func (c *Controller) stop(ctx context.Context) bool {
	if !c.store.TryAcquire(state.ControlStop) {
		return false
	}
	defer c.finish(ctx, state.ControlStop)

	c.store.AppendOverlay("[UI] stop…")
	res, err := c.transport.Stop(ctx)
	switch {
	case err != nil:
		c.store.AppendOverlay("[UI] stop error: " + err.Error())
	case res.OK:
		c.store.AppendOverlay("[UI] stop ok")
	default:
		c.store.AppendOverlay("[UI] stop failed")
	}

	c.susp.Pause()
	c.store.SetRunning(false)
	return true
}

func (c *Controller) refresh(ctx context.Context) bool {
	if !c.store.TryAcquire(state.ControlRefresh) {
		return false
	}
	c.store.AppendOverlay("[UI] refresh…")

	c.bestEffort("/stop", func() (device.CommandResult, error) { return c.transport.Stop(ctx) })
	c.bestEffort("/clear", func() (device.CommandResult, error) { return c.transport.Clear(ctx) })

	c.store.ClearBuffers()
	c.susp.Pause()
	c.signaler.Reset()
	c.store.SetRunning(false)

	c.store.SetBusy(state.ControlRefresh, false)
	c.store.AppendOverlay("[UI] cleared")
	c.susp.ResumeAfter(RefreshGrace, func() { c.RefreshStatus(ctx) })
	return true
}

func (c *Controller) simulate(ctx context.Context) bool {
	if !c.store.TryAcquire(state.ControlSimulate) {
		return false
	}
	defer c.store.SetBusy(state.ControlSimulate, false)

	c.bestEffort("/simulate", func() (device.CommandResult, error) { return c.transport.Simulate(ctx) })
	c.signaler.Force()
	c.store.AppendOverlay("[UI] simulate alert")
	return true
}

func (c *Controller) ptzStart(ctx context.Context, cmd device.PTZCommand) {
	if cmd.Speed <= 0 {
		cmd.Speed = DefaultPTZSpeed
	}
	res, err := c.transport.PTZStart(ctx, cmd)
	c.reportPTZ(cmd.Code, "start", res, err)
}

func (c *Controller) ptzStop(ctx context.Context, cmd device.PTZCommand) {
	if strings.TrimSpace(cmd.Code) == "" {
		cmd.Code = device.PTZStop
	}
	res, err := c.transport.PTZStop(ctx, device.PTZCommand{Code: cmd.Code})
	c.reportPTZ(cmd.Code, "stop", res, err)
}

func (c *Controller) ptzZoom(ctx context.Context, cmd device.PTZCommand) {
	c.ptzStart(ctx, cmd)
	code := cmd.Code
	c.clock.AfterFunc(ZoomPulse, func() {
		c.ptzStop(ctx, device.PTZCommand{Code: code})
	})
}

func (c *Controller) saveConfig(ctx context.Context, profile device.PTZProfile) bool {
	if !c.store.TryAcquire(state.ControlPTZConfig) {
		return false
	}
	defer c.store.SetBusy(state.ControlPTZConfig, false)

	profile = profile.WithDefaults()
	res, err := c.transport.SavePTZConfig(ctx, profile)
	switch {
	case err != nil:
		c.store.AppendOverlay("[PTZ] config failed: " + err.Error())
	case res.OK:
		c.store.AppendOverlay("[PTZ] config saved for " + profile.Host)
	case res.Error != "":
		c.store.AppendOverlay("[PTZ] config failed: " + res.Error)
	default:
		c.store.AppendOverlay("[PTZ] config failed")
	}
	return true
}

// reportPTZ writes an outcome line only on failure. A body without an
// error field counts as success since PTZ endpoints may answer {}.
func (c *Controller) reportPTZ(code, action string, res device.CommandResult, err error) {
	prefix := fmt.Sprintf("[PTZ] %s %s failed", code, action)
	switch {
	case err != nil:
		c.store.AppendOverlay(prefix + ": " + err.Error())
	case !res.OK && res.Error != "":
		c.store.AppendOverlay(prefix + ": " + res.Error)
	}
}

// bestEffort runs call and intentionally discards its result. Failures are
// only recorded in the diagnostics log.
func (c *Controller) bestEffort(endpoint string, call func() (device.CommandResult, error)) {
	res, err := call()
	if err != nil {
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("best-effort call failed")
		return
	}
	if !res.OK && res.Error != "" {
		c.logger.Debug().Str("endpoint", endpoint).Str("error", res.Error).Msg("best-effort call rejected")
	}
}

// finish releases control and schedules one authoritative status read.
func (c *Controller) finish(ctx context.Context, control state.Control) {
	c.store.SetBusy(control, false)
	c.clock.AfterFunc(StatusRefreshDelay, func() { c.RefreshStatus(ctx) })
}
