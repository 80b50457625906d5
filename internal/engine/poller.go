package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/device"
	"github.com/five82/lookout/internal/state"
)

const (
	// DefaultPollInterval is the delay between the end of one cycle and the start of the next.
	DefaultPollInterval = 800 * time.Millisecond
	// DefaultEventsLimit caps the /events fetch.
	DefaultEventsLimit = 30
	defaultFetchTimeout = 4 * time.Second
)

// PollerConfig collects the poller's collaborators and tuning.
type PollerConfig struct {
	Transport    device.Transport
	Store        *state.Store
	Suspension   *Suspension
	Signaler     *Signaler
	Clock        clock.Clock
	Logger       zerolog.Logger
	Interval     time.Duration
	EventsLimit  int
	FetchTimeout time.Duration
}

// Poller reconciles the store with the device on a self-rescheduling timer.
type Poller struct {
	transport device.Transport
	store     *state.Store
	susp      *Suspension
	signaler  *Signaler
	clock     clock.Clock
	logger    zerolog.Logger
	interval  time.Duration
	limit     int
	timeout   time.Duration

	failing bool
}

// NewPoller validates cfg and fills in defaults.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.Transport == nil {
		return nil, errors.New("poller: transport is nil")
	}
	if cfg.Store == nil {
		return nil, errors.New("poller: store is nil")
	}
	if cfg.Suspension == nil {
		return nil, errors.New("poller: suspension is nil")
	}
	p := &Poller{
		transport: cfg.Transport,
		store:     cfg.Store,
		susp:      cfg.Suspension,
		signaler:  cfg.Signaler,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		interval:  cfg.Interval,
		limit:     cfg.EventsLimit,
		timeout:   cfg.FetchTimeout,
	}
	if p.clock == nil {
		p.clock = clock.New()
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.limit <= 0 {
		p.limit = DefaultEventsLimit
	}
	if p.timeout <= 0 {
		p.timeout = defaultFetchTimeout
	}
	return p, nil
}

// Run blocks until ctx is cancelled. The next cycle is armed only after the
// previous one has finished both fetches, so cycles never overlap.
func (p *Poller) Run(ctx context.Context) {
	for {
		p.cycle(ctx)

		timer := p.clock.Timer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// cycle runs one poll and reports whether any fetch was attempted.
func (p *Poller) cycle(ctx context.Context) bool {
	if p.susp.Paused() {
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	logsErr := p.pollLogs(ctx)
	eventsErr := p.pollEvents(ctx)

	err := errors.Join(logsErr, eventsErr)
	p.store.RecordPoll(err)
	p.noteOutcome(err)
	return true
}

func (p *Poller) pollLogs(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.transport.FetchLogs(fetchCtx)
	if err != nil {
		return fmt.Errorf("fetch logs: %w", err)
	}
	if resp.Lines != nil {
		p.store.ReplaceLogs(resp.Lines)
	}
	return nil
}

func (p *Poller) pollEvents(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.transport.FetchEvents(fetchCtx, p.limit)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	if resp.Items == nil {
		return nil
	}
	p.store.ReplaceDetections(resp.Items)
	if len(resp.Items) > 0 && p.signaler != nil {
		p.signaler.Pulse()
	}
	return nil
}

// noteOutcome keeps background failures out of the log panel: every failure
// goes to the diagnostics log at debug, transitions at warn/info.
func (p *Poller) noteOutcome(err error) {
	if err == nil {
		if p.failing {
			p.logger.Info().Msg("device reachable again")
		}
		p.failing = false
		return
	}
	if !p.failing {
		p.logger.Warn().Err(err).Msg("device poll failed")
	} else {
		p.logger.Debug().Err(err).Msg("device poll failed")
	}
	p.failing = true
}
