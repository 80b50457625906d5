package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/five82/lookout/internal/engine"
)

const (
	defaultTopic    = "lookout/alerts"
	queueSize       = 32
	connectTimeout  = 5 * time.Second
	publishTimeout  = 2 * time.Second
	disconnectQuiet = 250 // ms
)

// Ensure Relay can be registered as a signaler cue.
var _ engine.Cue = (*Relay)(nil)

// Config selects the broker and topic. An empty Broker disables the relay.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Broker) != ""
}

// Alert is the payload published for every pulse.
type Alert struct {
	TS     string `json:"ts"`
	Reason string `json:"reason"`
	Client string `json:"client"`
}

// Stats summarises relay activity.
type Stats struct {
	Connected bool
	Published uint64
	Dropped   uint64
	Errors    uint64
}

type publisher interface {
	Publish(topic string, payload []byte) error
	Connected() bool
	Close()
}

// Relay forwards alert pulses to an MQTT topic so hardware on the device
// network (strobe, relay board) can react. Alert never blocks: pulses are
// queued and published by Run, and dropped when the queue is full.
type Relay struct {
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
	queue  chan Alert

	connectWait time.Duration

	mu        sync.Mutex
	pub       publisher
	published uint64
	dropped   uint64
	errors    uint64
}

// New builds an unconnected relay.
func New(cfg Config, logger zerolog.Logger) *Relay {
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = defaultTopic
	}
	return &Relay{
		cfg:    cfg,
		logger: logger.With().Str("component", "relay").Logger(),
		now:    time.Now,
		queue:  make(chan Alert, queueSize),

		connectWait: connectTimeout,
	}
}

// Connect dials the broker. A broker that is down at startup is not fatal:
// the timeout error is returned but the client keeps retrying, and alerts
// are published once it connects.
func (r *Relay) Connect(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("relay is nil")
	}
	if !r.cfg.Enabled() {
		return fmt.Errorf("relay broker not configured")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(r.cfg.Broker))
	opts.SetClientID(r.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		r.logger.Info().Str("broker", r.cfg.Broker).Msg("relay connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		r.logger.Warn().Err(err).Str("broker", r.cfg.Broker).Msg("relay connection lost, reconnecting")
	}

	client := mqtt.NewClient(opts)

	// Publishing is gated on Connected, so the client is stored before the
	// first connect completes; paho keeps retrying in the background.
	r.mu.Lock()
	if err := ctx.Err(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("relay connect %s: %w", r.cfg.Broker, err)
	}
	r.pub = &mqttPublisher{client: client}
	r.mu.Unlock()

	token := client.Connect()
	waitCtx, cancel := context.WithTimeout(ctx, r.connectWait)
	defer cancel()
	select {
	case <-token.Done():
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			r.Close()
			return fmt.Errorf("relay connect %s: %w", r.cfg.Broker, err)
		}
		return fmt.Errorf("relay connect %s: timeout, retrying in background", r.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		r.Close()
		return fmt.Errorf("relay connect %s: %w", r.cfg.Broker, err)
	}
	return nil
}

// Alert queues one publish. It implements engine.Cue.
func (r *Relay) Alert(reason string) {
	msg := Alert{
		TS:     r.now().UTC().Format(time.RFC3339Nano),
		Reason: reason,
		Client: r.cfg.ClientID,
	}
	select {
	case r.queue <- msg:
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
	}
}

// Run publishes queued alerts until ctx is cancelled, then closes the session.
func (r *Relay) Run(ctx context.Context) {
	defer r.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-r.queue:
			r.publish(msg)
		}
	}
}

func (r *Relay) publish(msg Alert) {
	r.mu.Lock()
	pub := r.pub
	r.mu.Unlock()
	if pub == nil || !pub.Connected() {
		r.count(&r.dropped)
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		r.count(&r.errors)
		r.logger.Error().Err(err).Msg("encode relay alert")
		return
	}
	if err := pub.Publish(r.cfg.Topic, payload); err != nil {
		r.count(&r.errors)
		r.logger.Warn().Err(err).Str("topic", r.cfg.Topic).Msg("relay publish failed")
		return
	}
	r.count(&r.published)
	r.logger.Debug().Str("topic", r.cfg.Topic).Str("reason", msg.Reason).Msg("relay alert published")
}

func (r *Relay) count(field *uint64) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}

// Close disconnects from the broker.
func (r *Relay) Close() {
	r.mu.Lock()
	pub := r.pub
	r.pub = nil
	r.mu.Unlock()
	if pub != nil {
		pub.Close()
	}
}

// Stats returns a copy of the counters.
func (r *Relay) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Connected: r.pub != nil && r.pub.Connected(),
		Published: r.published,
		Dropped:   r.dropped,
		Errors:    r.errors,
	}
}

func brokerURL(broker string) string {
	broker = strings.TrimSpace(broker)
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

type mqttPublisher struct {
	client mqtt.Client
}

func (p *mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	return token.Error()
}

func (p *mqttPublisher) Connected() bool {
	return p.client.IsConnectionOpen()
}

// Close also stops a pending connect retry.
func (p *mqttPublisher) Close() {
	p.client.Disconnect(disconnectQuiet)
}
