package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
	down     bool
	closed   bool
}

func (f *fakePublisher) Publish(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakePublisher) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.down
}

func (f *fakePublisher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func newTestRelay(pub publisher) *Relay {
	r := New(Config{Broker: "localhost:1883", ClientID: "lookout-test"}, zerolog.Nop())
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	r.pub = pub
	return r
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatalf("empty config should be disabled")
	}
	if !(Config{Broker: "mqtt:1883"}).Enabled() {
		t.Fatalf("broker config should be enabled")
	}
}

func TestBrokerURL(t *testing.T) {
	if got := brokerURL("10.0.0.2:1883"); got != "tcp://10.0.0.2:1883" {
		t.Fatalf("brokerURL = %q, want tcp://10.0.0.2:1883", got)
	}
	if got := brokerURL("ssl://broker:8883"); got != "ssl://broker:8883" {
		t.Fatalf("brokerURL = %q, want scheme kept", got)
	}
}

func TestRelay_PublishesAlertPayload(t *testing.T) {
	pub := &fakePublisher{}
	r := newTestRelay(pub)

	r.Alert("detections")
	r.publish(<-r.queue)

	if len(pub.payloads) != 1 || pub.topics[0] != "lookout/alerts" {
		t.Fatalf("published %d to %v, want 1 to lookout/alerts", len(pub.payloads), pub.topics)
	}
	var got Alert
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := Alert{TS: "2024-05-01T12:00:00Z", Reason: "detections", Client: "lookout-test"}
	if got != want {
		t.Fatalf("payload = %+v, want %+v", got, want)
	}
	if s := r.Stats(); s.Published != 1 || s.Errors != 0 {
		t.Fatalf("stats = %+v, want 1 published", s)
	}
}

func TestRelay_AlertNeverBlocks(t *testing.T) {
	r := newTestRelay(&fakePublisher{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			r.Alert("detections")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Alert blocked on a full queue")
	}
	if got := r.Stats().Dropped; got != 10 {
		t.Fatalf("Dropped = %d, want 10", got)
	}
}

func TestRelay_CountsFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("publish timeout")}
	r := newTestRelay(pub)
	r.publish(Alert{Reason: "simulate"})

	pub.mu.Lock()
	pub.err = nil
	pub.down = true
	pub.mu.Unlock()
	r.publish(Alert{Reason: "simulate"})

	s := r.Stats()
	if s.Errors != 1 || s.Dropped != 1 || s.Published != 0 {
		t.Fatalf("stats = %+v, want 1 error 1 dropped", s)
	}
}

func TestRelay_RunDrainsAndCloses(t *testing.T) {
	pub := &fakePublisher{}
	r := newTestRelay(pub)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	r.Alert("detections")
	deadline := time.Now().Add(2 * time.Second)
	for r.Stats().Published == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("alert never published")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done
	pub.mu.Lock()
	defer pub.mu.Unlock()
	if !pub.closed {
		t.Fatalf("Run did not close the publisher")
	}
}

func TestRelay_ConnectRequiresBroker(t *testing.T) {
	r := New(Config{}, zerolog.Nop())
	if err := r.Connect(context.Background()); err == nil {
		t.Fatalf("Connect without broker should fail")
	}
}

// fakeBroker speaks just enough MQTT 3.1.1 for paho to connect and publish
// at QoS 0.
type fakeBroker struct {
	ln net.Listener

	mu     sync.Mutex
	topics []string
}

func startFakeBroker(t *testing.T, addr string) *fakeBroker {
	t.Helper()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("listen %s: %v", addr, err)
	}
	b := &fakeBroker{ln: ln}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go b.serve(conn)
		}
	}()
	return b
}

func (b *fakeBroker) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	for {
		kind, body, err := readPacket(conn)
		if err != nil {
			return
		}
		switch kind {
		case 1: // CONNECT
			_, _ = conn.Write([]byte{0x20, 0x02, 0x00, 0x00})
		case 3: // PUBLISH
			if len(body) >= 2 {
				n := int(body[0])<<8 | int(body[1])
				if len(body) >= 2+n {
					b.mu.Lock()
					b.topics = append(b.topics, string(body[2:2+n]))
					b.mu.Unlock()
				}
			}
		case 12: // PINGREQ
			_, _ = conn.Write([]byte{0xD0, 0x00})
		case 14: // DISCONNECT
			return
		}
	}
}

func (b *fakeBroker) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.topics...)
}

func readPacket(r io.Reader) (byte, []byte, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}
	length, multiplier := 0, 1
	for {
		var digit [1]byte
		if _, err := io.ReadFull(r, digit[:]); err != nil {
			return 0, nil, err
		}
		length += int(digit[0]&0x7f) * multiplier
		if digit[0]&0x80 == 0 {
			break
		}
		multiplier *= 128
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return header[0] >> 4, body, nil
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func TestRelay_ConnectsWhenBrokerStartsLate(t *testing.T) {
	addr := freeAddr(t)
	r := New(Config{Broker: addr, ClientID: "lookout-late"}, zerolog.Nop())
	r.connectWait = 100 * time.Millisecond
	defer r.Close()

	if err := r.Connect(context.Background()); err == nil {
		t.Fatalf("Connect with broker down should report a timeout")
	}
	if r.Stats().Connected {
		t.Fatalf("Connected = true before the broker is up")
	}

	broker := startFakeBroker(t, addr)

	deadline := time.Now().Add(10 * time.Second)
	for !r.Stats().Connected {
		if time.Now().After(deadline) {
			t.Fatalf("relay never connected after the broker came up")
		}
		time.Sleep(10 * time.Millisecond)
	}

	r.Alert("detections")
	r.publish(<-r.queue)
	if s := r.Stats(); s.Published != 1 || s.Dropped != 0 {
		t.Fatalf("stats = %+v, want 1 published", s)
	}
	for len(broker.Topics()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("broker never received the alert")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := broker.Topics()[0]; got != "lookout/alerts" {
		t.Fatalf("topic = %q, want lookout/alerts", got)
	}
}

func TestRelay_ConnectCancelledDropsClient(t *testing.T) {
	r := New(Config{Broker: freeAddr(t), ClientID: "lookout-cancel"}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	err := r.Connect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Connect error = %v, want context.Canceled", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pub != nil {
		t.Fatalf("publisher kept after cancellation")
	}
}

func TestRelay_ConnectAfterCancelDoesNotDial(t *testing.T) {
	r := New(Config{Broker: freeAddr(t), ClientID: "lookout-cancel"}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Connect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Connect error = %v, want context.Canceled", err)
	}
	if r.Stats().Connected {
		t.Fatalf("Connected = true after cancelled Connect")
	}
}
