package mqtt

import (
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/epicure-publisher/internal/infrastructure/config"
	"github.com/nerrad567/epicure-publisher/internal/publisher"
)

// testBroker is an in-process MQTT broker on a loopback port.
type testBroker struct {
	server   *mochi.Server
	addr     string
	stopOnce sync.Once
}

// freeAddr returns a loopback address with a currently unused port.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// startBroker runs a permissive broker on addr until the test ends.
func startBroker(t *testing.T, addr string) *testBroker {
	t.Helper()

	server := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, server.AddHook(new(auth.AllowHook), nil))
	require.NoError(t, server.AddListener(listeners.NewTCP(listeners.Config{ID: "test", Address: addr})))

	go func() {
		_ = server.Serve()
	}()

	b := &testBroker{server: server, addr: addr}
	t.Cleanup(b.stop)
	return b
}

func (b *testBroker) stop() {
	b.stopOnce.Do(func() {
		_ = b.server.Close()
	})
}

// received collects payloads delivered to topic.
type received struct {
	mu       sync.Mutex
	payloads []string
}

func (r *received) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...)
}

func (b *testBroker) subscribe(t *testing.T, topic string) *received {
	t.Helper()
	r := &received{}
	err := b.server.Subscribe(topic, 1, func(_ *mochi.Client, _ packets.Subscription, pk packets.Packet) {
		r.mu.Lock()
		r.payloads = append(r.payloads, string(pk.Payload))
		r.mu.Unlock()
	})
	require.NoError(t, err)
	return r
}

// brokerConfig returns a plain-TCP config pointing at addr.
func brokerConfig(t *testing.T, addr, clientID string) config.MQTTConfig {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:      host,
			Port:      port,
			ClientID:  clientID,
			KeepAlive: 5,
		},
		Topic: "epicure/commands",
		QoS:   1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay:   1,
			MaxDelay:       1,
			MaxAttempts:    0,
			ConnectTimeout: 2,
		},
	}
}

// eventRecorder captures transport events.
type eventRecorder struct {
	mu     sync.Mutex
	events []publisher.Event
	ch     chan publisher.Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{ch: make(chan publisher.Event, 64)}
}

func (r *eventRecorder) handle(ev publisher.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.ch <- ev:
	default:
	}
}

// waitFor returns the next event of type typ or fails after timeout.
func (r *eventRecorder) waitFor(t *testing.T, typ publisher.EventType, timeout time.Duration) publisher.Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-r.ch:
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event within %v", typ, timeout)
			return publisher.Event{}
		}
	}
}

func (r *eventRecorder) count(typ publisher.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
