package mqtt

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/epicure-publisher/internal/infrastructure/config"
	"github.com/nerrad567/epicure-publisher/internal/publisher"
)

// Transport adapts paho.mqtt.golang to publisher.Transport.
//
// Connection notifications from paho callbacks are translated into
// publisher.Event values and delivered to the registered handler.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - No events are delivered after Close.
type Transport struct {
	client         pahomqtt.Client
	cfg            config.MQTTConfig
	connectTimeout time.Duration

	// lookupHost resolves the broker host before a connect is started.
	lookupHost func(ctx context.Context, host string) ([]string, error)

	handler   publisher.EventHandler
	handlerMu sync.RWMutex

	closed atomic.Bool

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

var _ publisher.Transport = (*Transport)(nil)

// NewTransport builds a paho client from cfg without connecting.
//
// Returns:
//   - *Transport: Ready for SetEventHandler and Connect
//   - error: ErrInvalidConfig if the TLS settings are unusable
func NewTransport(cfg config.MQTTConfig) (*Transport, error) {
	opts, err := buildClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	t := &Transport{
		cfg:            cfg,
		connectTimeout: connectTimeout(cfg),
		lookupHost:     net.DefaultResolver.LookupHost,
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		t.emit(publisher.Event{Type: publisher.EventConnected})
	})

	// paho does not call this for Disconnect initiated by us.
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		t.emit(publisher.Event{Type: publisher.EventDisconnected, Err: err})
	})

	t.client = pahomqtt.NewClient(opts)
	return t, nil
}

// SetEventHandler registers the publisher's notification sink.
func (t *Transport) SetEventHandler(h publisher.EventHandler) {
	t.handlerMu.Lock()
	t.handler = h
	t.handlerMu.Unlock()
}

// SetLogger sets a logger for handler panics and shutdown problems.
func (t *Transport) SetLogger(logger Logger) {
	t.loggerMu.Lock()
	t.logger = logger
	t.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (t *Transport) getLogger() Logger {
	t.loggerMu.RLock()
	defer t.loggerMu.RUnlock()
	return t.logger
}

// Connect validates the broker address and starts the session in the
// background. The result arrives as EventConnected or EventConnectFailed.
//
// Returns:
//   - error: ErrInvalidConfig for an empty host, ErrConnectionFailed when
//     the host cannot be resolved. Nil once the attempt is under way.
func (t *Transport) Connect(ctx context.Context) error {
	if t.closed.Load() {
		return ErrClosed
	}
	host := t.cfg.Broker.Host
	if host == "" {
		return fmt.Errorf("%w: broker host is empty", ErrInvalidConfig)
	}
	if _, err := t.lookupHost(ctx, host); err != nil {
		return fmt.Errorf("%w: resolving %s: %w", ErrConnectionFailed, host, err)
	}
	if t.client.IsConnected() {
		return nil
	}

	token := t.client.Connect()
	go t.awaitConnect(token)
	return nil
}

// awaitConnect reports the outcome of a background connect.
// Success is reported by the on-connect handler.
func (t *Transport) awaitConnect(token pahomqtt.Token) {
	<-token.Done()
	if err := token.Error(); err != nil {
		t.emit(publisher.Event{
			Type: publisher.EventConnectFailed,
			Code: returnCode(token),
			Err:  err,
		})
	}
}

// Reconnect performs one blocking connection attempt bounded by the
// connect timeout. It returns nil once the broker accepted the session.
func (t *Transport) Reconnect(ctx context.Context) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if t.client.IsConnected() {
		return nil
	}

	token := t.client.Connect()
	timer := time.NewTimer(t.connectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		go t.abandonConnect(token)
		return ctx.Err()
	case <-timer.C:
		go t.abandonConnect(token)
		return fmt.Errorf("%w: connect after %v", ErrTimeout, t.connectTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return nil
}

// abandonConnect drops a session that completes after its caller gave up
// because the transport was closed in the meantime.
func (t *Transport) abandonConnect(token pahomqtt.Token) {
	<-token.Done()
	if token.Error() == nil && t.closed.Load() {
		t.client.Disconnect(0)
	}
}

// Disconnect ends the session with a quiesce period for in-flight
// messages and reports an expected disconnect.
//
// Returns:
//   - error: ErrNotConnected if there was no open session
func (t *Transport) Disconnect() error {
	if !t.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	t.client.Disconnect(defaultDisconnectQuiesce)
	t.emit(publisher.Event{Type: publisher.EventDisconnected, Expected: true})
	return nil
}

// Close stops all network activity and event delivery. Safe to call repeatedly.
func (t *Transport) Close() {
	if t.closed.Swap(true) {
		return
	}
	if t.client.IsConnectionOpen() {
		t.client.Disconnect(0)
	}
}

// IsConnected reports whether paho holds an open session.
func (t *Transport) IsConnected() bool {
	return t.client.IsConnectionOpen()
}

// emit delivers ev to the handler, recovering handler panics.
func (t *Transport) emit(ev publisher.Event) {
	if t.closed.Load() {
		return
	}

	t.handlerMu.RLock()
	h := t.handler
	t.handlerMu.RUnlock()
	if h == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			if logger := t.getLogger(); logger != nil {
				logger.Error("MQTT event handler panic recovered",
					"event", ev.Type.String(),
					"panic", r,
				)
			}
		}
	}()

	h(ev)
}

// returnCode extracts the CONNACK return code from a connect token.
func returnCode(token pahomqtt.Token) int {
	if ct, ok := token.(*pahomqtt.ConnectToken); ok {
		return int(ct.ReturnCode())
	}
	return 0
}
