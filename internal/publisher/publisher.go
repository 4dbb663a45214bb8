package publisher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/epicure-publisher/internal/command"
)

// maxQoS is the highest MQTT QoS level.
const maxQoS = 2

// shutdownWait bounds how long Disconnect waits for a cancelled
// reconnection loop to exit.
const shutdownWait = 5 * time.Second

// Options configures a Publisher.
type Options struct {
	// Topic is the single outbound topic.
	Topic string

	// QoS used for every publish. 1 gives at-least-once delivery.
	QoS byte

	// Backoff bounds the reconnection loop. Zero values take the defaults.
	Backoff BackoffPolicy

	// Logger receives connection and retry progress. Optional.
	Logger Logger

	// OnStateChange is called after every connect or disconnect notification.
	OnStateChange func(connected bool)

	// OnReconnectAttempt is called before each reconnection wait.
	OnReconnectAttempt func(attempt int, delay time.Duration)

	// OnReconnectExhausted is called when an episode gives up.
	OnReconnectExhausted func(attempts int)
}

// Stats is a point-in-time snapshot of the publisher.
type Stats struct {
	State        ConnectionState
	Reconnecting bool
	Attempts     int
	Delay        time.Duration
	Published    uint64
	Failed       uint64
}

// Publisher composes the transport, the Gate and the Scheduler.
type Publisher struct {
	transport Transport
	gate      *Gate
	scheduler *Scheduler
	opts      Options
	logger    Logger

	mu     sync.Mutex
	closed bool

	published atomic.Uint64
	failed    atomic.Uint64
}

// New creates a Publisher and registers it as the transport's event handler.
func New(transport Transport, opts Options) (*Publisher, error) {
	if transport == nil {
		return nil, ErrNoTransport
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("%w: topic cannot be empty", ErrInvalidOptions)
	}
	if opts.QoS > maxQoS {
		return nil, fmt.Errorf("%w: qos %d (must be 0, 1, or 2)", ErrInvalidOptions, opts.QoS)
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	policy := opts.Backoff.normalised()

	p := &Publisher{
		transport: transport,
		opts:      opts,
		logger:    logger,
	}
	p.scheduler = &Scheduler{
		reconnect:   transport.Reconnect,
		logger:      logger,
		policy:      policy,
		onAttempt:   opts.OnReconnectAttempt,
		onExhausted: opts.OnReconnectExhausted,
		after:       time.After,
	}
	p.gate = NewGate(policy, p.scheduler.Run)
	p.scheduler.gate = p.gate

	transport.SetEventHandler(p.HandleEvent)
	return p, nil
}

// Connect resets the backoff state and initiates the broker session.
// It does not wait for the broker: the outcome arrives as an Event.
// An error means the session could not even be started.
func (p *Publisher) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.gate.ResetBackoff()
	if err := p.transport.Connect(ctx); err != nil {
		p.logger.Error("connection error", "error", err)
		return fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}

	p.logger.Info("connection initiated")
	return nil
}

// Publish sends cmd on the configured topic. While disconnected it fails
// fast with ErrNotConnected and performs no send; failed commands are not
// queued or replayed.
func (p *Publisher) Publish(ctx context.Context, cmd command.Command) error {
	if cmd.IsZero() {
		return ErrInvalidCommand
	}

	if !p.gate.CanPublish() {
		p.failed.Add(1)
		p.logger.Error("not connected to broker", "command", cmd.String())
		return ErrNotConnected
	}

	if err := p.transport.Publish(ctx, p.opts.Topic, cmd.Payload(), p.opts.QoS); err != nil {
		p.failed.Add(1)
		p.logger.Error("publish failed", "command", cmd.String(), "error", err)
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	p.published.Add(1)
	p.logger.Info("published", "command", cmd.String(), "topic", p.opts.Topic)
	return nil
}

// Disconnect disables reconnection, ends the session and stops the
// transport's network processing. Calling it more than once is a no-op.
func (p *Publisher) Disconnect() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	// Reconnection must be off before the transport disconnect so the
	// resulting notification cannot start a new episode.
	episodeDone := p.gate.DisableReconnect()

	var err error
	if p.gate.IsConnected() {
		if derr := p.transport.Disconnect(); derr != nil {
			p.logger.Warn("error during disconnect", "error", derr)
			err = derr
		}
	}

	p.transport.Close()
	p.gate.MarkDisconnected(true)

	select {
	case <-episodeDone:
	case <-time.After(shutdownWait):
		p.logger.Warn("reconnection loop did not stop in time", "timeout", shutdownWait)
	}

	p.logger.Info("disconnected from broker")
	return err
}

// HandleEvent applies a transport notification. It never blocks on the
// reconnection loop, so it is safe to call from transport callbacks.
func (p *Publisher) HandleEvent(ev Event) {
	switch ev.Type {
	case EventConnected:
		p.gate.MarkConnected()
		p.logger.Info("connected to MQTT broker")
		p.notifyState(true)

	case EventConnectFailed:
		p.logger.Error("connection failed", "code", ev.Code, "error", ev.Err)

	case EventDisconnected:
		started := p.gate.MarkDisconnected(ev.Expected)
		if ev.Expected {
			p.logger.Info("disconnected from MQTT broker")
		} else {
			p.logger.Warn("unexpected disconnection", "code", ev.Code, "error", ev.Err)
			if started {
				p.logger.Info("triggering automatic reconnection")
			}
		}
		p.notifyState(false)

	case EventPublished:
		p.logger.Debug("message published", "message_id", ev.MessageID)

	default:
		p.logger.Warn("ignoring unknown transport event", "type", int(ev.Type))
	}
}

// IsConnected reports whether publishing is currently possible.
func (p *Publisher) IsConnected() bool {
	return p.gate.IsConnected()
}

// Stats returns a snapshot of the connection and publish counters.
func (p *Publisher) Stats() Stats {
	b := p.gate.Backoff()
	return Stats{
		State:        p.gate.State(),
		Reconnecting: p.gate.Status() == ReconnectInProgress,
		Attempts:     b.Attempts,
		Delay:        b.Delay,
		Published:    p.published.Load(),
		Failed:       p.failed.Load(),
	}
}

func (p *Publisher) notifyState(connected bool) {
	if p.opts.OnStateChange != nil {
		p.opts.OnStateChange(connected)
	}
}
