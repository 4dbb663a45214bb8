package publisher

import "context"

// EventType identifies a transport notification.
type EventType int

const (
	// EventConnected is delivered when the broker accepted the connection.
	EventConnected EventType = iota + 1

	// EventConnectFailed is delivered when an asynchronous connect was refused
	// or could not reach the broker. Code carries the CONNACK return code when known.
	EventConnectFailed

	// EventDisconnected is delivered whenever the session ends. Expected is
	// true only for disconnects requested through Transport.Disconnect.
	EventDisconnected

	// EventPublished is delivered when the broker acknowledged a message.
	EventPublished
)

// String returns the event type name for logging.
func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventConnectFailed:
		return "connect_failed"
	case EventDisconnected:
		return "disconnected"
	case EventPublished:
		return "published"
	default:
		return "unknown"
	}
}

// Event is a transport notification expressed independently of the
// transport library's callback signatures.
type Event struct {
	Type      EventType
	Code      int
	Expected  bool
	MessageID uint16
	Err       error
}

// EventHandler receives transport notifications. It must not block.
type EventHandler func(Event)

// Transport is the broker wire interface the publisher drives.
//
// Implementations deliver notifications through the handler registered
// with SetEventHandler, which the publisher calls exactly once from New.
type Transport interface {
	// SetEventHandler registers the notification sink.
	SetEventHandler(h EventHandler)

	// Connect initiates the session and starts network processing without
	// waiting for the broker. Errors mean the attempt could not be started.
	Connect(ctx context.Context) error

	// Reconnect performs one blocking connection attempt.
	Reconnect(ctx context.Context) error

	// Publish sends payload and returns once the broker acknowledged it.
	Publish(ctx context.Context, topic string, payload []byte, qos byte) error

	// Disconnect ends the session cleanly.
	Disconnect() error

	// Close stops background network processing. Safe to call repeatedly.
	Close()
}
