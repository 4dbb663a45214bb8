package publisher

import "errors"

// Domain-specific errors for publisher operations.
var (
	// ErrNotConnected is returned by Publish while the gate reports disconnected.
	// Nothing is sent and nothing is queued.
	ErrNotConnected = errors.New("publisher: not connected to broker")

	// ErrPublishFailed is returned when the transport rejects or fails a send.
	ErrPublishFailed = errors.New("publisher: publish failed")

	// ErrConnectFailed is returned when the initial connection cannot be initiated.
	ErrConnectFailed = errors.New("publisher: connection failed")

	// ErrClosed is returned by Connect after Disconnect has been called.
	ErrClosed = errors.New("publisher: closed")

	// ErrNoTransport is returned by New when no transport is supplied.
	ErrNoTransport = errors.New("publisher: transport is required")

	// ErrInvalidOptions is returned by New for an empty topic or QoS above 2.
	ErrInvalidOptions = errors.New("publisher: invalid options")

	// ErrInvalidCommand is returned when Publish receives a zero Command.
	ErrInvalidCommand = errors.New("publisher: command was not produced by the validator")
)
