// Package publisher owns the connection state machine between the operator
// loop and the broker transport.
//
// It is made of three parts:
//   - Gate: the connected flag, the reconnection status and the backoff
//     state, all guarded by one mutex.
//   - Scheduler: the exponential-backoff reconnection loop. At most one runs
//     per disconnect episode and it is cancelled by an explicit shutdown.
//   - Publisher: the facade used by the application. It translates
//     transport notifications (Event) into Gate transitions and refuses to
//     publish while disconnected.
//
// The transport itself is abstracted behind the Transport interface; the
// paho-backed implementation lives in internal/infrastructure/mqtt.
//
// # Lifecycle
//
//	pub, err := publisher.New(transport, publisher.Options{Topic: "epicure/commands", QoS: 1})
//	if err := pub.Connect(ctx); err != nil {
//	    return err // fatal startup error
//	}
//	defer pub.Disconnect()
//
//	if err := pub.Publish(ctx, cmd); err != nil {
//	    // errors.Is(err, publisher.ErrNotConnected) while the broker is away
//	}
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. Transport callbacks may
// arrive on any goroutine; they never block on the reconnection loop.
package publisher
