// Package mqtt adapts paho.mqtt.golang to the publisher's transport interface.
//
// This package manages:
//   - Building paho options from config (TLS, credentials, persistent session)
//   - Starting connects in the background and reporting their outcome
//   - Single blocking reconnect attempts for the publisher's retry loop
//   - Acknowledged publishing with bounded waits
//
// paho's built-in reconnect is disabled. Connection changes are reported as
// publisher.Event values and the publisher decides what to do about them.
//
// # Security Considerations
//
//   - TLS is on by default and verifies the broker against the system roots
//   - The minimum TLS version comes from mqtt.broker.tls_version
//   - Credentials are never logged
//
// # Usage
//
//	tr, err := mqtt.NewTransport(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	pub, err := publisher.New(tr, opts)
//	if err != nil {
//	    return err
//	}
//	err = pub.Connect(ctx)
package mqtt
