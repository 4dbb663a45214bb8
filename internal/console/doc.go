// Package console is the operator surface of the publisher.
//
// A Session turns one line of input into a validated command, checks the
// connection gate, publishes and prints the outcome. Every outcome is handed
// to the configured Recorders (the SQLite journal and InfluxDB telemetry).
// Shell drives a Session from a readline prompt, passing every line through
// unchanged.
//
// Output lines match what operators already script against:
//
//	[OK] Motor command sent
//	[ERROR] Invalid command format: <reason>
//	[ERROR] Not connected to MQTT broker yet. Please wait...
//	[ERROR] Failed to send command
package console
