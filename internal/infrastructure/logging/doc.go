// Package logging provides structured logging for the Epicure publisher.
//
// This package wraps Go's standard log/slog package so every component
// logs through the same handler with the same default fields.
//
// # Features
//
//   - JSON output for machine collection
//   - Text output (slog key=value) as the default
//   - Console output, colourised when attached to a terminal
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text, console
//	  output: "stderr"   # stderr, stdout
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("connected to MQTT broker", "host", cfg.MQTT.Broker.Host)
//
// # Security
//
// Never log broker passwords or the InfluxDB token.
package logging
