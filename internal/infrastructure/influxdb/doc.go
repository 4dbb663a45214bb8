// Package influxdb records publisher telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Telemetry is
// optional: Connect returns ErrDisabled when influxdb.enabled is false and
// the publisher runs without it.
//
// # Measurements
//
//   - epicure_commands: one point per operator line (tags kind, outcome)
//   - epicure_reconnects: reconnection attempts and give-ups
//   - epicure_connection: broker connection changes
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteConnectionState(true)
//
// # Error Handling
//
// Writes are non-blocking and batched. Write failures arrive through the
// SetOnError callback. Connection and health check errors are returned directly.
package influxdb
