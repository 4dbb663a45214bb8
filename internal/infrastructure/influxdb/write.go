package influxdb

import (
	"context"
	"maps"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/epicure-publisher/internal/audit"
)

// Measurement names.
const (
	MeasurementCommands   = "epicure_commands"
	MeasurementReconnects = "epicure_reconnects"
	MeasurementConnection = "epicure_connection"
)

// WriteCommandOutcome records one handled operator line.
// kind is empty for lines that never became a command.
func (c *Client) WriteCommandOutcome(kind, outcome string) {
	if kind == "" {
		kind = "none"
	}
	c.WritePoint(MeasurementCommands,
		map[string]string{"kind": kind, "outcome": outcome},
		map[string]any{"count": 1},
	)
}

// WriteReconnectAttempt records one scheduled reconnection attempt and
// the delay it waits before dialling.
func (c *Client) WriteReconnectAttempt(attempt int, delay time.Duration) {
	c.WritePoint(MeasurementReconnects,
		map[string]string{"event": "attempt"},
		map[string]any{"attempt": attempt, "delay_ms": delay.Milliseconds()},
	)
}

// WriteReconnectExhausted records an episode that gave up.
func (c *Client) WriteReconnectExhausted(attempts int) {
	c.WritePoint(MeasurementReconnects,
		map[string]string{"event": "exhausted"},
		map[string]any{"attempt": attempts},
	)
}

// WriteConnectionState records a broker connection change.
func (c *Client) WriteConnectionState(connected bool) {
	c.WritePoint(MeasurementConnection, nil, map[string]any{"connected": connected})
}

// WritePoint writes a custom point stamped now. Default tags are merged
// under tags. Dropped silently when the client is closed.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	c.mu.RLock()
	if !c.connected {
		c.mu.RUnlock()
		return
	}
	all := make(map[string]string, len(c.tags)+len(tags))
	maps.Copy(all, c.tags)
	c.mu.RUnlock()
	maps.Copy(all, tags)

	c.writeAPI.WritePoint(write.NewPoint(measurement, all, fields, timestamp))
}

// Record writes e as a command outcome point, so the client can sit next
// to the journal as a recorder of operator lines.
func (c *Client) Record(_ context.Context, e audit.Entry) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	c.WriteCommandOutcome(e.Kind, string(e.Outcome))
	return nil
}
