package mqtt

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/epicure-publisher/internal/publisher"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends payload to topic and waits for the broker acknowledgement
// required by qos. Commands are never retained.
//
// QoS Levels:
//   - 0: At most once (returns once written)
//   - 1: At least once (waits for PUBACK)
//   - 2: Exactly once (waits for PUBCOMP)
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (t *Transport) Publish(ctx context.Context, topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if t.closed.Load() {
		return ErrClosed
	}
	if !t.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	token := t.client.Publish(topic, qos, false, payload)
	timer := time.NewTimer(defaultPublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: %w after %v", ErrPublishFailed, ErrTimeout, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	t.emit(publisher.Event{Type: publisher.EventPublished, MessageID: messageID(token)})
	return nil
}

// messageID returns the packet identifier assigned to a publish.
func messageID(token pahomqtt.Token) uint16 {
	if pt, ok := token.(*pahomqtt.PublishToken); ok {
		return pt.MessageID()
	}
	return 0
}
