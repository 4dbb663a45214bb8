package mqtt

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/epicure-publisher/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds one connect attempt when the config leaves it unset.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is used when the config leaves keepalive unset.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2
)

// brokerURL returns the paho broker URL, ssl:// when TLS is enabled.
func brokerURL(b config.MQTTBrokerConfig) string {
	scheme := "tcp"
	if b.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(b.Host, strconv.Itoa(b.Port)))
}

// connectTimeout returns the configured per-attempt connect timeout.
func connectTimeout(cfg config.MQTTConfig) time.Duration {
	if d := cfg.Reconnect.GetConnectTimeout(); d > 0 {
		return d
	}
	return defaultConnectTimeout
}

// buildClientOptions creates paho MQTT options from the publisher config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID and credentials
//   - TLS with system roots and the configured minimum version
//   - Session persistence (clean_session false keeps the broker session)
//
// paho's own reconnect and connect-retry loops are switched off: the
// publisher core decides when and how often to reconnect.
func buildClientOptions(cfg config.MQTTConfig) (*pahomqtt.ClientOptions, error) {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(brokerURL(cfg.Broker))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(cfg.Broker.CleanSession)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(connectTimeout(cfg))
	opts.SetWriteTimeout(defaultPublishTimeout)
	opts.SetOrderMatters(false)

	keepAlive := cfg.Broker.KeepAliveDuration()
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	opts.SetKeepAlive(keepAlive)

	if cfg.Broker.TLS {
		minVersion, err := cfg.Broker.MinTLSVersion()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		opts.SetTLSConfig(&tls.Config{
			MinVersion: minVersion,
			ServerName: cfg.Broker.Host,
		})
	}

	return opts, nil
}
