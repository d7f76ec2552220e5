package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/twinscale/twinscale-core/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the disconnect grace period in milliseconds.
	defaultDisconnectQuiesce = 1000

	defaultKeepAlive = 60 * time.Second

	maxQoS = 2
)

// buildClientOptions translates the config.yaml mqtt section into paho
// options: broker URL, credentials, clean session, and auto-reconnect with
// backoff between the configured initial and max delays.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	return opts
}

// statusPayload is the message published to the system status topic, both
// by us (online, graceful shutdown) and by the broker as our Last Will.
type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (p statusPayload) encode() string {
	p.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, _ := json.Marshal(p) //nolint:errcheck // Fixed-shape struct cannot fail
	return string(data)
}

// configureLWT sets the Last Will: a retained offline status the broker
// publishes on our behalf after an unexpected disconnect, so subscribers
// can tell a crash from a clean shutdown.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	payload := statusPayload{
		Status:   "offline",
		ClientID: clientID,
		Reason:   "unexpected_disconnect",
	}
	opts.SetWill(Topics{}.SystemStatus(), payload.encode(), 1, true)
}

func buildOnlinePayload(clientID string) string {
	return statusPayload{Status: "online", ClientID: clientID}.encode()
}

func buildOfflinePayload(clientID string) string {
	return statusPayload{
		Status:   "offline",
		ClientID: clientID,
		Reason:   "graceful_shutdown",
	}.encode()
}
