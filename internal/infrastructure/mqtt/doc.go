// Package mqtt provides MQTT client connectivity for TwinScale Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// TwinScale uses MQTT as the live-update channel between the state store
// and this service. When a Thing is created, the schema store hands back a
// routing token naming the MQTT topic its live-state updates flow on; the
// mirror subscribes to that topic and fans updates out to WebSocket clients
// and the history store.
//
//	State Store → MQTT Broker → TwinScale Core → WebSocket / History
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all Thing state updates
//	err = client.Subscribe(mqtt.Topics{}.AllThingStates(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
