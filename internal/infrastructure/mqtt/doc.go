// Package mqtt provides MQTT client connectivity for the Gray Logic
// Aircon Bridge.
//
// This package manages:
//   - Connection to the Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the internal message bus connecting Gray Logic Core to its
// protocol bridges. This bridge speaks for a single air conditioner:
// it subscribes to command topics, publishes retained state snapshots,
// and reports health on the shared topic scheme.
//
//	Gray Logic Core ↔ MQTT Broker ↔ Aircon Bridge ↔ Air Conditioner
//
// # Topic Scheme
//
// All bridge topics use the flat scheme graylogic/{category}/aircon/{address}:
//
//	graylogic/command/aircon/aircon-01   commands from Core
//	graylogic/ack/aircon/aircon-01       command acknowledgements
//	graylogic/state/aircon/aircon-01     retained state snapshots
//	graylogic/health/aircon              retained bridge health
//
// The broker-side LWT publishes an offline health message if the bridge
// disconnects unexpectedly, so Core can distinguish a crashed bridge
// from a silent one.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL and never logged
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Bridge.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.BridgeCommand("aircon-01"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
