// Package bridge exposes the air conditioner on the Gray Logic MQTT bus.
//
// The bridge subscribes to command topics, translates incoming commands into
// device property writes, and publishes three kinds of messages back:
//
//   - Retained state snapshots on graylogic/state/aircon/{device_id},
//     refreshed on a poll interval and immediately after every successful
//     command.
//   - Command acknowledgments on graylogic/ack/aircon/{device_id}, one per
//     command, carrying an error code when the command failed.
//   - Retained health status on graylogic/health/aircon, published on an
//     interval by the HealthReporter.
//
// Command flow:
//
//	graylogic/command/aircon/{device_id}
//	    → CommandMessage (property + value)
//	    → write projection (property table)
//	    → dispatcher (serialised device write, cache invalidation)
//	    → ack + fresh retained state snapshot
//
// The bridge never talks to the appliance directly: reads go through the
// state cache and writes through the dispatcher, so TTL, single-flight,
// stale fallback and write ordering all apply to MQTT traffic exactly as
// they do to any other caller.
//
// Command outcomes are optionally recorded to the audit repository and to
// InfluxDB; both are nil-safe and the bridge runs without them.
package bridge
