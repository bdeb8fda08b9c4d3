// Package influxdb provides InfluxDB connectivity for the Gray Logic
// Aircon Bridge.
//
// It wraps the official influxdb-client-go v2 library with the connection
// management, batched writing, and health monitoring patterns used across
// the Gray Logic services.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Climate telemetry (measured and target temperature, fan speed)
//   - Power state transitions
//   - Command outcomes and latency
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "graylogic",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteClimateSample("aircon-01", 23.5, 25.0, true, 2)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps the poll loop cheap even at short poll intervals.
package influxdb
