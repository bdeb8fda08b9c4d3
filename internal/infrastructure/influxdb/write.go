package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteClimateSample records one climate snapshot for the air conditioner.
//
// This is the primary telemetry method, called after each successful state
// refresh. The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Gray Logic device identifier (e.g., "aircon-01")
//   - currentC: Measured room temperature in Celsius
//   - targetC: Desired temperature setpoint in Celsius
//   - powerOn: Whether the unit is powered on
//   - fanSpeed: Current fan speed level
//
// Example:
//
//	client.WriteClimateSample("aircon-01", 23.5, 25.0, true, 2)
func (c *Client) WriteClimateSample(deviceID string, currentC, targetC float64, powerOn bool, fanSpeed int) {
	c.WritePoint(
		"climate",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"current_c": currentC,
			"target_c":  targetC,
			"power_on":  powerOn,
			"fan_speed": fanSpeed,
		},
	)
}

// WriteCommandMetric records the outcome of a dispatched command.
//
// Used to track command latency and failure rates per property.
//
// Parameters:
//   - deviceID: Gray Logic device identifier
//   - property: The property the command targeted (e.g., "target_temperature")
//   - success: Whether the device accepted the write
//   - duration: Round-trip time for the device write
func (c *Client) WriteCommandMetric(deviceID, property string, success bool, duration time.Duration) {
	c.WritePoint(
		"commands",
		map[string]string{
			"device_id": deviceID,
			"property":  property,
		},
		map[string]interface{}{
			"success":     success,
			"duration_ms": float64(duration.Milliseconds()),
		},
	)
}

// WritePoint writes a point with full control over tags and fields.
//
// The typed helpers above route through here; call it directly for
// measurements that don't fit them.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
