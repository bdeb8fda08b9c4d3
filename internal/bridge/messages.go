package bridge

import (
	"time"
)

// MQTT message types exchanged between Gray Logic Core and the aircon bridge.

// Protocol is the protocol identifier carried in every bus message.
const Protocol = "aircon"

// CommandMessage is sent from Core to the bridge to change a device property.
// Topic: graylogic/command/aircon/{device_id}
type CommandMessage struct {
	// ID uniquely identifies this command for correlation with acknowledgments.
	ID string `json:"id"`

	// Timestamp is when the command was issued (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// DeviceID is the Gray Logic device identifier.
	DeviceID string `json:"device_id"`

	// Property is the property to change (e.g., "power", "target_temperature").
	Property string `json:"property"`

	// Value is the desired property value. Its type depends on the property:
	//   power:              bool
	//   target_temperature: number (°C)
	//   mode:               string
	//   fan_speed:          number
	Value any `json:"value"`

	// Source indicates where the command originated.
	// Values: "api", "automation", "voice", "scene"
	Source string `json:"source"`
}

// AckStatus represents the acknowledgment status of a command.
type AckStatus string

const (
	// AckAccepted indicates the command was applied to the device.
	AckAccepted AckStatus = "accepted"

	// AckFailed indicates the command could not be executed.
	AckFailed AckStatus = "failed"

	// AckTimeout indicates the device did not respond within the timeout.
	AckTimeout AckStatus = "timeout"
)

// AckMessage is sent from the bridge to Core to acknowledge a command.
// Topic: graylogic/ack/aircon/{device_id}
type AckMessage struct {
	// CommandID is the ID from the original command.
	CommandID string `json:"command_id"`

	// Timestamp is when the acknowledgment was sent (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// DeviceID is the Gray Logic device identifier.
	DeviceID string `json:"device_id"`

	// Status indicates the acknowledgment status.
	Status AckStatus `json:"status"`

	// Protocol is the protocol identifier ("aircon").
	Protocol string `json:"protocol"`

	// Property is the property the command targeted.
	Property string `json:"property"`

	// Error contains details if status is "failed" or "timeout".
	Error *AckError `json:"error,omitempty"`
}

// AckError contains error details for failed commands.
type AckError struct {
	// Code is the error code (e.g., "DEVICE_UNREACHABLE", "INVALID_VALUE").
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`
}

// Error codes for command failures.
const (
	ErrCodeDeviceUnreachable = "DEVICE_UNREACHABLE"
	ErrCodeAuthFailed        = "AUTH_FAILED"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeUnknownProperty   = "UNKNOWN_PROPERTY"
	ErrCodeReadOnlyProperty  = "READ_ONLY_PROPERTY"
	ErrCodeInvalidValue      = "INVALID_VALUE"
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeNotConfigured     = "NOT_CONFIGURED"
	ErrCodeBridgeError       = "BRIDGE_ERROR"
)

// StateMessage carries a full device state snapshot.
// Topic: graylogic/state/aircon/{device_id}
// QoS: 1, Retained: Yes
type StateMessage struct {
	// DeviceID is the Gray Logic device identifier.
	DeviceID string `json:"device_id"`

	// Timestamp is when the state was observed (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// State contains the projected property values, e.g.
	//   {"power": true, "current_temperature": 23.5, "target_temperature": 21,
	//    "mode": "Cool", "operating_state": "cooling", "fan_speed": 2,
	//    "swing": true, "auto_clean": false}
	State map[string]any `json:"state"`

	// Protocol is the protocol identifier ("aircon").
	Protocol string `json:"protocol"`
}

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is operating with issues.
	HealthDegraded HealthStatus = "degraded"

	// HealthOffline indicates the bridge is not connected (from LWT).
	HealthOffline HealthStatus = "offline"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage reports bridge operational status to Core.
// Topic: graylogic/health/aircon
// QoS: 1, Retained: Yes
type HealthMessage struct {
	// Bridge is the bridge identifier (e.g., "aircon-bridge-01").
	Bridge string `json:"bridge"`

	// Timestamp is when the health status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the current operational status.
	Status HealthStatus `json:"status"`

	// Version is the bridge software version.
	Version string `json:"version,omitempty"`

	// UptimeSeconds is how long the bridge has been running.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// Device contains appliance contact details.
	Device *DeviceStatus `json:"device,omitempty"`

	// Statistics contains operational metrics.
	Statistics *Statistics `json:"statistics,omitempty"`

	// Reason explains the status (especially for offline/degraded).
	Reason string `json:"reason,omitempty"`
}

// DeviceStatus describes appliance reachability as observed by the cache.
type DeviceStatus struct {
	// Status is "reachable" or "unreachable".
	Status string `json:"status"`

	// LastContact is when the last successful state fetch completed.
	LastContact *time.Time `json:"last_contact,omitempty"`
}

// Statistics contains operational metrics.
type Statistics struct {
	// CommandsProcessed is the number of commands applied successfully.
	CommandsProcessed uint64 `json:"commands_processed"`

	// CommandsFailed is the number of commands that failed.
	CommandsFailed uint64 `json:"commands_failed"`

	// StatePublishes is the number of state snapshots published.
	StatePublishes uint64 `json:"state_publishes"`
}

// NewAckMessage creates an acknowledgment message for a command.
func NewAckMessage(cmd CommandMessage, status AckStatus) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		DeviceID:  cmd.DeviceID,
		Status:    status,
		Protocol:  Protocol,
		Property:  cmd.Property,
	}
}

// NewAckError creates an acknowledgment with error details.
func NewAckError(cmd CommandMessage, code, message string) AckMessage {
	status := AckFailed
	if code == ErrCodeTimeout {
		status = AckTimeout
	}
	ack := NewAckMessage(cmd, status)
	ack.Error = &AckError{
		Code:    code,
		Message: message,
	}
	return ack
}

// NewStateMessage creates a state message for a device.
func NewStateMessage(deviceID string, state map[string]any) StateMessage {
	return StateMessage{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC(),
		State:     state,
		Protocol:  Protocol,
	}
}

// NewHealthMessage creates a health status message.
func NewHealthMessage(bridgeID, version string, status HealthStatus, stats Statistics, lastContact *time.Time, startTime time.Time) HealthMessage {
	msg := HealthMessage{
		Bridge:        bridgeID,
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Version:       version,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Statistics:    &stats,
	}

	if lastContact != nil {
		msg.Device = &DeviceStatus{
			Status:      "reachable",
			LastContact: lastContact,
		}
	} else {
		msg.Device = &DeviceStatus{
			Status: "unreachable",
		}
	}

	return msg
}

// NewLWTMessage creates a Last Will and Testament message for MQTT.
// The broker publishes it if the bridge disconnects unexpectedly.
func NewLWTMessage(bridgeID string) HealthMessage {
	return HealthMessage{
		Bridge:    bridgeID,
		Timestamp: time.Now().UTC(),
		Status:    HealthOffline,
		Reason:    "unexpected_disconnect",
	}
}
