package mqtt

import "fmt"

// Topic constants for the Gray Logic MQTT bus.
//
// All bridge topics use the flat scheme: graylogic/{category}/{protocol}/{address}
// This matches what Core and the other protocol bridges subscribe to.
const (
	// TopicPrefix is the base for all Gray Logic topics.
	TopicPrefix = "graylogic"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"

	// Protocol is this bridge's protocol identifier on the bus.
	Protocol = "aircon"
)

// Topics provides builders for the MQTT topics this bridge uses.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.BridgeState("aircon-01")
//	// Returns: "graylogic/state/aircon/aircon-01"
type Topics struct{}

// BridgeState returns the topic for retained device state snapshots.
//
// Example: graylogic/state/aircon/aircon-01
func (Topics) BridgeState(address string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, Protocol, address)
}

// BridgeCommand returns the topic Core publishes commands to.
//
// Example: graylogic/command/aircon/aircon-01
func (Topics) BridgeCommand(address string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, Protocol, address)
}

// BridgeAck returns the topic for command acknowledgements.
//
// Example: graylogic/ack/aircon/aircon-01
func (Topics) BridgeAck(address string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefix, Protocol, address)
}

// BridgeHealth returns the topic for this bridge's health status.
// Health messages are retained so Core sees the last known status.
//
// Example: graylogic/health/aircon
func (Topics) BridgeHealth() string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, Protocol)
}

// SystemStatus returns the shared system status topic used for
// client online/offline announcements.
//
// Example: graylogic/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every command addressed to
// this bridge, regardless of device address.
//
// Pattern: graylogic/command/aircon/#
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/%s/#", TopicPrefix, Protocol)
}
