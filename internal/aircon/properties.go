package aircon

import (
	"fmt"
	"math"
)

// PropertyID identifies an exposed device property.
type PropertyID string

// Exposed properties. The set and legal value ranges are fixed metadata,
// not runtime-negotiated.
const (
	PropPower              PropertyID = "power"
	PropCurrentTemperature PropertyID = "current_temperature"
	PropTargetTemperature  PropertyID = "target_temperature"
	PropMode               PropertyID = "mode"
	PropOperatingState     PropertyID = "operating_state"
	PropFanSpeed           PropertyID = "fan_speed"
	PropSwing              PropertyID = "swing"
	PropAutoClean          PropertyID = "auto_clean"
)

// Raw values used by the appliance API.
const (
	powerOn  = "On"
	powerOff = "Off"

	optionSwingOn  = "NanoMode"
	optionSwingOff = "NanoMode_Off"

	optionAutoCleanOn  = "Autoclean_On"
	optionAutoCleanOff = "Autoclean_Off"
)

// Operating states projected from the active mode.
const (
	StateCooling = "cooling"
	StateIdle    = "idle"
)

// Target temperature limits in °C.
const (
	TemperatureMin  = 18
	TemperatureMax  = 30
	TemperatureStep = 1
)

// coolingModes are the operating modes projected as "cooling".
var coolingModes = map[string]bool{
	"CoolClean": true,
	"Cool":      true,
	"Dry":       true,
	"DryClean":  true,
	"Auto":      true,
	"Wind":      true,
}

// settableModes are the operating modes accepted by the mode write projection.
var settableModes = map[string]bool{
	"Auto":      true,
	"Cool":      true,
	"CoolClean": true,
	"Dry":       true,
	"DryClean":  true,
	"Heat":      true,
	"Wind":      true,
}

// maxFanSpeed is the highest wind speed level the appliance accepts.
const maxFanSpeed = 5

// Property describes one exposed device property: a pure read projection out
// of a snapshot and, where writable, a pure write projection into a
// device-relative path and partial payload.
//
// Both projections are side-effect-free. Adding a property means adding a
// table entry; StateCache and Dispatcher are untouched.
type Property struct {
	// ID is the stable property identifier.
	ID PropertyID

	// Writable reports whether the property accepts commands.
	Writable bool

	// Read projects the property value out of a device snapshot.
	Read func(s DeviceState) any

	// Write projects a desired value into a device-relative path and
	// partial update payload. nil for read-only properties.
	Write func(value any) (path string, payload map[string]any, err error)
}

// propertyTable is the single registration point for exposed properties.
var propertyTable = []Property{
	{
		ID:       PropPower,
		Writable: true,
		Read: func(s DeviceState) any {
			return s.Power == powerOn
		},
		Write: func(value any) (string, map[string]any, error) {
			on, err := asBool(PropPower, value)
			if err != nil {
				return "", nil, err
			}
			power := powerOff
			if on {
				power = powerOn
			}
			return "/", map[string]any{"Operation": map[string]any{"power": power}}, nil
		},
	},
	{
		ID: PropCurrentTemperature,
		Read: func(s DeviceState) any {
			return s.CurrentTemperature
		},
	},
	{
		ID:       PropTargetTemperature,
		Writable: true,
		Read: func(s DeviceState) any {
			return s.TargetTemperature
		},
		Write: func(value any) (string, map[string]any, error) {
			v, err := asNumber(PropTargetTemperature, value)
			if err != nil {
				return "", nil, err
			}
			if v < TemperatureMin || v > TemperatureMax || v != math.Trunc(v) {
				return "", nil, fmt.Errorf("%w: target temperature %v outside %d-%d step %d",
					ErrInvalidValue, v, TemperatureMin, TemperatureMax, TemperatureStep)
			}
			return "/temperatures/0", map[string]any{"desired": v}, nil
		},
	},
	{
		ID:       PropMode,
		Writable: true,
		Read: func(s DeviceState) any {
			return s.OperatingMode()
		},
		Write: func(value any) (string, map[string]any, error) {
			mode, err := asString(PropMode, value)
			if err != nil {
				return "", nil, err
			}
			if !settableModes[mode] {
				return "", nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidValue, mode)
			}
			return "/mode", map[string]any{"modes": []string{mode}}, nil
		},
	},
	{
		ID: PropOperatingState,
		Read: func(s DeviceState) any {
			if coolingModes[s.OperatingMode()] {
				return StateCooling
			}
			return StateIdle
		},
	},
	{
		ID:       PropFanSpeed,
		Writable: true,
		Read: func(s DeviceState) any {
			return s.FanSpeed
		},
		Write: func(value any) (string, map[string]any, error) {
			v, err := asNumber(PropFanSpeed, value)
			if err != nil {
				return "", nil, err
			}
			if v < 0 || v > maxFanSpeed || v != math.Trunc(v) {
				return "", nil, fmt.Errorf("%w: fan speed %v outside 0-%d", ErrInvalidValue, v, maxFanSpeed)
			}
			return "/wind", map[string]any{"speedLevel": int(v)}, nil
		},
	},
	{
		ID:       PropSwing,
		Writable: true,
		Read: func(s DeviceState) any {
			return s.HasOption(optionSwingOn)
		},
		Write: func(value any) (string, map[string]any, error) {
			on, err := asBool(PropSwing, value)
			if err != nil {
				return "", nil, err
			}
			option := optionSwingOff
			if on {
				option = optionSwingOn
			}
			return "/mode", map[string]any{"options": []string{option}}, nil
		},
	},
	{
		ID:       PropAutoClean,
		Writable: true,
		Read: func(s DeviceState) any {
			return s.HasOption(optionAutoCleanOn)
		},
		Write: func(value any) (string, map[string]any, error) {
			on, err := asBool(PropAutoClean, value)
			if err != nil {
				return "", nil, err
			}
			option := optionAutoCleanOff
			if on {
				option = optionAutoCleanOn
			}
			return "/mode", map[string]any{"options": []string{option}}, nil
		},
	},
}

// Properties returns the exposed property table in declaration order.
func Properties() []Property {
	out := make([]Property, len(propertyTable))
	copy(out, propertyTable)
	return out
}

// LookupProperty finds a property by ID.
func LookupProperty(id PropertyID) (Property, bool) {
	for _, p := range propertyTable {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}

// ProjectAll reads every property out of a snapshot, keyed by property ID.
func ProjectAll(s DeviceState) map[string]any {
	out := make(map[string]any, len(propertyTable))
	for _, p := range propertyTable {
		out[string(p.ID)] = p.Read(s)
	}
	return out
}

// WriteProjection resolves a property write into its transport path and
// payload. It returns ErrUnknownProperty for IDs outside the table and
// ErrReadOnly for properties without a write projection.
func WriteProjection(id PropertyID, value any) (string, map[string]any, error) {
	p, ok := LookupProperty(id)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownProperty, id)
	}
	if !p.Writable {
		return "", nil, fmt.Errorf("%w: %q", ErrReadOnly, id)
	}
	return p.Write(value)
}

// asBool coerces a property value to bool. JSON decoding yields bool for
// true/false literals; anything else is rejected.
func asBool(id PropertyID, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s expects a boolean, got %T", ErrInvalidValue, id, value)
	}
	return b, nil
}

// asNumber coerces a property value to float64. JSON decoding yields float64
// for all numbers; int is accepted for direct callers.
func asNumber(id PropertyID, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s expects a number, got %T", ErrInvalidValue, id, value)
	}
}

// asString coerces a property value to string.
func asString(id PropertyID, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, id, value)
	}
	return s, nil
}
