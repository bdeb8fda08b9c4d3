package aircon

import "context"

// DeviceState is a snapshot of the air conditioner as reported by its local
// API. The cache treats it as an opaque blob keyed by fetch time: it is
// replaced wholesale on every successful fetch and never partially updated.
type DeviceState struct {
	// UUID is the appliance's own identifier.
	UUID string

	// Name is the human-readable name configured on the appliance.
	Name string

	// Power is the raw power state, "On" or "Off".
	Power string

	// CurrentTemperature is the measured room temperature in °C.
	CurrentTemperature float64

	// TargetTemperature is the desired setpoint in °C.
	TargetTemperature float64

	// Modes lists the active mode identifiers. Modes[0] is the operating
	// mode (e.g. "Cool", "Dry", "Wind").
	Modes []string

	// ModeOptions lists the active mode option flags (swing, auto-clean
	// and similar toggles).
	ModeOptions []string

	// FanSpeed is the wind speed level.
	FanSpeed int
}

// OperatingMode returns Modes[0], or "" when the appliance reported no modes.
func (s DeviceState) OperatingMode() string {
	if len(s.Modes) == 0 {
		return ""
	}
	return s.Modes[0]
}

// HasOption reports whether a mode option flag is active.
func (s DeviceState) HasOption(option string) bool {
	for _, o := range s.ModeOptions {
		if o == option {
			return true
		}
	}
	return false
}

// Transport is the injected device connection. The core is agnostic to how
// it is implemented; the bridge ships an HTTPS client, but anything that can
// list device snapshots and apply partial updates satisfies it.
//
// Implementations wrap failures in the package sentinels (ErrNetwork,
// ErrAuth, ErrParse, ErrTimeout) so callers can classify them.
type Transport interface {
	// FetchAll returns the full device list from the appliance endpoint,
	// ordered by device index.
	FetchAll(ctx context.Context) ([]DeviceState, error)

	// Write applies a partial update to a device-relative path, e.g.
	// Write(ctx, "/temperatures/0", map[string]any{"desired": 24}).
	// The configured device index is applied by the transport so reads
	// and writes always address the same appliance.
	Write(ctx context.Context, path string, payload map[string]any) error
}

// Logger is the optional logging interface accepted by the cache and
// dispatcher. Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
