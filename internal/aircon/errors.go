package aircon

import "errors"

// Domain errors for the aircon package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, aircon.ErrStateUnavailable) {
//	    // no cached state and the fetch failed
//	}
//
// Transport implementations wrap their failures in ErrNetwork, ErrAuth,
// ErrParse or ErrTimeout so the cache and dispatcher can classify them
// without knowing the transport mechanism.
var (
	// ErrNetwork is returned when the device is unreachable or the
	// connection was reset.
	ErrNetwork = errors.New("aircon: network error")

	// ErrAuth is returned when the device rejects the credential or the
	// TLS client certificate.
	ErrAuth = errors.New("aircon: authentication rejected")

	// ErrParse is returned when the device response is malformed, or when
	// the configured device index is absent from the response.
	ErrParse = errors.New("aircon: malformed device response")

	// ErrTimeout is returned when a fetch or write exceeds its bound.
	ErrTimeout = errors.New("aircon: operation timed out")

	// ErrStateUnavailable is returned by a read when no cached state
	// exists and the live fetch failed. Reads with an older snapshot
	// available never return it.
	ErrStateUnavailable = errors.New("aircon: device state unavailable")

	// ErrCommandFailed is returned when a write to the device failed.
	// Unlike reads, write failures are never absorbed.
	ErrCommandFailed = errors.New("aircon: command failed")

	// ErrUnknownProperty is returned when a property ID is not in the
	// property table.
	ErrUnknownProperty = errors.New("aircon: unknown property")

	// ErrReadOnly is returned when writing to a read-only property.
	ErrReadOnly = errors.New("aircon: property is read-only")

	// ErrInvalidValue is returned when a property value is of the wrong
	// type or outside its legal range.
	ErrInvalidValue = errors.New("aircon: invalid property value")
)
