package gateway

import "errors"

var (
	// ErrUnavailable is returned when the gateway transport cannot be established.
	ErrUnavailable = errors.New("gateway: unavailable")

	// ErrNotObserving is returned by WaitSettled before ObserveDevices has run.
	ErrNotObserving = errors.New("gateway: device observation not started")

	// ErrDeviceNotFound is returned for an instance ID with no record.
	ErrDeviceNotFound = errors.New("gateway: device not found")

	// ErrMalformedRecord is returned when a device record cannot be decoded.
	ErrMalformedRecord = errors.New("gateway: malformed device record")

	// ErrInvalidCommand is returned for out-of-range command values.
	ErrInvalidCommand = errors.New("gateway: invalid command")
)
