package device

import "errors"

var (
	// ErrNotControllable is returned when a command targets a remote or sensor.
	ErrNotControllable = errors.New("device: not controllable")

	// ErrInvalidLevel is returned for brightness percentages outside 0..100.
	ErrInvalidLevel = errors.New("device: brightness must be between 0 and 100")

	// ErrEmptyNote is returned when a note is blank after trimming.
	ErrEmptyNote = errors.New("device: note is empty")
)
