package neighborhood

import "errors"

var (
	// ErrNeighborhoodNotFound is returned when a neighborhood ID does not exist.
	ErrNeighborhoodNotFound = errors.New("neighborhood: not found")

	// ErrInvalidNeighborhood is returned when a record is missing its ID or name.
	ErrInvalidNeighborhood = errors.New("neighborhood: invalid")
)
