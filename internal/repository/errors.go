package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when a stored payload cannot be decoded
	ErrCorrupt = errors.New("corrupt payload")

	// ErrUnavailable is returned when a backing service cannot be reached
	ErrUnavailable = errors.New("backend unavailable")
)
