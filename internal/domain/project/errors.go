package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrEntryNotFound indicates a labour or material entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrRemoteUnavailable indicates the remote persistence service could not be reached.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrLocalCache indicates the on-device cache could not be written.
	ErrLocalCache = errors.New("local cache write failed")
)
