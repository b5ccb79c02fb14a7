package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no manifest record exists yet.
	ErrNotFound = errors.New("manifest record not found")

	// ErrUnsupportedVersion is returned for records written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported manifest record version")
)
