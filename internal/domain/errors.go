package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidFormat is returned when persisted data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnknownLesson is returned when a lesson slug is not in the catalog.
	ErrUnknownLesson = errors.New("unknown lesson")

	// ErrUnsupportedSchema is returned for snapshots written by a newer build.
	ErrUnsupportedSchema = errors.New("unsupported snapshot schema version")
)
