package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session does not exist or has expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionConflict is returned when a session record changed underneath a write.
	ErrSessionConflict = errors.New("quiz session was modified concurrently")
	// ErrQuestionSetNotFound indicates the question set could not be located by any loader.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrInvalidQuestionSet indicates question data failed load-time validation.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrUnsupportedFormat is returned for question files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported question file format")
)
