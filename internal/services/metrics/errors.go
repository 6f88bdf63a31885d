package metrics

import "errors"

var (
	// ErrInvalidArgument is returned when a roster size, week or policy is out of range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyRoster is returned when a summary is requested for zero participants.
	ErrEmptyRoster = errors.New("empty roster")
)
