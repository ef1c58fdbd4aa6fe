package hosts

import "errors"

var (
	// ErrEmptyPattern is returned when an allowed-host pattern is blank.
	ErrEmptyPattern = errors.New("allowed host pattern cannot be empty")
	// ErrInvalidPattern is returned when a pattern contains characters that can never appear in a hostname.
	ErrInvalidPattern = errors.New("allowed host pattern contains invalid characters")
)
