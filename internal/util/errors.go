package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required input file was not found
	ErrNotFound = errors.New("not found")

	// ErrUnreadableFormat indicates no supported text encoding could decode the input
	ErrUnreadableFormat = errors.New("unreadable format")

	// ErrValidation indicates a cleaning stage hit data it cannot interpret
	ErrValidation = errors.New("validation failure")

	// ErrWriteFailure indicates the snapshot (or another artifact) could not be written
	ErrWriteFailure = errors.New("write failure")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
