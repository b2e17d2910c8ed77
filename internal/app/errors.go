package app

import "errors"

// Sentinel errors for engine operations.
var (
	ErrNotStarted   = errors.New("engine not started")
	ErrInvalidLimit = errors.New("limit must be positive")
)
