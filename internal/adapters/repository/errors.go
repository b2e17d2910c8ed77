package repository

import "errors"

// Sentinel kinds for reserve store errors.
var (
	ErrInvalidLimit = errors.New("invalid reserve limit")
	ErrNilCandidate = errors.New("nil candidate")
)
