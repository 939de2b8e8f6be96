package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrValidation = errors.New("vote validation failed")
	ErrStorage    = errors.New("storage failure")
)
