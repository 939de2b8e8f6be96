package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("user not found")
	ErrDuplicateHandle = errors.New("handle already registered")
	ErrEmptyBatch      = errors.New("empty score batch")
)
