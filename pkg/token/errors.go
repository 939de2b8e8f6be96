package token

import "errors"

// Sentinel kinds for token errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrSignFailed   = errors.New("token signing failed")
)
