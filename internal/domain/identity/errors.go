package identity

import "errors"

// Sentinel kinds for identity errors.
var (
	ErrDuplicateHandle    = errors.New("handle already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBlankCredentials   = errors.New("handle and password must not be blank")
	ErrHashFailed         = errors.New("credential hashing failed")
)
