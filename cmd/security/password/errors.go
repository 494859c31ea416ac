package password

import "errors"

// Public, stable errors for callers.
var (
	ErrEmptyPassword     = errors.New("empty password")
	ErrPasswordTooLong   = errors.New("password too long")
	ErrInvalidCredential = errors.New("invalid stored credential")
)
