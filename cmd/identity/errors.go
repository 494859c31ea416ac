package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API responses).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("username or email already registered")
	ErrNotActive    = errors.New("user not active")
)
