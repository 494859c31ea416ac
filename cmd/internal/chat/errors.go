package chat

import "errors"

// Public, stable errors for callers.
var (
	// ErrOrdinalOutOfRange is returned when a move targets an ordinal outside
	// [1, session count]. The API layer may report it precisely.
	ErrOrdinalOutOfRange = errors.New("ordinal out of range")

	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidInput    = errors.New("invalid input")
)
