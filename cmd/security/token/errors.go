package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrMalformedToken is returned by Decode when the string is not three
	// dot-separated segments or the payload cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidToken is the single verification failure. It deliberately
	// covers bad signatures, missing or malformed claims, and expiry, so a
	// caller cannot tell the cases apart.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmptySecret is returned when signing or verifying with no key.
	ErrEmptySecret = errors.New("empty signing secret")
)
