package token

import (
	"time"
)

// Claims is the payload carried inside a token. Values must be JSON-encodable.
type Claims map[string]any

// NewAccessClaims builds the standard claim set for an access token:
// subject id, issued-at and expiry, both as RFC 3339 UTC instants.
func NewAccessClaims(subject string, now time.Time, ttl time.Duration) Claims {
	now = now.UTC()
	return Claims{
		"sub": subject,
		"iat": now.Format(time.RFC3339),
		"exp": now.Add(ttl).Format(time.RFC3339),
	}
}

// Subject returns the "sub" claim, or "" when absent or not a string.
func (c Claims) Subject() string {
	s, _ := c["sub"].(string)
	return s
}

// ExpiresAt parses the "exp" claim. ok is false when the claim is absent,
// not a string, or not a valid RFC 3339 instant.
func (c Claims) ExpiresAt() (time.Time, bool) {
	return c.instant("exp")
}

// IssuedAt parses the "iat" claim.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.instant("iat")
}

func (c Claims) instant(name string) (time.Time, bool) {
	s, ok := c[name].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
