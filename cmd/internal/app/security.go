package app

import (
	"errors"
	"fmt"
)

// minSecretBytes is the smallest signing key the server will start with.
// HMAC-SHA256 keys shorter than the hash output weaken the MAC.
const minSecretBytes = 32

// ValidateSecurityConfig enforces the startup security policy.
//
// Fail-fast is intentional: a server that silently starts without a usable
// signing key would issue tokens nobody can verify, or verify none at all.
// The key length is measured in bytes, not runes, because the secret is used
// as raw key material.
func ValidateSecurityConfig(cfg Config) error {
	if cfg.AuthSecret == "" {
		return errors.New("security policy: RAVEN_AUTH_SECRET is missing")
	}
	if len(cfg.AuthSecret) < minSecretBytes {
		return fmt.Errorf("security policy: RAVEN_AUTH_SECRET is too short (min %d bytes)", minSecretBytes)
	}
	return nil
}
