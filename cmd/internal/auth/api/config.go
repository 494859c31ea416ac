package authapi

import (
	"strings"
	"time"
)

// Config controls the auth surface. The signing secret and the exempt path
// list are supplied by the caller at startup; this package never reads
// configuration sources itself.
type Config struct {
	// Secret is the process-wide token signing key. It is read-only after
	// startup and must never appear in logs or response bodies.
	Secret string

	// TokenTTL is the validity window of issued access tokens.
	TokenTTL time.Duration

	// ExemptPaths are path prefixes that bypass the authorization gate.
	ExemptPaths []string

	// MaxBodyBytes bounds request bodies on auth endpoints.
	MaxBodyBytes int64
}

func (c Config) withDefaults() Config {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20 // 1 MiB
	}
	return c
}

// ParseExemptPaths splits a comma-separated prefix list, dropping blanks.
func ParseExemptPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
