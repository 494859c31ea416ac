package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// AuthSecret signs and verifies access tokens. Required at startup.
	AuthSecret string

	// TokenTTL is the validity window of issued access tokens.
	TokenTTL time.Duration

	// ExemptPaths is the comma-separated prefix list that bypasses the
	// authorization gate.
	ExemptPaths string

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("RAVEN_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("RAVEN_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("RAVEN_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("RAVEN_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("RAVEN_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("RAVEN_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("RAVEN_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("RAVEN_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("RAVEN_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("RAVEN_DB_MIN_CONNS", 0),

		AuthSecret: EnvString("RAVEN_AUTH_SECRET", ""),
		TokenTTL:   EnvDuration("RAVEN_TOKEN_TTL", 24*time.Hour),

		ExemptPaths: EnvString("RAVEN_AUTH_EXEMPT_PATHS", "/auth/login,/auth/register,/healthz,/readyz,/metrics"),

		ReadinessRequireDB: EnvBool("RAVEN_READINESS_REQUIRE_DB", false),
	}
}
