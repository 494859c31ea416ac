// Package identity holds Raven's user accounts.
//
// It defines the canonical User record plus a Store abstraction with a
// Postgres implementation for production and an in-memory implementation for
// tests and DB-less development. Password material never leaves the package
// as plaintext: callers hand in credentials already hashed by
// cmd/security/password.
package identity
