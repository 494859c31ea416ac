package identity

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// User is Raven's canonical account record.
//
// PasswordHash is the encoded credential produced by cmd/security/password;
// the plaintext password is never stored. APIKey is an opaque per-user key
// for the external LLM pass-through layer (assigned once at registration).
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	APIKey       string
	IsActive     bool

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput describes a registration request. PasswordHash must already
// be an encoded credential.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	APIKey       string
	Now          time.Time
}

func (in CreateUserInput) validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(in.Email) == "" || !strings.Contains(in.Email, "@") {
		return ErrInvalidInput
	}
	if in.PasswordHash == "" {
		return ErrInvalidInput
	}
	return nil
}

// NewUserID returns a new ULID for a user record.
func NewUserID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
