package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Version = 19 // argon2.Version is 0x13 (19)

	// maxPasswordBytes bounds hashing input so a single request cannot feed
	// megabytes into the key-derivation function.
	maxPasswordBytes = 1024
)

// Hash derives a credential from password using Argon2id with a fresh random
// salt, and returns it in the PHC-style encoded format. The empty password is
// rejected with ErrEmptyPassword.
func (p Params) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version,
		p.MemoryKiB,
		p.Iterations,
		p.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the stored credential. It
// recomputes the digest with the salt and cost embedded in the credential and
// compares in constant time. Malformed credentials, out-of-bounds parameters
// and the empty password all report false; Verify never returns an error to
// avoid offering callers an oracle for why a check failed.
func (p Params) Verify(password, credential string) bool {
	if password == "" || len(password) > maxPasswordBytes {
		return false
	}

	got, salt, expected, err := decodeCredential(credential)
	if err != nil {
		return false
	}
	if !verifiableBounds(got, p) {
		return false
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		got.Iterations,
		got.MemoryKiB,
		got.Parallelism,
		uint32(len(expected)), // #nosec G115 -- length bounded by decodeCredential.
	)

	return subtle.ConstantTimeCompare(key, expected) == 1
}

// verifiableBounds accepts credentials hashed with older or smaller settings
// but refuses parameters wildly above the configured cost, so a stored string
// cannot dictate pathological resource usage.
func verifiableBounds(got, limits Params) bool {
	if got.MemoryKiB > limits.MemoryKiB*2 {
		return false
	}
	if got.Iterations > limits.Iterations*4 {
		return false
	}
	if got.Parallelism > 8 {
		return false
	}
	if got.SaltLength < 8 || got.SaltLength > 64 {
		return false
	}
	if got.KeyLength < 16 || got.KeyLength > 128 {
		return false
	}
	return true
}

// decodeCredential parses the PHC-style credential and returns its embedded
// params, salt and expected key.
func decodeCredential(credential string) (Params, []byte, []byte, error) {
	parts := strings.Split(credential, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidCredential
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return Params{}, nil, nil, ErrInvalidCredential
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Params{}, nil, nil, ErrInvalidCredential
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Params{}, nil, nil, ErrInvalidCredential
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidCredential
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidCredential
	}

	got := Params{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: uint8(par), // #nosec G115 -- par checked <= 255 above.
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(key)),
	}
	return got, salt, key, nil
}
