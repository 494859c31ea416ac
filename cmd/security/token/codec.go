package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// header is the fixed first segment of every token.
type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var encodedHeader = mustEncodeHeader()

func mustEncodeHeader() string {
	b, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// Encode serializes claims into a signed token. Any single-bit change to the
// header or payload segments invalidates the signature.
func Encode(secret []byte, claims Claims) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	message := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return message + "." + sign(secret, message), nil
}

// Decode parses a token back into claims without verifying the signature.
// Trust decisions belong to Verify; Decode only answers "is this shaped like
// a token".
func Decode(tok string) (Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// sign computes the hex HMAC-SHA256 signature over message.
func sign(secret []byte, message string) string {
	m := hmac.New(sha256.New, secret)
	_, _ = m.Write([]byte(message))
	return hex.EncodeToString(m.Sum(nil))
}
