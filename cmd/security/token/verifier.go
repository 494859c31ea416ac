package token

import (
	"crypto/hmac"
	"strings"
	"time"
)

// Verify checks a token's signature and expiry and returns its claims.
//
// The signature is recomputed over the first two segments and compared with
// hmac.Equal, which is constant-time and never short-circuits on the first
// mismatched byte. Only after the signature holds is the payload trusted
// enough to read its "exp" claim; a token whose expiry is absent, malformed,
// or not strictly after now is invalid. The expiry boundary is exclusive:
// exp == now is already expired.
//
// Every failure returns ErrInvalidToken. Validity is a pure function of
// secret, token and now; Verify keeps no state.
func Verify(secret []byte, tok string, now time.Time) (Claims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	message := parts[0] + "." + parts[1]
	expected := sign(secret, message)
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return nil, ErrInvalidToken
	}

	claims, err := Decode(tok)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exp, ok := claims.ExpiresAt()
	if !ok {
		return nil, ErrInvalidToken
	}
	if !exp.After(now.UTC()) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
