// Package token implements Raven's self-contained signed access tokens.
//
// A token is three dot-separated segments:
//
//	base64url(header_json) . base64url(payload_json) . hex(hmac_sha256(header.payload))
//
// The header is always {"alg":"HS256","typ":"JWT"}. The payload carries the
// claims; "sub", "iat" and "exp" are required by the verifier, with both
// timestamps encoded as RFC 3339 instants in UTC.
//
// Design goals:
//   - No external token library: the wire format is small enough to own, and
//     owning it keeps the trust boundary auditable in one place.
//   - Parsing is separate from trust: Decode never checks the signature;
//     Verify is the only function that makes a validity decision.
//   - Verification failures are indistinguishable to callers. Tampered,
//     malformed and expired tokens all surface as ErrInvalidToken so the
//     API layer cannot leak why a credential was rejected.
package token
