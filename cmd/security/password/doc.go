// Package password provides credential hashing and verification for Raven.
//
// It implements Argon2id with a PHC-style encoded string format:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
//
// The encoding is self-describing: the cost parameters and salt ride along
// with the digest, so verification needs no out-of-band configuration and
// stored credentials survive parameter upgrades.
//
// Security notes:
//   - A fresh random salt is drawn per hash, so hashing the same password
//     twice never yields the same credential.
//   - Stored credentials are treated as untrusted input during Verify and the
//     embedded parameters are bounds-checked before any work is done, so an
//     attacker-supplied credential string cannot drive pathological
//     memory or CPU usage.
//   - Digest comparison is constant-time.
package password
