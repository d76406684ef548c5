// Package fingerprint derives fixed-length digests of documents for byte-exact
// equality checks between fetched and cached content.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// None is the sentinel for "no fingerprint". It is returned for non-text input
// and used for an absent cache, and never equals a real digest.
const None = ""

// Size is the length of a fingerprint string.
const Size = sha256.Size * 2

// FromBytes returns the lowercase hex SHA-256 of b. Empty input is valid.
func FromBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// FromString returns the fingerprint of the bytes of s.
func FromString(s string) string {
	return FromBytes([]byte(s))
}

// Of fingerprints a string or byte slice. Any other value yields None.
func Of(v any) string {
	switch t := v.(type) {
	case string:
		return FromString(t)
	case []byte:
		return FromBytes(t)
	default:
		return None
	}
}

// Equal reports whether two fingerprints are byte-identical.
func Equal(a, b string) bool {
	return a == b
}
