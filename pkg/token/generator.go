// -----------------------------------------------------------------------------
// Token Generation Utility
// -----------------------------------------------------------------------------
// Cryptographically secure identifiers and verification codes used by the
// certificate strategies.
//
// All randomness comes from crypto/rand. Derived codes are keyed BLAKE2b
// digests, which gives premium certificates a longer code that cannot be
// produced by the plain random scheme.
// -----------------------------------------------------------------------------

package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Reader is the entropy source. Tests may replace it.
var Reader io.Reader = rand.Reader

// RandomBytes returns n random bytes.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("token length must be positive, got %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(Reader, buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return buf, nil
}

// GenerateHex generates n random bytes encoded as lowercase hex (2n chars).
//
// Example:
//
//	id, err := token.GenerateHex(8)
//	// id is 16 hex characters
func GenerateHex(n int) (string, error) {
	buf, err := RandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateCode is GenerateHex upper-cased, for human-facing codes.
func GenerateCode(n int) (string, error) {
	code, err := GenerateHex(n)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(code), nil
}

// DeriveCode returns an upper-case hex digest of size bytes computed with
// BLAKE2b keyed by fresh random bytes over the given parts. The output is
// unique per call even for identical parts.
//
// Parameters:
//   - size: digest length in bytes (1..64)
//   - parts: context mixed into the digest (ids, timestamps)
func DeriveCode(size int, parts ...string) (string, error) {
	key, err := RandomBytes(32)
	if err != nil {
		return "", err
	}

	h, err := blake2b.New(size, key)
	if err != nil {
		return "", fmt.Errorf("init blake2b: %w", err)
	}
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}

	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}
