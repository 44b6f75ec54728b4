// Package identity derives stable pseudonymous identifiers from raw sender
// addresses. The raw phone number must never travel further into the system
// than the hash computed here.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Length is the number of hex characters kept from the digest.
const Length = 16

// ErrMissingSender is returned when the raw sender address is empty.
var ErrMissingSender = errors.New("identity: missing sender address")

// Hash returns the salted SHA-256 identity for a raw sender address,
// hex-encoded and truncated to Length characters. The same raw address and
// salt always produce the same identity; the hash is not reversible.
func Hash(raw, salt string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrMissingSender
	}
	sum := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(sum[:])[:Length], nil
}
