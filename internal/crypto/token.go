package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// opaqueTokenBytes gives 256 bits of entropy per token.
const opaqueTokenBytes = 32

// NewOpaqueToken returns a cryptographically random, hex-encoded token for
// password-reset links.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Fingerprint returns the SHA-256 hex digest of a token. Stored refresh and
// reset tokens are looked up by fingerprint so the raw secret never persists.
// This is a fast hash, not the password hasher: the tokens themselves are
// unguessable.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
