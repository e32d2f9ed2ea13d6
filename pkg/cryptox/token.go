package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// TokenBytes is the entropy of every opaque token we mint (sessions, password
// resets, MFA enrollments): 32 bytes = 256 bits, 43 chars once encoded.
const TokenBytes = 32

// GenerateToken returns a fresh opaque bearer token as a base64url string
// (no padding). The raw value is handed to the caller exactly once; only its
// fingerprint is ever stored.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the deterministic SHA-256 digest of a token,
// base64url encoded. The fingerprint is the storage and lookup key, so a
// database leak never exposes a usable token.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
