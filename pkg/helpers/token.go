package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// GenToken returns n random bytes encoded as URL-safe base64, used for
// session and verification tokens.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Digest returns a short SHA-256 digest of a token, safe to embed in a
// signed cookie without exposing the token itself.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
