package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// HashAPIKey returns the stored form of an API key: SHA-256, uppercase hex.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// GenerateAPIKey returns 32 random bytes as unpadded URL-safe base64.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
