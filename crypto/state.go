package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const (
	DefaultStateLength = 32 // 256 bits
)

// GenerateState returns a URL-safe random string for OAuth state round-trips.
func GenerateState(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultStateLength
	}

	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// StateEqual compares two state values in constant time.
func StateEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
