package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	SecretBytes    = 32
	SelectorLength = 20
)

// GenerateSecret reads n random bytes from r and returns them hex-encoded.
// A nil reader falls back to crypto/rand.
func GenerateSecret(r io.Reader, n int) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateSelector returns a URL-safe lookup key of SelectorLength characters.
func GenerateSelector(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, SelectorLength*3/4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DigestToken returns the hex sha256 digest stored in place of a token.
func DigestToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// SignToken returns a base64url HMAC-SHA256 of parts under key.
func SignToken(key []byte, parts ...string) string {
	mac := hmac.New(sha256.New, key)
	for _, p := range parts {
		mac.Write([]byte(p))
	}
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// EqualTokens compares two token strings in constant time.
func EqualTokens(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
