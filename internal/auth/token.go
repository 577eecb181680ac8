package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const sessionTokenBytes = 32

// NewSessionToken returns a random URL-safe token for the session cookie.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken is the form in which session tokens are stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CSRFToken derives the per-session form token.
func CSRFToken(secret []byte, sessionToken string) string {
	return base64.RawURLEncoding.EncodeToString(Sign(secret, "csrf:"+sessionToken))
}

func ValidCSRF(secret []byte, sessionToken, got string) bool {
	if sessionToken == "" || got == "" {
		return false
	}
	want := CSRFToken(secret, sessionToken)
	return hmac.Equal([]byte(want), []byte(got))
}

// Sign returns HMAC-SHA256(secret, msg).
func Sign(secret []byte, msg string) []byte {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(msg))
	return m.Sum(nil)
}
