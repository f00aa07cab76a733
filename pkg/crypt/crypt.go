// Package crypt provides token generation and digest helpers.
//
// Password-reset tokens are random 32-byte values handed to the user in
// hex; only the SHA-256 digest is stored, so a database leak does not
// expose live reset links.
package crypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// RandomToken returns a 64-char hex string from 32 random bytes.
func RandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("crypt: random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash returns a SHA-256 hex digest of the input.
func Hash(input string) string {
	h := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", h)
}
