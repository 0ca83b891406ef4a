package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex encoded SHA-256 of s, or "" for an empty string.
func Hash(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashShort returns the first 8 characters of Hash. Used to identify
// secrets and URLs in logs without printing them.
func HashShort(s string) string {
	h := Hash(s)
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
