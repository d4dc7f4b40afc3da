package util

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var sha256HexRE = regexp.MustCompile(`^[0-9a-f]{64}$`)

// SHA256Hex returns the lowercase hex SHA-256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsSHA256Hex reports whether s is a 64-char lowercase hex digest.
func IsSHA256Hex(s string) bool {
	return sha256HexRE.MatchString(s)
}
