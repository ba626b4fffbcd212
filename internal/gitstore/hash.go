package gitstore

import (
	"fmt"
	"strings"
)

const (
	// HashLen is the length of a full hex object hash.
	HashLen = 40

	// DefaultMinPrefix is the shortest abbreviated hash accepted by default.
	DefaultMinPrefix = 4
)

// NormalizeHash validates s as a full hash or an abbreviated prefix of at
// least minPrefix characters and returns it lowercased.
func NormalizeHash(s string, minPrefix int) (string, error) {
	if minPrefix < 1 || minPrefix > HashLen {
		minPrefix = HashLen
	}
	if len(s) < minPrefix || len(s) > HashLen {
		return "", fmt.Errorf("%w: %q has length %d (want %d-%d)", ErrInvalidHash, s, len(s), minPrefix, HashLen)
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return "", fmt.Errorf("%w: %q contains non-hex character", ErrInvalidHash, s)
		}
	}
	return strings.ToLower(s), nil
}

// IsFullHash reports whether s is a well-formed 40 character hash.
func IsFullHash(s string) bool {
	_, err := NormalizeHash(s, HashLen)
	return err == nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
