package token

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

const randomBytes = 10

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns a short, human-shareable token such as "ho_4K7QXW2M9JT3PFBA".
// Tokens are unique by construction; the database unique index is the
// backstop.
func New(prefix string) (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return fmt.Sprintf("%s_%s", prefix, encoding.EncodeToString(buf)), nil
}

// HasPrefix reports whether the token carries the given prefix.
func HasPrefix(value, prefix string) bool {
	return strings.HasPrefix(value, prefix+"_")
}
