package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
)

// sidBytes is the entropy of a session id: 20 random bytes, hex-encoded to
// 40 characters.
const sidBytes = 20

var sidPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// GenerateSID returns a new cryptographically random session id.
func GenerateSID() (string, error) {
	b := make([]byte, sidBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrSIDGeneration, err)
	}
	return hex.EncodeToString(b), nil
}

// ValidSID reports whether sid matches the fixed id format. Every id read
// back from a client is checked before it reaches a store, so malformed
// input is rejected instead of trusted.
func ValidSID(sid string) bool {
	return sidPattern.MatchString(sid)
}
