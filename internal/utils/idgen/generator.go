package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const idCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID returns a random identifier of the form "<prefix>_<id>"
// where id is length characters drawn from a lowercase alphanumeric charset.
func GenerateSecureID(prefix string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", length)
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i := range bytes {
		bytes[i] = idCharset[int(bytes[i])%len(idCharset)]
	}

	if prefix == "" {
		return string(bytes), nil
	}
	return fmt.Sprintf("%s_%s", prefix, string(bytes)), nil
}

// ValidateIDFormat reports whether id is "<expectedPrefix>_<suffix>" with a
// non-empty suffix drawn from the generator charset.
func ValidateIDFormat(id, expectedPrefix string) bool {
	wantPrefix := expectedPrefix + "_"
	if !strings.HasPrefix(id, wantPrefix) {
		return false
	}

	suffix := id[len(wantPrefix):]
	if suffix == "" {
		return false
	}

	for _, char := range suffix {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
