package device

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Identity constants.
const (
	// idLength is the fixed length of a KNoT device identifier.
	idLength = 16

	// tokenPattern is the shape of a broker-issued session token:
	// lowercase UUID, dashes included.
	tokenPattern = `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
)

var tokenRegex = regexp.MustCompile(tokenPattern)

// NewID produces a 16-character lowercase-hex device identifier.
func NewID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:idLength]
}

// IsValidID reports whether s is a well-formed device identifier:
// exactly 16 characters, all hexadecimal.
func IsValidID(s string) bool {
	if len(s) != idLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsValidToken reports whether s is a broker-issued session token.
// An empty or malformed token is invalid, which routes the device toward
// a fresh registration round-trip.
func IsValidToken(s string) bool {
	return s != "" && tokenRegex.MatchString(s)
}

// HasValidID reports whether the device currently holds a well-formed identifier.
func (d *Device) HasValidID() bool {
	return IsValidID(d.ID)
}

// HasValidToken reports whether the device currently holds a well-formed token.
func (d *Device) HasValidToken() bool {
	return IsValidToken(d.Token)
}
