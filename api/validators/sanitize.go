package validators

import (
	"regexp"
	"strings"
)

var guestSessionRe = regexp.MustCompile(`^[A-Za-z0-9_-]{16,128}$`)

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// ValidGuestSession reports whether id is usable as a storage namespace.
func ValidGuestSession(id string) bool {
	return guestSessionRe.MatchString(id)
}

var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ValidRequestID reports whether a caller-supplied request id is safe to echo
// and log.
func ValidRequestID(id string) bool {
	return requestIDRe.MatchString(id)
}
