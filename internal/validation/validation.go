package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail checks the loose address shape used at registration.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail lower-cases and trims an address before lookup or storage.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// OneOf reports whether v is an exact member of allowed.
func OneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// PositiveID parses a path or query id. Only strings of digits >= 1 pass.
func PositiveID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
