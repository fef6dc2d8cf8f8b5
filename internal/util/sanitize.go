package util

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]+`)

// SanitizeForLog removes control characters and newlines from user content before logging.
func SanitizeForLog(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return controlChars.ReplaceAllString(s, " ")
}

// Truncate sanitizes s and cuts it to at most max bytes.
func Truncate(s string, max int) string {
	s = SanitizeForLog(s)
	if max >= 0 && len(s) > max {
		return s[:max]
	}
	return s
}

// MaskEmail hides the local part of an email address so that failed login
// attempts can be logged without recording the full address.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
