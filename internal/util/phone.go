package util

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D+`)

// SanitizeNumber reduces user input to the digits-only form the deep-link
// phone parameter expects: "+91 98765-43210" -> "919876543210".
func SanitizeNumber(raw string) string {
	return nonDigit.ReplaceAllString(strings.TrimSpace(raw), "")
}
