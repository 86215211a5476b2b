package common

import (
	"net/mail"
	"strings"
)

// NormalizeEmail validates a single bare address and returns it trimmed and
// lower-cased.
func NormalizeEmail(email string) (string, bool) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}

	return strings.ToLower(addr.Address), true
}
