// Package email normalizes and validates account email addresses.
package email

import (
	"net/mail"
	"strings"

	dErrors "presale/pkg/domain-errors"
)

const maxLength = 254

// Normalize trims and lowercases an address and rejects anything that is not a
// bare addr-spec (display names such as "Jo <jo@x.com>" are refused).
func Normalize(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(addr) > maxLength {
		return "", dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 || !strings.Contains(addr[at+1:], ".") {
		return "", dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	return addr, nil
}
