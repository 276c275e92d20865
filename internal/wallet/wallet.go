// Package wallet normalizes the identifiers used to look up collectible access:
// EVM wallet addresses and email addresses.
package wallet

import (
	"regexp"
	"strings"
)

var addressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Valid reports whether s is a 0x-prefixed, 40 hex digit address.
// Surrounding whitespace is not accepted.
func Valid(s string) bool {
	return addressRegex.MatchString(s)
}

// Normalize trims and lowercases a wallet address. It returns false when the
// result is not a well-formed address, in which case callers treat the wallet
// as absent.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !Valid(s) {
		return "", false
	}
	return strings.ToLower(s), true
}

// NormalizeEmail trims and lowercases an email address. It returns false for
// blank input.
func NormalizeEmail(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	return s, true
}
