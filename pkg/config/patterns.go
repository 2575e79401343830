package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPattern = errors.New("pattern cannot be empty")
	ErrInvalidHex   = errors.New("invalid hex characters in pattern")
)

// NormalizePattern uppercases a user supplied prefix and rejects anything
// that is not 1+ hex digits. Surrounding whitespace is not trimmed.
func NormalizePattern(raw string) (string, error) {
	p := strings.ToUpper(raw)
	if p == "" {
		return "", ErrEmptyPattern
	}
	if i := strings.IndexFunc(p, func(r rune) bool { return !isHex(r) }); i >= 0 {
		return "", fmt.Errorf("%w %q: only 0-9 and A-F are allowed (bad char at %d)", ErrInvalidHex, p, i)
	}
	return p, nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
}
