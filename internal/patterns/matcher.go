package patterns

import (
	"math"
	"strings"
)

// Pattern is a compiled prefix: the normalised hex text the user asked for
// and the bytes a public key has to start with.
type Pattern struct {
	Hex   string
	Bytes []byte
}

func Compile(hex string) Pattern {
	up := strings.ToUpper(hex)
	return Pattern{Hex: up, Bytes: HexToBytes(up)}
}

// Len is the number of hex characters, which is what difficulty scales with.
func (p Pattern) Len() int { return len(p.Hex) }

// Difficulty is the expected number of candidates per match (16^len).
func (p Pattern) Difficulty() float64 { return Difficulty(p.Len()) }

// Difficulty is the expected number of candidates per match for a prefix of
// hexLen characters.
func Difficulty(hexLen int) float64 {
	return math.Pow(16, float64(hexLen))
}

func (p Pattern) Match(candidate []byte) bool {
	return MatchPrefix(candidate, p.Bytes)
}

// MatchPrefix reports whether pattern is a byte-wise prefix of candidate.
func MatchPrefix(candidate, pattern []byte) bool {
	if len(pattern) > len(candidate) {
		return false
	}
	for i := range pattern {
		if candidate[i] != pattern[i] {
			return false
		}
	}
	return true
}

// HexToBytes decodes a user pattern. Odd-length input is padded at the end
// ("ABC" -> AB C0) and anything that is not a hex digit decodes as 0; callers
// are expected to have validated the pattern already.
func HexToBytes(hex string) []byte {
	up := strings.ToUpper(hex)
	if len(up)%2 == 1 {
		up += "0"
	}
	out := make([]byte, len(up)/2)
	for i := range out {
		out[i] = nibble(up[2*i])<<4 | nibble(up[2*i+1])
	}
	return out
}

func nibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
