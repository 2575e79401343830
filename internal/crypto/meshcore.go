package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"filippo.io/edwards25519"
)

const (
	SeedSize      = ed25519.SeedSize
	PublicKeySize = ed25519.PublicKeySize
	ExpandedSize  = 64
)

// DerivePublicKey returns the Ed25519 public key for seed.
func DerivePublicKey(seed *[SeedSize]byte) [PublicKeySize]byte {
	var pub [PublicKeySize]byte
	priv := ed25519.NewKeyFromSeed(seed[:])
	copy(pub[:], priv[SeedSize:])
	clear(priv)
	return pub
}

// ExpandPrivateKey builds the 64-byte expanded key accepted by meshcore
// firmware: SHA-512(seed) with the first half clamped into a scalar. The
// second half is the nonce prefix and is left untouched.
func ExpandPrivateKey(seed *[SeedSize]byte) [ExpandedSize]byte {
	expanded := sha512.Sum512(seed[:])
	expanded[0] &= 248
	expanded[31] &= 63
	expanded[31] |= 64
	return expanded
}

// RecoverPublicKeyFromExpanded multiplies the base point by the scalar held in
// the first 32 bytes of an expanded key. The scalar is reduced mod l first.
func RecoverPublicKeyFromExpanded(expanded []byte) ([PublicKeySize]byte, bool) {
	var pub [PublicKeySize]byte
	if len(expanded) != ExpandedSize {
		return pub, false
	}

	// SetUniformBytes wants 64 little-endian bytes; zero-extend the scalar.
	var wide [64]byte
	copy(wide[:32], expanded[:32])
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	clear(wide[:])
	if err != nil {
		return pub, false
	}

	p := new(edwards25519.Point).ScalarBaseMult(s)
	copy(pub[:], p.Bytes())
	return pub, true
}

func ValidateExpandedFormat(expanded []byte) bool {
	if len(expanded) != ExpandedSize {
		return false
	}
	_, ok := RecoverPublicKeyFromExpanded(expanded)
	return ok
}

// HexUpper is the textual form used for keys on screen and in the key log.
func HexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// AppendHexUpper appends the uppercase hex form of src to dst without going
// through a string, so secret material can live in a wipeable buffer.
func AppendHexUpper(dst, src []byte) []byte {
	const digits = "0123456789ABCDEF"
	for _, c := range src {
		dst = append(dst, digits[c>>4], digits[c&0x0f])
	}
	return dst
}
