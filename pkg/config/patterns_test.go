package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePattern(t *testing.T) {
	for in, want := range map[string]string{
		"BEEF":   "BEEF",
		"beef":   "BEEF",
		"00BEEF": "00BEEF",
		"FFBEEF": "FFBEEF",
		"a1":     "A1",
		"F":      "F",
	} {
		got, err := NormalizePattern(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}
}

func TestNormalizePatternRejects(t *testing.T) {
	_, err := NormalizePattern("")
	require.ErrorIs(t, err, ErrEmptyPattern)

	for _, in := range []string{"XYZT", "BEEG", "12!@", "0xBEEF", "ÄB", " AB", "AB\n", "\tBEEF ", "   "} {
		_, err := NormalizePattern(in)
		require.ErrorIs(t, err, ErrInvalidHex, in)
		require.Contains(t, err.Error(), "invalid hex characters")
	}
}
