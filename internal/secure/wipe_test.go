package secure

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlatformTools(t *testing.T) {
	linux := platformTools("linux", "k.txt")
	require.Len(t, linux, 3)
	require.Equal(t, MethodShred, linux[0].method)
	require.Equal(t, []string{"-fz", "-u", "-n", "3", "k.txt"}, linux[0].args)
	require.Equal(t, MethodSrm, linux[2].method)

	darwin := platformTools("darwin", "k.txt")
	require.Equal(t, []wipeTool{{MethodRmP, "rm", []string{"-P", "k.txt"}}}, darwin)

	windows := platformTools("windows", "k.txt")
	require.Len(t, windows, 1)
	require.Equal(t, "sdelete", windows[0].name)
	require.Contains(t, windows[0].args, "k.txt")

	require.Empty(t, platformTools("plan9", "k.txt"))
}
