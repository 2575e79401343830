package keystore

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MeshKeygen/internal/secure"
)

func TestKeyLogAppendFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	kl := NewKeyLog(path)

	priv := strings.Repeat("AB", 64)
	pub := "BEEF" + strings.Repeat("0", 60)
	require.NoError(t, kl.Append(secure.NewSecret([]byte(priv)), pub))
	require.NoError(t, kl.Append(secure.NewSecret([]byte(priv)), pub))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	want := priv + "; " + pub + "\n"
	require.Equal(t, want+want, string(b))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}
}

func TestKeyLogLeavesSecretIntact(t *testing.T) {
	kl := NewKeyLog(filepath.Join(t.TempDir(), "keys.txt"))
	s := secure.NewSecret([]byte("00FF"))

	require.NoError(t, kl.Append(s, "AA"))
	require.Equal(t, []byte("00FF"), s.Expose())
}

func TestKeyLogRejectsEmpty(t *testing.T) {
	kl := NewKeyLog(filepath.Join(t.TempDir(), "keys.txt"))

	require.ErrorIs(t, kl.Append(secure.NewSecret(nil), "AA"), ErrEmptyKey)
	require.ErrorIs(t, kl.Append(nil, "AA"), ErrEmptyKey)
	require.ErrorIs(t, kl.Append(secure.NewSecret([]byte("00")), ""), ErrEmptyKey)

	_, err := os.Stat(kl.Path())
	require.True(t, os.IsNotExist(err))
}

func TestKeyLogConcurrentAppends(t *testing.T) {
	kl := NewKeyLog(filepath.Join(t.TempDir(), "keys.txt"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, kl.Append(secure.NewSecret([]byte("PRIV")), "PUB"))
		}()
	}
	wg.Wait()

	b, err := os.ReadFile(kl.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 16)
	for _, l := range lines {
		require.Equal(t, "PRIV; PUB", l)
	}
}

func TestNewKeyLogDefault(t *testing.T) {
	require.Equal(t, DefaultFile, NewKeyLog("").Path())
}

func TestKeyLogOpenFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be.
	path := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := NewKeyLog(path).Append(secure.NewSecret([]byte("00")), "AA")
	require.Error(t, err)
	require.Contains(t, err.Error(), "open key log")
}
