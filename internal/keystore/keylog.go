// Package keystore persists found keys as "PRIVATE; PUBLIC" lines.
package keystore

import (
	"errors"
	"fmt"
	"sync"

	"MeshKeygen/internal/logsink"
	"MeshKeygen/internal/secure"
)

// DefaultFile is the key log name used when the config sets none.
const DefaultFile = "meshcore-keys.txt"

const separator = "; "

var ErrEmptyKey = errors.New("empty key")

// KeyLog appends one line per found key. Lines are never rewritten, so a
// continuous search never loses earlier keys.
type KeyLog struct {
	mu   sync.Mutex
	path string
}

func NewKeyLog(path string) *KeyLog {
	if path == "" {
		path = DefaultFile
	}
	return &KeyLog{path: path}
}

func (k *KeyLog) Path() string { return k.path }

// Append writes "PRIVATE; PUBLIC\n". The line buffer holding the private key
// is zeroed before returning.
func (k *KeyLog) Append(private *secure.Secret, public string) error {
	if private.Len() == 0 || public == "" {
		return ErrEmptyKey
	}

	line := make([]byte, 0, private.Len()+len(separator)+len(public)+1)
	line = append(line, private.Expose()...)
	line = append(line, separator...)
	line = append(line, public...)
	line = append(line, '\n')
	defer clear(line)

	k.mu.Lock()
	defer k.mu.Unlock()

	f, err := logsink.OpenAppend(k.path)
	if err != nil {
		return fmt.Errorf("open key log %q: %w", k.path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("write key log %q: %w", k.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync key log %q: %w", k.path, err)
	}
	return f.Close()
}
