// Package secure holds key material that must not leak through logging and
// that can be scrubbed once it has been persisted.
//
// Go has no deterministic destructors and the garbage collector may move or
// copy memory, so scrubbing is best effort: owners call Wipe on every exit
// path once the value is no longer needed.
package secure

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

const Redacted = "[REDACTED]"

// Secret is a byte buffer whose only accessor is Expose. Every formatting
// path (fmt verbs, JSON, zap) prints Redacted instead.
type Secret struct {
	b []byte
}

// NewSecret takes ownership of b.
func NewSecret(b []byte) *Secret {
	return &Secret{b: b}
}

// Expose returns the backing buffer. The slice is only valid until Wipe.
func (s *Secret) Expose() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Wipe zeroes the buffer and drops it. Safe to call more than once.
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	clear(s.b)
	s.b = nil
}

func (s *Secret) String() string   { return Redacted }
func (s *Secret) GoString() string { return "secure.Secret{" + Redacted + "}" }

func (s *Secret) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = f.Write([]byte(s.GoString()))
		return
	}
	_, _ = f.Write([]byte(Redacted))
}

func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Redacted + `"`), nil
}

func (s *Secret) MarshalText() ([]byte, error) {
	return []byte(Redacted), nil
}

func (s *Secret) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("value", Redacted)
	return nil
}
