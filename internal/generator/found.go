package generator

import (
	"MeshKeygen/internal/crypto"
	"MeshKeygen/internal/secure"
)

// FoundKey is a match handed from a worker to the consumer. The consumer owns
// it after receipt and wipes it once the FoundFunc has returned.
type FoundKey struct {
	PublicKey  string         // uppercase hex, 64 chars
	PrivateKey *secure.Secret // uppercase hex of the 64-byte expanded key
	Worker     int
}

func newFoundKey(worker int, pub *[crypto.PublicKeySize]byte, expanded *[crypto.ExpandedSize]byte) *FoundKey {
	priv := crypto.AppendHexUpper(make([]byte, 0, 2*crypto.ExpandedSize), expanded[:])
	return &FoundKey{
		PublicKey:  crypto.HexUpper(pub[:]),
		PrivateKey: secure.NewSecret(priv),
		Worker:     worker,
	}
}

func (k *FoundKey) Wipe() {
	if k != nil {
		k.PrivateKey.Wipe()
	}
}
