package generator

import (
	cryptorand "crypto/rand"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"

	"MeshKeygen/internal/crypto"
	"MeshKeygen/internal/patterns"
)

// FlushInterval is how many candidates a worker counts locally before
// publishing them to the shared attempt counter.
const FlushInterval = 5000

// BatchSize is the number of candidates generated between two passes of the
// outer loop. Short patterns resolve in a handful of batches, so they get
// small ones.
func BatchSize(prefixLen int) int {
	switch {
	case prefixLen <= 4:
		return 1024
	case prefixLen <= 6:
		return 2048
	default:
		return 4096
	}
}

// SourceFunc builds the private randomness source of one worker.
type SourceFunc func() (io.Reader, error)

// NewChaCha8Source returns a ChaCha8 stream keyed from crypto/rand. Each
// worker gets its own so the hot loop never touches shared state.
func NewChaCha8Source() (io.Reader, error) {
	var key [32]byte
	if _, err := cryptorand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("read rng key: %w", err)
	}
	src := rand.NewChaCha8(key)
	clear(key[:])
	return src, nil
}

type worker struct {
	id        int
	pattern   patterns.Pattern
	stats     *SearchStats
	out       chan<- interface{}
	done      <-chan struct{}
	newSource SourceFunc

	// generated is owned by the worker goroutine until run returns.
	generated uint64
}

func (w *worker) run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	src, err := w.newSource()
	if err != nil {
		return fmt.Errorf("worker %d: %w", w.id, err)
	}

	batch := BatchSize(w.pattern.Len())
	var (
		seed    [crypto.SeedSize]byte
		pending uint64
	)
	defer func() {
		clear(seed[:])
		w.stats.addAttempts(pending)
	}()

	for !w.stats.Stopped() {
		for i := 0; i < batch; i++ {
			if w.stats.Stopped() {
				break
			}
			if _, err := io.ReadFull(src, seed[:]); err != nil {
				return fmt.Errorf("worker %d: read seed: %w", w.id, err)
			}

			w.generated++
			pending++
			if pending == FlushInterval {
				w.stats.addAttempts(pending)
				pending = 0
			}

			pub := crypto.DerivePublicKey(&seed)
			if !w.pattern.Match(pub[:]) {
				continue
			}
			if !w.report(&seed, &pub) {
				return nil
			}
		}
	}
	return nil
}

// report expands and validates a matching candidate and hands it to the
// consumer. A candidate that fails validation is dropped silently. It returns
// false once the consumer is gone.
func (w *worker) report(seed *[crypto.SeedSize]byte, pub *[crypto.PublicKeySize]byte) bool {
	expanded := crypto.ExpandPrivateKey(seed)
	defer clear(expanded[:])

	if !crypto.ValidateExpandedFormat(expanded[:]) {
		return true
	}

	key := newFoundKey(w.id, pub, &expanded)
	w.stats.addMatch()

	select {
	case w.out <- key:
		return true
	case <-w.done:
		key.Wipe()
		return false
	}
}
