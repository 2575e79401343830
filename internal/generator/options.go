package generator

import (
	"errors"
	"fmt"
	"runtime"

	"MeshKeygen/internal/patterns"
	"MeshKeygen/pkg/config"
)

var (
	ErrInvalidWorkers = errors.New("worker count must be positive")
	ErrInvalidTarget  = errors.New("key target must be at least 1")
)

// SearchBehavior decides when a run is over: after a fixed number of matches
// or never (until the caller cancels). The zero value is invalid; use FindN
// or Continuous.
type SearchBehavior struct {
	n          int
	continuous bool
}

func FindN(n int) (SearchBehavior, error) {
	if n < 1 {
		return SearchBehavior{}, fmt.Errorf("%w: got %d", ErrInvalidTarget, n)
	}
	return SearchBehavior{n: n}, nil
}

func Continuous() SearchBehavior {
	return SearchBehavior{continuous: true}
}

// BehaviorFromMaxKeys maps the --max-keys flag: 0 means run until cancelled.
func BehaviorFromMaxKeys(maxKeys int) (SearchBehavior, error) {
	if maxKeys == 0 {
		return Continuous(), nil
	}
	return FindN(maxKeys)
}

// Target returns N and true for FindN, false for Continuous.
func (b SearchBehavior) Target() (int, bool) {
	if b.continuous {
		return 0, false
	}
	return b.n, true
}

// reached reports whether count satisfies the stopping policy.
func (b SearchBehavior) reached(count uint64) bool {
	n, ok := b.Target()
	return ok && count >= uint64(n)
}

func (b SearchBehavior) valid() bool {
	return b.continuous || b.n >= 1
}

func (b SearchBehavior) String() string {
	if b.continuous {
		return "Continuous"
	}
	return fmt.Sprintf("FindN(%d)", b.n)
}

// SearchConfig is shared read-only by every worker of a run.
type SearchConfig struct {
	pattern  patterns.Pattern
	behavior SearchBehavior
	workers  int
}

// NewSearchConfig validates the pattern (non-empty, hex only) and the worker
// count before anything is started.
func NewSearchConfig(pattern string, behavior SearchBehavior, workers int) (SearchConfig, error) {
	p, err := config.NormalizePattern(pattern)
	if err != nil {
		return SearchConfig{}, err
	}
	if workers < 1 {
		return SearchConfig{}, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	if !behavior.valid() {
		return SearchConfig{}, ErrInvalidTarget
	}
	return SearchConfig{
		pattern:  patterns.Compile(p),
		behavior: behavior,
		workers:  workers,
	}, nil
}

func (c SearchConfig) Prefix() string            { return c.pattern.Hex }
func (c SearchConfig) Pattern() patterns.Pattern { return c.pattern }
func (c SearchConfig) Behavior() SearchBehavior  { return c.behavior }
func (c SearchConfig) Workers() int              { return c.workers }

// DefaultWorkers leaves one CPU for the rest of the system.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}
