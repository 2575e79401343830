package generator

import "sync/atomic"

// SearchStats is the run-scoped shared state. Workers write it without
// locks; the monitor and consumer only read it, except for Stop. None of the
// counters is ever reset during a run, and the stop flag never goes back to
// false once set.
type SearchStats struct {
	attempts atomic.Uint64
	matches  atomic.Uint64
	stop     atomic.Bool
}

func NewSearchStats() *SearchStats {
	return &SearchStats{}
}

func (s *SearchStats) Attempts() uint64 { return s.attempts.Load() }
func (s *SearchStats) Matches() uint64  { return s.matches.Load() }
func (s *SearchStats) Stopped() bool    { return s.stop.Load() }

// Stop raises the stop flag. Any number of callers may race on it.
func (s *SearchStats) Stop() { s.stop.Store(true) }

func (s *SearchStats) addAttempts(n uint64) {
	if n > 0 {
		s.attempts.Add(n)
	}
}

func (s *SearchStats) addMatch() uint64 { return s.matches.Add(1) }
