package generator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"MeshKeygen/internal/crypto"
	"MeshKeygen/internal/patterns"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// RFC 8032 TEST 1 seed; its public key starts with D75A98.
const fixedSeedHex = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func fixedSeed(t *testing.T) [crypto.SeedSize]byte {
	t.Helper()
	raw, err := hex.DecodeString(fixedSeedHex)
	require.NoError(t, err)
	var seed [crypto.SeedSize]byte
	copy(seed[:], raw)
	return seed
}

// fixedSource repeats one seed forever and can raise the stop flag after a
// given number of reads.
type fixedSource struct {
	seed   [crypto.SeedSize]byte
	reads  int
	stopAt int
	stats  *SearchStats
}

func (f *fixedSource) Read(p []byte) (int, error) {
	f.reads++
	if f.stopAt > 0 && f.reads == f.stopAt {
		f.stats.Stop()
	}
	return copy(p, f.seed[:]), nil
}

func mustConfig(t *testing.T, prefix string, b SearchBehavior, workers int) SearchConfig {
	t.Helper()
	cfg, err := NewSearchConfig(prefix, b, workers)
	require.NoError(t, err)
	return cfg
}

func findN(t *testing.T, n int) SearchBehavior {
	t.Helper()
	b, err := FindN(n)
	require.NoError(t, err)
	return b
}

func TestWorkerFlushesResidualCount(t *testing.T) {
	for _, stopAt := range []int{1, 17, FlushInterval, FlushInterval + 1, 3*FlushInterval + 123} {
		stats := NewSearchStats()
		src := &fixedSource{seed: fixedSeed(t), stopAt: stopAt, stats: stats}
		w := &worker{
			pattern:   patterns.Compile("00"), // never matches D75A...
			stats:     stats,
			out:       make(chan interface{}),
			done:      make(chan struct{}),
			newSource: func() (io.Reader, error) { return src, nil },
		}

		require.NoError(t, w.run())
		require.Equal(t, uint64(stopAt), w.generated, "stopAt %d", stopAt)
		require.Equal(t, uint64(stopAt), stats.Attempts(), "stopAt %d", stopAt)
		require.Zero(t, stats.Matches())
	}
}

func TestWorkerReportsValidKey(t *testing.T) {
	seed := fixedSeed(t)
	stats := NewSearchStats()
	out := make(chan interface{})
	done := make(chan struct{})
	w := &worker{
		id:        3,
		pattern:   patterns.Compile("d75a"),
		stats:     stats,
		out:       out,
		done:      done,
		newSource: func() (io.Reader, error) { return &fixedSource{seed: seed}, nil },
	}

	errc := make(chan error, 1)
	go func() { errc <- w.run() }()

	item := <-out
	key, ok := item.(*FoundKey)
	require.True(t, ok)

	pub := crypto.DerivePublicKey(&seed)
	expanded := crypto.ExpandPrivateKey(&seed)
	require.Equal(t, crypto.HexUpper(pub[:]), key.PublicKey)
	require.True(t, strings.HasPrefix(key.PublicKey, "D75A"))
	require.Equal(t, crypto.HexUpper(expanded[:]), string(key.PrivateKey.Expose()))
	require.Equal(t, 3, key.Worker)
	key.Wipe()

	// Consumer goes away: the worker must exit cleanly on its next match.
	stats.Stop()
	close(done)
	require.NoError(t, <-errc)
	require.GreaterOrEqual(t, stats.Matches(), uint64(1))
}

func TestWorkerExitsWhenConsumerGone(t *testing.T) {
	stats := NewSearchStats()
	done := make(chan struct{})
	close(done)

	w := &worker{
		pattern:   patterns.Compile("D7"),
		stats:     stats,
		out:       make(chan interface{}), // nobody reads
		done:      done,
		newSource: func() (io.Reader, error) { return &fixedSource{seed: fixedSeed(t)}, nil },
	}
	require.NoError(t, w.run())
	require.False(t, stats.Stopped())
	require.Equal(t, uint64(1), stats.Attempts())
}

func TestRunStopAfterOne(t *testing.T) {
	for _, workers := range []int{1, 4} {
		cfg := mustConfig(t, "A", findN(t, 1), workers)
		s := NewSearcher(cfg, WithLogger(zap.NewNop().Sugar()))

		var got []string
		sum, err := s.Run(context.Background(), func(k *FoundKey) error {
			got = append(got, k.PublicKey)
			require.Len(t, k.PrivateKey.Expose(), 2*crypto.ExpandedSize)
			return nil
		})
		require.NoError(t, err)

		require.Len(t, got, 1)
		require.True(t, strings.HasPrefix(got[0], "A"))
		require.Equal(t, uint64(1), sum.Delivered)
		require.Equal(t, sum.Matches, sum.Delivered+sum.Surplus)
		require.True(t, s.Stats().Stopped())
	}
}

func TestRunStopAfterN(t *testing.T) {
	cfg := mustConfig(t, "0", findN(t, 5), 3)

	seen := make(map[string]bool)
	sum, err := Run(context.Background(), cfg, func(k *FoundKey) error {
		require.True(t, strings.HasPrefix(k.PublicKey, "0"))
		seen[k.PublicKey] = true
		return nil
	}, WithLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)
	require.Equal(t, uint64(5), sum.Delivered)
	require.Len(t, seen, 5)
}

func TestRunAttemptsEqualPerWorkerSum(t *testing.T) {
	cfg := mustConfig(t, "ABCD", findN(t, 1), 4)
	s := NewSearcher(cfg, WithLogger(zap.NewNop().Sugar()))

	// Stop mid-batch from outside, well before the counters line up with
	// any flush boundary.
	go func() {
		for s.Stats().Attempts() == 0 {
			time.Sleep(time.Millisecond)
		}
		s.Stats().Stop()
	}()

	sum, err := s.Run(context.Background(), nil)
	require.NoError(t, err)

	var total uint64
	for _, n := range sum.PerWorker {
		total += n
	}
	require.Len(t, sum.PerWorker, 4)
	require.Equal(t, total, sum.Attempts)
	require.Positive(t, sum.Attempts)
}

func TestRunPreStoppedExitsImmediately(t *testing.T) {
	cfg := mustConfig(t, "0", findN(t, 1), 16)
	s := NewSearcher(cfg, WithLogger(zap.NewNop().Sugar()))
	s.Stats().Stop()

	var delivered atomic.Int32
	sum, err := s.Run(context.Background(), func(*FoundKey) error {
		delivered.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, delivered.Load())
	require.Zero(t, sum.Delivered)
	require.Zero(t, sum.Attempts)
	for _, n := range sum.PerWorker {
		require.Zero(t, n)
	}
}

func TestRunContinuousNeverStopsItself(t *testing.T) {
	cfg := mustConfig(t, "0", Continuous(), 2)
	s := NewSearcher(cfg, WithLogger(zap.NewNop().Sugar()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var delivered atomic.Uint64
	type result struct {
		sum Summary
		err error
	}
	res := make(chan result, 1)
	go func() {
		sum, err := s.Run(ctx, func(*FoundKey) error {
			delivered.Add(1)
			return nil
		})
		res <- result{sum, err}
	}()

	// Pattern "0" matches one key in 16; let plenty through.
	require.Eventually(t, func() bool { return delivered.Load() >= 20 }, 10*time.Second, time.Millisecond)
	require.False(t, s.Stats().Stopped())

	cancel()
	r := <-res
	require.NoError(t, r.err)
	require.True(t, s.Stats().Stopped())
	require.Zero(t, r.sum.Surplus)
	require.Equal(t, r.sum.Matches, r.sum.Delivered)
}

func TestRunHandlerErrorDoesNotStopSearch(t *testing.T) {
	cfg := mustConfig(t, "0", findN(t, 3), 2)

	var calls int
	sum, err := Run(context.Background(), cfg, func(*FoundKey) error {
		calls++
		return errors.New("disk full")
	}, WithLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, uint64(3), sum.Delivered)
}

func TestRunKeyWipedAfterHandler(t *testing.T) {
	cfg := mustConfig(t, "0", findN(t, 1), 1)

	var kept *FoundKey
	var buf []byte
	_, err := Run(context.Background(), cfg, func(k *FoundKey) error {
		kept = k
		buf = k.PrivateKey.Expose()
		return nil
	}, WithLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)

	require.NotNil(t, kept)
	require.Empty(t, kept.PrivateKey.Expose())
	require.Equal(t, make([]byte, len(buf)), buf)
	require.NotContains(t, fmt.Sprintf("%+v", kept), strings.Repeat("0", 2*crypto.ExpandedSize))
	require.Contains(t, fmt.Sprintf("%v", kept.PrivateKey), "[REDACTED]")
}

func TestRunWorkerSourceFailure(t *testing.T) {
	cfg := mustConfig(t, "0", Continuous(), 3)
	boom := errors.New("no entropy")

	sum, err := Run(context.Background(), cfg, nil,
		WithSource(func() (io.Reader, error) { return nil, boom }),
		WithLogger(zap.NewNop().Sugar()),
	)
	require.ErrorIs(t, err, boom)
	require.Zero(t, sum.Delivered)
}

func TestRunPartialWorkerFailureKeepsPoolAlive(t *testing.T) {
	cfg := mustConfig(t, "0", findN(t, 2), 3)
	boom := errors.New("no entropy")

	var calls atomic.Int32
	src := func() (io.Reader, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return NewChaCha8Source()
	}

	sum, err := Run(context.Background(), cfg, nil, WithSource(src), WithLogger(zap.NewNop().Sugar()))
	require.ErrorIs(t, err, boom)
	require.Equal(t, uint64(2), sum.Delivered)
}

func TestSearcherSingleUse(t *testing.T) {
	cfg := mustConfig(t, "0", findN(t, 1), 1)
	s := NewSearcher(cfg, WithLogger(zap.NewNop().Sugar()))

	_, err := s.Run(context.Background(), nil)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrAlreadyRun)
}

func TestMonitorStopsAtTarget(t *testing.T) {
	force := ticker.NewForce(time.Hour)
	cfg := mustConfig(t, "BEEF", findN(t, 2), 1)

	samples := make(chan Progress, 4)
	s := NewSearcher(cfg,
		WithTicker(force),
		WithProgress(func(p Progress) { samples <- p }),
		WithLogger(zap.NewNop().Sugar()),
	)

	quit := make(chan struct{})
	defer close(quit)
	done := make(chan struct{})
	start := time.Now()
	go func() {
		defer close(done)
		s.monitor(quit, start)
	}()

	s.stats.addAttempts(1000)
	s.stats.addMatch()
	force.Force <- start.Add(time.Second)
	first := <-samples
	require.Equal(t, uint64(1000), first.Attempts)
	require.InDelta(t, 1000.0, first.Rate, 1e-9)
	require.False(t, s.stats.Stopped())

	s.stats.addAttempts(500)
	s.stats.addMatch()
	force.Force <- start.Add(2 * time.Second)
	second := <-samples
	require.Equal(t, uint64(2), second.Matches)
	require.InDelta(t, 500.0, second.Rate, 1e-9)
	require.Equal(t, 2*time.Second, second.Elapsed)

	<-done
	require.True(t, s.stats.Stopped())
}

func TestMonitorContinuousNeverStops(t *testing.T) {
	force := ticker.NewForce(time.Hour)
	cfg := mustConfig(t, "BEEF", Continuous(), 1)
	s := NewSearcher(cfg, WithTicker(force), WithLogger(zap.NewNop().Sugar()))

	quit := make(chan struct{})
	done := make(chan struct{})
	start := time.Now()
	go func() {
		defer close(done)
		s.monitor(quit, start)
	}()

	for i := 1; i <= 5; i++ {
		for j := 0; j < 100; j++ {
			s.stats.addMatch()
		}
		force.Force <- start.Add(time.Duration(i) * time.Second)
	}
	require.False(t, s.stats.Stopped())

	close(quit)
	<-done
}

func TestConsumeDrainsSurplus(t *testing.T) {
	cfg := mustConfig(t, "BEEF", findN(t, 2), 1)
	s := NewSearcher(cfg, WithLogger(zap.NewNop().Sugar()))

	seed := fixedSeed(t)
	pub := crypto.DerivePublicKey(&seed)
	expanded := crypto.ExpandPrivateKey(&seed)

	in := make(chan interface{}, 5)
	var keys []*FoundKey
	for i := 0; i < 5; i++ {
		k := newFoundKey(i, &pub, &expanded)
		keys = append(keys, k)
		in <- k
	}
	close(in)

	var handled int
	delivered, surplus := s.consume(in, func(*FoundKey) error {
		handled++
		return nil
	}, time.Now())

	require.Equal(t, 2, handled)
	require.Equal(t, uint64(2), delivered)
	require.Equal(t, uint64(3), surplus)
	require.True(t, s.stats.Stopped())
	for _, k := range keys {
		require.Empty(t, k.PrivateKey.Expose())
	}
}
