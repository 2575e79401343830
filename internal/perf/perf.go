// Package perf measures key derivation throughput, caches the measurement on
// disk and turns it into search-time estimates.
package perf

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"MeshKeygen/internal/crypto"
	"MeshKeygen/internal/patterns"
	"MeshKeygen/pkg/logx"
)

const (
	// CacheValidity bounds how old a cached measurement may be. Load and
	// thermal state drift, so stale numbers are re-measured.
	CacheValidity = 12 * time.Hour

	// RealWorldFactor discounts raw derivation speed for matching and
	// coordination overhead.
	RealWorldFactor = 0.85
)

var ErrInsufficientData = errors.New("benchmark produced insufficient data")

// Result is one benchmark outcome, stored as JSON in the cache file.
type Result struct {
	KeysPerSecPerCore float64 `json:"keys_per_sec_per_core"`
	CoresUsed         int     `json:"cores_used"`
	Timestamp         int64   `json:"timestamp"` // unix seconds
	Platform          string  `json:"platform"`
}

// TotalSpeed is the expected aggregate speed over the given number of workers.
func (r Result) TotalSpeed(workers int) float64 {
	return r.KeysPerSecPerCore * float64(workers)
}

// Platform identifies the machine a measurement was taken on.
func Platform() string {
	return fmt.Sprintf("%s - %d cores", runtime.GOARCH, runtime.NumCPU())
}

// Cache is the JSON file holding the last Result.
type Cache struct {
	path  string
	clock clock.Clock
}

func NewCache(path string, clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Cache{path: path, clock: clk}
}

func (c *Cache) Path() string { return c.path }

// Load returns the cached result if the file exists, parses and is younger
// than CacheValidity.
func (c *Cache) Load() (Result, bool) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return Result{}, false
	}
	var r Result
	if err := json.Unmarshal(b, &r); err != nil {
		return Result{}, false
	}
	age := c.clock.Now().Sub(time.Unix(r.Timestamp, 0))
	if age < 0 || age >= CacheValidity {
		return Result{}, false
	}
	return r, true
}

// Save replaces the cache file. The result is written to a temp file first
// and renamed into place so a crash never leaves a truncated cache.
func (c *Cache) Save(r Result) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal perf result: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".perf-*.json")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("rename cache: %w", err)
	}
	return nil
}

// Benchmark measures raw public key derivation over Cores goroutines.
type Benchmark struct {
	Cores    int
	Warmup   time.Duration
	Duration time.Duration
	Runs     int
	Batch    int // seeds pre-generated per goroutine

	Clock clock.Clock
	Log   *zap.SugaredLogger

	// OnRun, when set, is called after every timed run.
	OnRun func(run int, m Measurement)
}

// Measurement is one timed run.
type Measurement struct {
	KeysPerSecPerCore float64
	Total             uint64
	Elapsed           time.Duration
}

func DefaultBenchmark(cores int) Benchmark {
	return Benchmark{
		Cores:    cores,
		Warmup:   time.Second,
		Duration: 2 * time.Second,
		Runs:     5,
		Batch:    128,
	}
}

// Run warms up, performs Runs timed measurements and averages them.
func (b Benchmark) Run(ctx context.Context) (Result, error) {
	if b.Cores < 1 {
		b.Cores = 1
	}
	if b.Runs < 1 {
		b.Runs = 1
	}
	if b.Clock == nil {
		b.Clock = clock.NewDefaultClock()
	}
	log := b.Log
	if log == nil {
		log = logx.With("perf")
	}

	log.Infow("benchmark started", "cores", b.Cores, "runs", b.Runs, "run_duration", b.Duration)

	if b.Warmup > 0 {
		if _, err := b.measure(ctx, b.Warmup); err != nil && ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
	}

	var sum float64
	for run := 1; run <= b.Runs; run++ {
		m, err := b.measure(ctx, b.Duration)
		if err != nil {
			return Result{}, fmt.Errorf("run %d/%d: %w", run, b.Runs, err)
		}
		log.Debugw("benchmark run",
			"run", run,
			"keys_per_sec_per_core", m.KeysPerSecPerCore,
			"total", m.Total,
			"elapsed", m.Elapsed,
		)
		if b.OnRun != nil {
			b.OnRun(run, m)
		}
		sum += m.KeysPerSecPerCore
	}

	r := Result{
		KeysPerSecPerCore: sum / float64(b.Runs),
		CoresUsed:         b.Cores,
		Timestamp:         b.Clock.Now().Unix(),
		Platform:          Platform(),
	}
	log.Infow("benchmark done",
		"keys_per_sec_per_core", r.KeysPerSecPerCore,
		"total_speed", r.TotalSpeed(b.Cores),
	)
	return r, nil
}

func (b Benchmark) measure(ctx context.Context, d time.Duration) (Measurement, error) {
	batch := b.Batch
	if batch < 1 {
		batch = 1
	}

	var total atomic.Uint64
	start := time.Now()
	deadline := start.Add(d)

	var g errgroup.Group
	for i := 0; i < b.Cores; i++ {
		g.Go(func() error {
			seeds := make([][crypto.SeedSize]byte, batch)
			for j := range seeds {
				if _, err := cryptorand.Read(seeds[j][:]); err != nil {
					return fmt.Errorf("seed benchmark: %w", err)
				}
			}
			defer clear(seeds)

			var local uint64
			defer func() { total.Add(local) }()
			for ctx.Err() == nil {
				for j := range seeds {
					if !time.Now().Before(deadline) {
						return nil
					}
					_ = crypto.DerivePublicKey(&seeds[j])
					local++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Measurement{}, err
	}
	if err := ctx.Err(); err != nil {
		return Measurement{}, err
	}

	elapsed := time.Since(start)
	n := total.Load()
	if n == 0 || elapsed < 100*time.Millisecond {
		return Measurement{}, ErrInsufficientData
	}
	return Measurement{
		KeysPerSecPerCore: float64(n) / elapsed.Seconds() / float64(b.Cores),
		Total:             n,
		Elapsed:           elapsed,
	}, nil
}

// LoadOrMeasure returns the cached result when still valid, otherwise builds
// a benchmark with newBench, runs it and caches its result. A failed save is
// logged, not returned.
func LoadOrMeasure(ctx context.Context, cache *Cache, newBench func() Benchmark) (Result, bool, error) {
	if r, ok := cache.Load(); ok {
		return r, true, nil
	}
	r, err := newBench().Run(ctx)
	if err != nil {
		return Result{}, false, err
	}
	if err := cache.Save(r); err != nil {
		logx.With("perf").Warnw("cache performance result", "path", cache.Path(), "err", err)
	}
	return r, false, nil
}

// EstimateSearchTime returns the average number of seconds needed to find one
// key whose public key starts with prefixLen given hex characters. Unknown or
// non-positive speeds give +Inf.
func EstimateSearchTime(prefixLen int, keysPerSec float64) float64 {
	if keysPerSec <= 0 || math.IsNaN(keysPerSec) || math.IsInf(keysPerSec, 0) {
		return math.Inf(1)
	}
	return patterns.Difficulty(prefixLen) / (keysPerSec * RealWorldFactor)
}

// Estimate is the expected wait for one match. Attempts until a match are
// geometric, so the wait within which a match is found with probability p is
// Average·ln(1/(1-p)).
type Estimate struct {
	Average float64 // seconds
	P50     float64
	P90     float64
}

func EstimateFor(prefixLen int, keysPerSec float64) Estimate {
	avg := EstimateSearchTime(prefixLen, keysPerSec)
	return Estimate{
		Average: avg,
		P50:     avg * math.Ln2,
		P90:     avg * math.Ln10,
	}
}
