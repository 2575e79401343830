package generator

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/queue"
	"github.com/lightningnetwork/lnd/ticker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"MeshKeygen/pkg/humanize"
	"MeshKeygen/pkg/logx"
)

// DefaultProgressInterval is how often the monitor samples the counters.
const DefaultProgressInterval = 3 * time.Second

var ErrAlreadyRun = errors.New("searcher already used; create a new one per run")

// FoundFunc receives every delivered key, in order, on the goroutine that
// called Run. The key is wiped when the callback returns, so it must not be
// retained. A returned error is logged and does not stop the search.
type FoundFunc func(key *FoundKey) error

// Progress is one monitor sample.
type Progress struct {
	Attempts uint64
	Matches  uint64
	Rate     float64 // candidates per second since the previous sample
	Elapsed  time.Duration
}

// Summary describes a finished run.
type Summary struct {
	Behavior  SearchBehavior
	Attempts  uint64
	Matches   uint64
	Delivered uint64   // keys handed to the FoundFunc
	Surplus   uint64   // keys found after the target was met, wiped unseen
	PerWorker []uint64 // candidates generated by each worker
	Elapsed   time.Duration
}

type Option func(*Searcher)

// WithTicker replaces the monitor's tick source.
func WithTicker(t ticker.Ticker) Option {
	return func(s *Searcher) { s.ticker = t }
}

func WithProgressInterval(d time.Duration) Option {
	return func(s *Searcher) {
		if d > 0 {
			s.ticker = ticker.New(d)
		}
	}
}

// WithProgress registers a hook called by the monitor on every sample.
func WithProgress(fn func(Progress)) Option {
	return func(s *Searcher) { s.onProgress = fn }
}

func WithSource(fn SourceFunc) Option {
	return func(s *Searcher) { s.newSource = fn }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Searcher) { s.log = l }
}

// Searcher runs one search. Its stats live exactly as long as the run, so a
// Searcher cannot be reused.
type Searcher struct {
	cfg        SearchConfig
	stats      *SearchStats
	ticker     ticker.Ticker
	onProgress func(Progress)
	newSource  SourceFunc
	log        *zap.SugaredLogger

	used atomic.Bool
}

func NewSearcher(cfg SearchConfig, opts ...Option) *Searcher {
	s := &Searcher{
		cfg:       cfg,
		stats:     NewSearchStats(),
		ticker:    ticker.New(DefaultProgressInterval),
		newSource: NewChaCha8Source,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logx.With("search")
	}
	return s
}

// Stats exposes the shared counters, e.g. for an external deadline that
// wants to raise the stop flag.
func (s *Searcher) Stats() *SearchStats { return s.stats }

// Run is the package-level shorthand for NewSearcher(cfg, opts...).Run.
func Run(ctx context.Context, cfg SearchConfig, onFound FoundFunc, opts ...Option) (Summary, error) {
	return NewSearcher(cfg, opts...).Run(ctx, onFound)
}

// Run blocks until the stopping policy is met or ctx is cancelled, then
// drains every in-flight key and waits for all workers and the monitor.
func (s *Searcher) Run(ctx context.Context, onFound FoundFunc) (Summary, error) {
	if !s.used.CompareAndSwap(false, true) {
		return Summary{}, ErrAlreadyRun
	}

	start := time.Now()
	n := s.cfg.Workers()

	// Cancellation only ever reaches the workers through the stop flag.
	stopWatch := context.AfterFunc(ctx, s.stats.Stop)
	defer stopWatch()

	found := queue.NewConcurrentQueue(n * 4)
	found.Start()
	defer found.Stop()

	// done tells workers the consumer has gone away. On every normal path
	// the workers have already exited when it closes.
	done := make(chan struct{})
	defer func() {
		s.stats.Stop()
		close(done)
	}()

	s.log.Infow("search started",
		"prefix", s.cfg.Prefix(),
		"behavior", s.cfg.Behavior().String(),
		"workers", n,
		"batch", BatchSize(s.cfg.Pattern().Len()),
	)

	workers := make([]*worker, n)
	var pool errgroup.Group
	for i := range workers {
		w := &worker{
			id:        i,
			pattern:   s.cfg.Pattern(),
			stats:     s.stats,
			out:       found.ChanIn(),
			done:      done,
			newSource: s.newSource,
		}
		workers[i] = w
		pool.Go(w.run)
	}

	// Closing the input once the last worker is gone lets the queue flush
	// its overflow and then close the output, which ends the consumer.
	poolErr := make(chan error, 1)
	go func() {
		err := pool.Wait()
		close(found.ChanIn())
		poolErr <- err
	}()

	monitorQuit := make(chan struct{})
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		s.monitor(monitorQuit, start)
	}()

	delivered, surplus := s.consume(found.ChanOut(), onFound, start)

	err := <-poolErr
	close(monitorQuit)
	<-monitorDone

	sum := Summary{
		Behavior:  s.cfg.Behavior(),
		Attempts:  s.stats.Attempts(),
		Matches:   s.stats.Matches(),
		Delivered: delivered,
		Surplus:   surplus,
		PerWorker: make([]uint64, n),
		Elapsed:   time.Since(start),
	}
	for i, w := range workers {
		sum.PerWorker[i] = w.generated
	}

	if err != nil {
		s.log.Errorw("worker failed", "err", err)
	}
	s.log.Infow("search stopped",
		"attempts", sum.Attempts,
		"matches", sum.Matches,
		"delivered", sum.Delivered,
		"surplus", sum.Surplus,
		"elapsed", humanize.ShortDuration(sum.Elapsed),
	)
	return sum, err
}

// consume is the single reader of found keys. Under FindN it delivers at most
// N keys and raises the stop flag once N have been processed; anything that
// arrives later is drained and wiped so no worker is left blocked.
func (s *Searcher) consume(in <-chan interface{}, onFound FoundFunc, start time.Time) (delivered, surplus uint64) {
	behavior := s.cfg.Behavior()

	for item := range in {
		key, ok := item.(*FoundKey)
		if !ok {
			continue
		}
		if behavior.reached(delivered) {
			surplus++
			key.Wipe()
			continue
		}

		delivered++
		s.log.Infow("FOUND",
			"n", delivered,
			"public_key", key.PublicKey,
			"worker", key.Worker,
			"attempts", s.stats.Attempts(),
			"elapsed", humanize.ShortDuration(time.Since(start)),
		)
		if onFound != nil {
			if err := onFound(key); err != nil {
				s.log.Errorw("found key handler failed", "public_key", key.PublicKey, "err", err)
			}
		}
		key.Wipe()

		if behavior.reached(delivered) && !s.stats.Stopped() {
			s.log.Infow("target reached, stop all workers", "delivered", delivered)
			s.stats.Stop()
		}
	}
	return delivered, surplus
}

// monitor samples the counters on every tick for progress reporting. Under
// FindN it also raises the stop flag as soon as enough matches were seen,
// which can happen before the consumer has caught up.
func (s *Searcher) monitor(quit <-chan struct{}, start time.Time) {
	s.ticker.Resume()
	defer s.ticker.Stop()

	behavior := s.cfg.Behavior()
	lastAttempts, lastTime := uint64(0), start

	for {
		select {
		case now := <-s.ticker.Ticks():
			p := Progress{
				Attempts: s.stats.Attempts(),
				Matches:  s.stats.Matches(),
				Elapsed:  now.Sub(start),
			}
			if dt := now.Sub(lastTime).Seconds(); dt > 0 && p.Attempts >= lastAttempts {
				p.Rate = float64(p.Attempts-lastAttempts) / dt
			}
			lastAttempts, lastTime = p.Attempts, now

			s.log.Debugw("progress",
				"attempts", p.Attempts,
				"matches", p.Matches,
				"rate", humanize.LargeNumber(uint64(p.Rate)),
				"elapsed", humanize.ShortDuration(p.Elapsed),
			)
			if s.onProgress != nil {
				s.onProgress(p)
			}

			if behavior.reached(p.Matches) {
				s.stats.Stop()
			}
			if s.stats.Stopped() {
				return
			}

		case <-quit:
			return
		}
	}
}
