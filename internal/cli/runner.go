package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"MeshKeygen/internal/generator"
	"MeshKeygen/internal/keystore"
	"MeshKeygen/internal/perf"
	"MeshKeygen/internal/secure"
	"MeshKeygen/pkg/appcfg"
	"MeshKeygen/pkg/humanize"
	"MeshKeygen/pkg/i18n"
	"MeshKeygen/pkg/logx"
)

// longRunThreshold switches the progress line to the variant that also shows
// the running time.
const longRunThreshold = 30 * time.Second

type Runner struct {
	Conf  *appcfg.Config
	Msg   i18n.Messages
	Out   io.Writer
	IsTTY bool

	log *zap.SugaredLogger

	mu sync.Mutex // serialises writes to Out

	newBenchmark func(cores int) perf.Benchmark
	searchOpts   []generator.Option
}

// SearchParams are the per-invocation knobs taken from the command line.
type SearchParams struct {
	Pattern string
	MaxKeys int
	Workers int
	NoBench bool
}

func NewRunner(conf *appcfg.Config) *Runner {
	if conf == nil {
		conf = appcfg.Default()
	}
	return &Runner{
		Conf:         conf,
		Msg:          i18n.Get(conf.Language),
		Out:          os.Stdout,
		IsTTY:        term.IsTerminal(int(os.Stdout.Fd())),
		log:          logx.With("cli"),
		newBenchmark: perf.DefaultBenchmark,
	}
}

func (r *Runner) print(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	io.WriteString(r.Out, s)
}

func (r *Runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.Out, format, args...)
}

// workers picks the worker count: flag, then config, then CPUs-1.
func (r *Runner) workers(flag int) int {
	switch {
	case flag > 0:
		return flag
	case r.Conf.Cores > 0:
		return r.Conf.Cores
	default:
		return generator.DefaultWorkers()
	}
}

func (r *Runner) Search(ctx context.Context, p SearchParams) error {
	behavior, err := generator.BehaviorFromMaxKeys(p.MaxKeys)
	if err != nil {
		return err
	}
	cfg, err := generator.NewSearchConfig(p.Pattern, behavior, r.workers(p.Workers))
	if err != nil {
		return err
	}

	ctx, stop := withInterrupt(ctx, func(os.Signal) { r.print(r.Msg.Interrupted) })
	defer stop()

	if !p.NoBench {
		r.printPerformance(ctx, cfg)
		if ctx.Err() != nil {
			return nil
		}
	}

	r.printf(r.Msg.SearchWorkers, cfg.Workers())
	r.printf(r.Msg.SearchBehavior, r.describe(cfg.Behavior()))

	keys := keystore.NewKeyLog(r.Conf.KeysFile)
	var found int
	onFound := func(key *generator.FoundKey) error {
		found++
		r.printf(r.Msg.Found, found, key.PublicKey)
		if err := keys.Append(key.PrivateKey, key.PublicKey); err != nil {
			r.printf(r.Msg.FoundSaveFailed, err)
			return err
		}
		return nil
	}

	opts := []generator.Option{generator.WithProgressInterval(r.Conf.ProgressInterval)}
	if r.IsTTY {
		opts = append(opts, generator.WithProgress(r.renderProgress))
	}
	opts = append(opts, r.searchOpts...)

	r.log.Infow("start search",
		"prefix", cfg.Prefix(),
		"behavior", cfg.Behavior().String(),
		"workers", cfg.Workers(),
		"keys_file", keys.Path(),
	)
	sum, err := generator.Run(ctx, cfg, onFound, opts...)
	if err != nil {
		r.log.Errorw("search error", "err", err)
	}

	if sum.Delivered > 0 {
		r.printf(r.Msg.Success, sum.Delivered)
		r.printf(r.Msg.SavedTo, keys.Path())
		r.print(r.Msg.DeleteReminder)
	} else {
		r.print(r.Msg.NoneFound)
	}
	return err
}

func (r *Runner) describe(b generator.SearchBehavior) string {
	if n, ok := b.Target(); ok {
		return fmt.Sprintf(r.Msg.BehaviorFindN, n)
	}
	return r.Msg.BehaviorContinue
}

func (r *Runner) renderProgress(p generator.Progress) {
	attempts := humanize.LargeNumber(p.Attempts)
	rate := humanize.LargeNumber(uint64(p.Rate))
	if p.Elapsed > longRunThreshold {
		r.printf(r.Msg.ProgressLong, attempts, p.Matches, rate, humanize.Duration(p.Elapsed.Seconds()))
		return
	}
	r.printf(r.Msg.Progress, attempts, p.Matches, rate)
}

// Delete securely removes the keys file.
func (r *Runner) Delete(ctx context.Context) error {
	ctx, stop := withInterrupt(ctx, nil)
	defer stop()

	path := r.Conf.KeysFile
	method, err := secure.WipeFile(ctx, path)
	if err != nil {
		r.log.Errorw("secure delete", "path", path, "err", err)
		return fmt.Errorf("%s: %w", r.Msg.DeleteFailed, err)
	}
	if method == secure.MethodNone {
		r.printf(r.Msg.DeleteNothing, path)
		return nil
	}
	r.log.Infow("secure delete", "path", path, "method", string(method))
	r.printf(r.Msg.DeleteDone, path, string(method))
	return nil
}

// withInterrupt cancels the returned context on SIGINT/SIGTERM. The signal
// handler is released when the returned stop function is called.
func withInterrupt(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
