package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"MeshKeygen/internal/generator"
	"MeshKeygen/internal/perf"
	"MeshKeygen/pkg/humanize"
)

// printPerformance shows the measured (or cached) speed and the expected
// search time for cfg. Benchmark failures only cost the estimate.
func (r *Runner) printPerformance(ctx context.Context, cfg generator.SearchConfig) {
	newBench := func() perf.Benchmark {
		b := r.newBenchmark(cfg.Workers())
		b.OnRun = func(run int, m perf.Measurement) {
			r.printf(r.Msg.PerfRun, run, m.KeysPerSecPerCore, m.Total, humanize.ShortDuration(m.Elapsed))
		}
		r.printf(r.Msg.PerfRunning, b.Cores)
		return b
	}

	res, cached, err := perf.LoadOrMeasure(ctx, perf.NewCache(r.Conf.PerfCache, nil), newBench)
	switch {
	case err != nil:
		r.log.Warnw("benchmark", "err", err)
		r.printf("%s: %v\n", r.Msg.PerfUnavailable, err)
		return
	case cached:
		r.printf("%s\n", r.Msg.PerfCached)
	default:
		r.printf("%s\n", r.Msg.PerfDone)
	}

	speed := res.TotalSpeed(cfg.Workers())
	est := perf.EstimateFor(cfg.Pattern().Len(), speed)

	r.mu.Lock()
	defer r.mu.Unlock()

	tw := table.NewWriter()
	tw.SetOutputMirror(r.Out)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(r.Msg.StatsHeader)
	tw.AppendRows([]table.Row{
		{r.Msg.PerfPlatform, res.Platform},
		{r.Msg.StatsPrefixLen, cfg.Pattern().Len()},
		{r.Msg.StatsSpeed, fmt.Sprintf("%.0f (%s)", speed, humanize.LargeNumber(uint64(speed)))},
		{r.Msg.StatsAverage, humanize.Duration(est.Average)},
		{r.Msg.Stats50, humanize.Duration(est.P50)},
		{r.Msg.Stats90, humanize.Duration(est.P90)},
	})
	tw.Render()
	fmt.Fprintln(r.Out, r.Msg.StatsNote)
}
