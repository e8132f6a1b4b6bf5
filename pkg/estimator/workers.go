package estimator

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/rng"
)

// span is the contiguous trial range [start, end) owned by one worker
type span struct {
	start, end int
}

// partition splits total trials over at most workers contiguous spans. Spans
// differ in length by at most one; no span is empty.
func partition(total, workers int) []span {
	if total <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	spans := make([]span, workers)
	base, extra := total/workers, total%workers
	start := 0
	for w := range spans {
		size := base
		if w < extra {
			size++
		}
		spans[w] = span{start: start, end: start + size}
		start += size
	}
	return spans
}

// trialFunc runs one trial on the worker's private stream and records its
// statistic into t. A trial that blocks must give up once ctx is done.
type trialFunc func(ctx context.Context, worker, trial int, src rng.Source, t *tally) error

// runTrials executes total trials. Each method draws from its own stream
// family base = rng.Derive(seed, method.stream()). With one worker the trials
// consume rng.New(base) in order; otherwise worker w consumes
// rng.Partition(base, w), so results are reproducible per (seed, workers).
func runTrials(ctx context.Context, cfg *Config, logger zerolog.Logger, method Method, seed int64, total int, trial trialFunc) (tally, int, error) {
	base := rng.Derive(seed, method.stream())
	spans := partition(total, cfg.Workers())
	parts := make([]tally, len(spans))

	var completed atomic.Int64
	interval := int64(cfg.ProgressInterval())
	progress := cfg.EnableProgress() && interval > 0

	g, gctx := errgroup.WithContext(ctx)
	for w, sp := range spans {
		g.Go(func() error {
			src := rng.Partition(base, w)
			t := &parts[w]
			for i := sp.start; i < sp.end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := trial(gctx, w, i, src, t); err != nil {
					return err
				}

				done := completed.Add(1)
				if progress && done%interval == 0 {
					logger.Info().
						Str("method", string(method)).
						Int64("completed", done).
						Int("samples", total).
						Msg("Estimation progress")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return tally{}, len(spans), err
	}
	return mergeTallies(parts), len(spans), nil
}
