package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/mallows"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/rng"
)

// LLLRun is the outcome of a single Moser-Tardos resampling run
type LLLRun struct {
	Rounds    int  // rounds consumed, counting the initial draw
	Resamples int  // individual ballots redrawn
	Converged bool // false when the round cap stopped the run
}

// SampleLLL runs the resampling process: draw every ballot, then, while p is
// not a weak plurality winner, redraw every ballot that does not rank p first.
// The bad event of voter i is "ballot i does not rank p first"; the run stops
// as soon as the global event "p wins" holds. maxRounds <= 0 means no cap.
// ctx is checked before every resampling round; once it is done the partial
// run is returned with ctx.Err().
func SampleLLL(ctx context.Context, models []mallows.Model, p election.Candidate, src rng.Source, maxRounds int) (LLLRun, error) {
	votes := mallows.SampleVotes(models, src)
	run := LLLRun{Rounds: 1}

	for !election.IsMajorityWinner(votes, p) {
		if maxRounds > 0 && run.Rounds >= maxRounds {
			return run, nil
		}
		if err := ctx.Err(); err != nil {
			return run, err
		}
		for i := range votes {
			if votes[i].First() != p {
				votes[i] = models[i].Sample(src)
				run.Resamples++
			}
		}
		run.Rounds++
	}

	run.Converged = true
	return run, nil
}

// LLL estimates Pr[p wins] as the mean of 1/R over samples independent
// Moser-Tardos runs, R being the rounds a run consumed.
//
// Runs that hit the round cap contribute no statistic. When any run was
// capped the populated Result is returned together with an error wrapping
// ErrNotConverged.
func LLL(ctx context.Context, e *election.Election, samples int, config *Config) (*Result, error) {
	startTime := time.Now()
	logger := config.CreateLogger()

	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid election: %w", err)
	}
	if samples < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", samples)
	}

	seed := config.RandomSeed()
	roundCap := config.RoundCap(e.Voters)
	logger.Info().
		Int("candidates", e.Candidates).
		Int("voters", e.Voters).
		Int("designated", int(e.Designated)).
		Int("samples", samples).
		Int("round_cap", roundCap).
		Int64("seed", seed).
		Msg("Starting Moser-Tardos estimation")

	var tracker *RunTracker
	if config.TrackRuns() {
		var err error
		tracker, err = NewRunTracker(config.TrackingOutputFile())
		if err != nil {
			logger.Warn().Err(err).Msg("Run tracking disabled")
		}
		defer func() {
			if err := tracker.Close(); err != nil {
				logger.Warn().Err(err).Str("file", config.TrackingOutputFile()).Msg("Run trace incomplete")
			}
		}()
	}

	models := mallows.Models(e)
	t, workers, err := runTrials(ctx, config, logger, LLLMethod, seed, samples,
		func(ctx context.Context, worker, trial int, src rng.Source, t *tally) error {
			run, err := SampleLLL(ctx, models, e.Designated, src, roundCap)
			if err != nil {
				return err
			}
			tracker.LogRun(trial, worker, run)

			t.rounds += int64(run.Rounds)
			t.resamples += int64(run.Resamples)
			if run.Rounds > t.maxRounds {
				t.maxRounds = run.Rounds
			}
			if !run.Converged {
				t.nonConverged++
				return nil
			}
			t.add(1 / float64(run.Rounds))
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("moser-tardos estimation: %w", err)
	}

	result := &Result{
		Method:    LLLMethod,
		Samples:   samples,
		Converged: t.nonConverged == 0,
		LLL: &LLLStats{
			RoundCap:       roundCap,
			NonConverged:   t.nonConverged,
			TotalRounds:    t.rounds,
			MeanRounds:     float64(t.rounds) / float64(samples),
			MaxRounds:      t.maxRounds,
			TotalResamples: t.resamples,
		},
		Statistics: Statistics{
			Seed:    seed,
			Workers: workers,
		},
	}
	result.summarize(t, e.Delta)
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()
	result.Statistics.MemoryPeakMB = getMemoryUsage()

	if !result.Converged {
		logger.Warn().
			Int("non_converged", t.nonConverged).
			Int("round_cap", roundCap).
			Float64("partial_estimate", result.Estimate).
			Msg("Moser-Tardos runs hit the round cap")
		return result, fmt.Errorf("%d of %d runs exceeded %d rounds: %w", t.nonConverged, samples, roundCap, ErrNotConverged)
	}

	logger.Info().
		Float64("estimate", result.Estimate).
		Float64("mean_rounds", result.LLL.MeanRounds).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Moser-Tardos estimation completed")

	return result, nil
}
