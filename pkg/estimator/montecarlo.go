package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/mallows"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/rng"
)

// MonteCarlo estimates Pr[p wins] as the fraction of samples fresh vote sets
// in which the designated candidate is a (weak) plurality winner.
func MonteCarlo(ctx context.Context, e *election.Election, samples int, config *Config) (*Result, error) {
	startTime := time.Now()
	logger := config.CreateLogger()

	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid election: %w", err)
	}
	if samples < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", samples)
	}

	seed := config.RandomSeed()
	logger.Info().
		Int("candidates", e.Candidates).
		Int("voters", e.Voters).
		Int("designated", int(e.Designated)).
		Int("samples", samples).
		Int64("seed", seed).
		Msg("Starting Monte Carlo estimation")

	models := mallows.Models(e)
	t, workers, err := runTrials(ctx, config, logger, MonteCarloMethod, seed, samples,
		func(_ context.Context, _, _ int, src rng.Source, t *tally) error {
			votes := mallows.SampleVotes(models, src)
			if election.IsMajorityWinner(votes, e.Designated) {
				t.add(1)
			} else {
				t.add(0)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("monte carlo estimation: %w", err)
	}

	result := &Result{
		Method:    MonteCarloMethod,
		Samples:   samples,
		Converged: true,
		Statistics: Statistics{
			Seed:    seed,
			Workers: workers,
		},
	}
	result.summarize(t, e.Delta)
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()
	result.Statistics.MemoryPeakMB = getMemoryUsage()

	logger.Info().
		Float64("estimate", result.Estimate).
		Float64("std_err", result.StdErr).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Monte Carlo estimation completed")

	return result, nil
}
