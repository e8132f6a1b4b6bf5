package estimator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
)

// Report bundles the estimates of one election
type Report struct {
	Candidates int     `json:"candidates"`
	Voters     int     `json:"voters"`
	Designated int     `json:"designated"`
	Samples    int     `json:"samples"`
	Seed       int64   `json:"seed"`
	MonteCarlo *Result `json:"montecarlo,omitempty"`
	LLL        *Result `json:"lll,omitempty"`
	RuntimeMS  int64   `json:"runtime_ms"`
}

// Samples is the trial count for e: algorithm.samples when set, otherwise
// ceil(n² · (−ln δ) / ε²).
func Samples(e *election.Election, config *Config) int {
	if n := config.Samples(); n > 0 {
		return n
	}
	return e.SampleCount()
}

// Estimate runs the requested estimators (both when methods is empty) with
// the same sample count. Estimators share nothing but the read-only election.
// A non-converged LLL estimate is kept in the report and its error returned.
func Estimate(ctx context.Context, e *election.Election, config *Config, methods ...Method) (*Report, error) {
	startTime := time.Now()

	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid election: %w", err)
	}
	if len(methods) == 0 {
		methods = Methods()
	}

	report := &Report{
		Candidates: e.Candidates,
		Voters:     e.Voters,
		Designated: int(e.Designated),
		Samples:    Samples(e, config),
		Seed:       config.RandomSeed(),
	}

	var convergence error
	for _, method := range methods {
		switch method {
		case MonteCarloMethod:
			result, err := MonteCarlo(ctx, e, report.Samples, config)
			if err != nil {
				return nil, err
			}
			report.MonteCarlo = result
		case LLLMethod:
			result, err := LLL(ctx, e, report.Samples, config)
			if err != nil && !errors.Is(err, ErrNotConverged) {
				return nil, err
			}
			report.LLL = result
			convergence = err
		default:
			return nil, fmt.Errorf("unknown estimator method: %q", method)
		}
	}

	report.RuntimeMS = time.Since(startTime).Milliseconds()
	return report, convergence
}

// ParseMethod maps a method name to a Method; "both" and "" yield every method
func ParseMethod(name string) ([]Method, error) {
	switch name {
	case "", "both", "all":
		return Methods(), nil
	case string(MonteCarloMethod), "mc":
		return []Method{MonteCarloMethod}, nil
	case string(LLLMethod):
		return []Method{LLLMethod}, nil
	}
	return nil, fmt.Errorf("unknown estimator method: %q", name)
}
