package estimator

import (
	"errors"
	"math"
	"runtime"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNotConverged is returned (wrapped) when at least one Moser-Tardos run
// hit the round cap before the designated candidate won.
var ErrNotConverged = errors.New("moser-tardos resampling did not converge")

// Method names an estimator
type Method string

const (
	MonteCarloMethod Method = "montecarlo"
	LLLMethod        Method = "lll"
)

// stream is the random stream family of the method, keeping the estimators of
// one report independent under a shared seed.
func (m Method) stream() int {
	switch m {
	case MonteCarloMethod:
		return 0
	case LLLMethod:
		return 1
	}
	return 2
}

// Methods lists the available estimators
func Methods() []Method {
	return []Method{MonteCarloMethod, LLLMethod}
}

// Result is the outcome of one estimator
type Result struct {
	Method     Method     `json:"method"`
	Estimate   float64    `json:"estimate"`
	Samples    int        `json:"samples"`   // trials requested
	Completed  int        `json:"completed"` // trials contributing to Estimate
	StdErr     float64    `json:"std_err"`
	Lower      float64    `json:"lower"`
	Upper      float64    `json:"upper"`
	Confidence float64    `json:"confidence"`
	Converged  bool       `json:"converged"`
	LLL        *LLLStats  `json:"lll,omitempty"`
	Statistics Statistics `json:"statistics"`
}

// LLLStats describes the Moser-Tardos runs behind an LLL estimate
type LLLStats struct {
	RoundCap       int     `json:"round_cap"`
	NonConverged   int     `json:"non_converged"`
	TotalRounds    int64   `json:"total_rounds"`
	MeanRounds     float64 `json:"mean_rounds"`
	MaxRounds      int     `json:"max_rounds"`
	TotalResamples int64   `json:"total_resamples"`
}

// Statistics contains run metadata
type Statistics struct {
	Seed         int64 `json:"seed"`
	Workers      int   `json:"workers"`
	RuntimeMS    int64 `json:"runtime_ms"`
	MemoryPeakMB int64 `json:"memory_peak_mb"`
}

// tally is the per-worker accumulator. Merging tallies is associative.
type tally struct {
	trials int
	sum    float64
	sumSq  float64

	nonConverged int
	rounds       int64
	maxRounds    int
	resamples    int64
}

func (t *tally) add(x float64) {
	t.trials++
	t.sum += x
	t.sumSq += x * x
}

func mergeTallies(parts []tally) tally {
	var out tally
	sums := make([]float64, len(parts))
	sumSqs := make([]float64, len(parts))
	for i, p := range parts {
		sums[i] = p.sum
		sumSqs[i] = p.sumSq
		out.trials += p.trials
		out.nonConverged += p.nonConverged
		out.rounds += p.rounds
		out.resamples += p.resamples
		if p.maxRounds > out.maxRounds {
			out.maxRounds = p.maxRounds
		}
	}
	out.sum = floats.Sum(sums)
	out.sumSq = floats.Sum(sumSqs)
	return out
}

// summarize fills the estimate, its standard error and a normal-approximation
// interval at confidence 1-δ, clamped to [0, 1].
func (r *Result) summarize(t tally, delta float64) {
	r.Completed = t.trials
	r.Confidence = 1 - delta
	if t.trials == 0 {
		r.Lower, r.Upper = 0, 1
		return
	}

	n := float64(t.trials)
	r.Estimate = t.sum / n
	if t.trials > 1 {
		variance := (t.sumSq - t.sum*t.sum/n) / (n - 1)
		r.StdErr = math.Sqrt(math.Max(variance, 0) / n)
	}

	z := distuv.UnitNormal.Quantile(1 - delta/2)
	r.Lower = math.Max(0, r.Estimate-z*r.StdErr)
	r.Upper = math.Min(1, r.Estimate+z*r.StdErr)
}

// getMemoryUsage returns current memory usage in MB
func getMemoryUsage() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
