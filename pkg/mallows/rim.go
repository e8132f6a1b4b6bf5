// Package mallows samples rankings from Mallows models with the Repeated
// Insertion Method (RIM).
package mallows

import (
	"math"
	"slices"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/rng"
)

// Model is the Mallows distribution of a single voter
type Model struct {
	Reference  election.Ranking
	Dispersion float64
}

// Models returns the per-voter models of an election, index-aligned with voters
func Models(e *election.Election) []Model {
	models := make([]Model, e.Voters)
	for i := range models {
		models[i] = Model{Reference: e.References[i], Dispersion: e.Dispersions[i]}
	}
	return models
}

// Sample draws one ranking from the model
func (m Model) Sample(src rng.Source) election.Ranking {
	return Sample(m.Reference, m.Dispersion, src)
}

// InsertLocation picks where the i-th reference candidate goes in an output
// of length i. Position j carries weight dispersion^(i-j); threshold is a
// uniform draw already scaled by Σ_{k=0..i} dispersion^k. When rounding keeps
// the running total from passing the threshold the candidate goes last.
func InsertLocation(i int, dispersion, threshold float64) int {
	total := 0.0
	for j := 0; j <= i; j++ {
		total += math.Pow(dispersion, float64(i-j))
		if threshold < total {
			return j
		}
	}
	return i
}

// Sample draws a ranking from the Mallows model centred on reference. O(c²).
//
// A dispersion of 1 is uniform over permutations; as dispersion goes to 0 the
// output converges to the reference. Dispersion 0 is not special-cased: every
// draw lands on the weight-1 slot, which reproduces the reference exactly.
func Sample(reference election.Ranking, dispersion float64, src rng.Source) election.Ranking {
	out := make(election.Ranking, 0, len(reference))
	denom := 0.0
	for i, cand := range reference {
		denom += math.Pow(dispersion, float64(i))
		j := InsertLocation(i, dispersion, src.Float64()*denom)
		out = slices.Insert(out, j, cand)
	}
	return out
}

// SampleVotes draws a full vote set, one independent ranking per model
func SampleVotes(models []Model, src rng.Source) election.VoteSet {
	votes := make(election.VoteSet, len(models))
	for i, m := range models {
		votes[i] = m.Sample(src)
	}
	return votes
}
