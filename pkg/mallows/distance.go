package mallows

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
)

// FirstPositionDistance is |π[0] − π₀[0]|, the distance between the
// identifiers of the two first-ranked candidates. It looks at nothing but the
// top of each ranking.
func FirstPositionDistance(pi, ref election.Ranking) int {
	d := int(pi.First()) - int(ref.First())
	if d < 0 {
		return -d
	}
	return d
}

// KendallTau counts candidate pairs the two rankings order differently.
// Both rankings must be permutations of the same candidates.
func KendallTau(pi, ref election.Ranking) int {
	pos := make(map[election.Candidate]int, len(ref))
	for i, cand := range ref {
		pos[cand] = i
	}

	d := 0
	for i := 0; i < len(pi); i++ {
		for j := i + 1; j < len(pi); j++ {
			if pos[pi[i]] > pos[pi[j]] {
				d++
			}
		}
	}
	return d
}

// NormalizingConstant is Z(c, σ) = Π_{i=0..c-1} Σ_{k=0..i} σ^k, the Kendall-tau
// Mallows partition function. It is also the product of the running
// denominators RIM builds while sampling.
func NormalizingConstant(c int, dispersion float64) float64 {
	z := 1.0
	powers := make([]float64, 0, c)
	for i := 0; i < c; i++ {
		powers = append(powers, math.Pow(dispersion, float64(i)))
		z *= floats.Sum(powers)
	}
	return z
}

// Probability is the mass RIM assigns to pi: σ^KT(π, π₀) / Z
func Probability(pi, ref election.Ranking, dispersion float64) float64 {
	return math.Pow(dispersion, float64(KendallTau(pi, ref))) / NormalizingConstant(len(ref), dispersion)
}
