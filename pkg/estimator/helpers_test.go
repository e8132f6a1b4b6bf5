package estimator

import (
	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
)

func newTestConfig(seed int64) *Config {
	config := NewConfig()
	config.Set("algorithm.random_seed", seed)
	config.Set("logging.level", "disabled")
	config.Set("performance.parallel", false)
	return config
}

// uniformElection gives every voter the same reference ranking and dispersion
func uniformElection(voters int, ref election.Ranking, dispersion float64) *election.Election {
	refs := make([]election.Ranking, voters)
	disps := make([]float64, voters)
	for i := range refs {
		refs[i] = ref.Clone()
		disps[i] = dispersion
	}
	return &election.Election{
		Candidates:  len(ref),
		Voters:      voters,
		Designated:  1,
		References:  refs,
		Dispersions: disps,
		Epsilon:     0.1,
		Delta:       0.05,
	}
}

// favourable: near-deterministic voters all ranking p=1 first
func favourable() *election.Election {
	return uniformElection(3, election.Ranking{1, 2}, 0.01)
}

// adversarial: near-deterministic voters never ranking p=1 first
func adversarial() *election.Election {
	return uniformElection(3, election.Ranking{2, 1}, 0.01)
}
