package election

// FirstPlaceCounts tallies first-place votes. counts[k] is the number of
// voters ranking candidate k first; index 0 is unused.
func FirstPlaceCounts(votes VoteSet, candidates int) []int {
	counts := make([]int, candidates+1)
	for _, vote := range votes {
		first := vote.First()
		if first < 1 || int(first) > candidates {
			continue
		}
		counts[first]++
	}
	return counts
}

// IsMajorityWinner reports whether p has (weakly) the most first-place votes.
// Ties count as wins. An empty vote set, or an empty first ballot, never
// produces a winner.
func IsMajorityWinner(votes VoteSet, p Candidate) bool {
	if len(votes) == 0 || len(votes[0]) == 0 {
		return false
	}

	c := len(votes[0])
	if p < 1 || int(p) > c {
		return false
	}

	counts := FirstPlaceCounts(votes, c)
	target := counts[p]
	for _, count := range counts[1:] {
		if count > target {
			return false
		}
	}
	return true
}
