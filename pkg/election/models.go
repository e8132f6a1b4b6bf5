package election

import (
	"fmt"
	"strings"
)

// Candidate is a dense identifier in [1, c]
type Candidate int

// Ranking is a strict total preference order; position 0 is most preferred
type Ranking []Candidate

// VoteSet holds one ranking per voter, index-aligned with voter identity
type VoteSet []Ranking

// Election is a problem instance: candidates, voters, the Mallows parameters
// of every voter and the (ε, δ) targets of the estimate.
type Election struct {
	Candidates  int       `json:"candidates"`  // c
	Voters      int       `json:"voters"`      // n
	Designated  Candidate `json:"designated"`  // p
	References  []Ranking `json:"references"`  // reference ranking per voter
	Dispersions []float64 `json:"dispersions"` // dispersion per voter
	Epsilon     float64   `json:"epsilon"`     // precision
	Delta       float64   `json:"delta"`       // confidence-failure budget
}

// New builds a validated election. The slices are copied so the caller's
// buffers can be reused.
func New(p Candidate, references []Ranking, dispersions []float64, epsilon, delta float64) (*Election, error) {
	c := 0
	if len(references) > 0 {
		c = len(references[0])
	}

	e := &Election{
		Candidates:  c,
		Voters:      len(references),
		Designated:  p,
		References:  make([]Ranking, len(references)),
		Dispersions: append([]float64(nil), dispersions...),
		Epsilon:     epsilon,
		Delta:       delta,
	}
	for i, ref := range references {
		e.References[i] = ref.Clone()
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// SampleCount returns the Monte Carlo sample size for this instance
func (e *Election) SampleCount() int {
	return SampleCount(e.Voters, e.Epsilon, e.Delta)
}

// Clone returns an independent copy of the ranking
func (r Ranking) Clone() Ranking {
	if r == nil {
		return nil
	}
	out := make(Ranking, len(r))
	copy(out, r)
	return out
}

// First returns the most preferred candidate, or 0 for an empty ranking
func (r Ranking) First() Candidate {
	if len(r) == 0 {
		return 0
	}
	return r[0]
}

// IsPermutation reports whether r is a permutation of [1, c]
func (r Ranking) IsPermutation(c int) bool {
	if len(r) != c {
		return false
	}
	seen := make([]bool, c+1)
	for _, cand := range r {
		if cand < 1 || int(cand) > c || seen[cand] {
			return false
		}
		seen[cand] = true
	}
	return true
}

func (r Ranking) String() string {
	parts := make([]string, len(r))
	for i, cand := range r {
		parts[i] = fmt.Sprintf("%d", cand)
	}
	return strings.Join(parts, " ")
}

// String dumps the vote set one voter per line
func (vs VoteSet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "vote set with %d votes\n", len(vs))
	for i, vote := range vs {
		fmt.Fprintf(&b, "%d: ", i+1)
		if len(vote) == 0 {
			b.WriteString("--empty vote--")
		} else {
			b.WriteString(vote.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ValidationError represents structured validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	if ve.Value != "" {
		return fmt.Sprintf("validation error in field '%s': %s (value: %s)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(ve), ve[0].Error(), len(ve)-1)
}

// Fields flattens the errors into field -> message, keeping the first
// message reported for each field.
func (ve ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(ve))
	for _, err := range ve {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}
