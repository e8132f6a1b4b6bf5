package election

import (
	"fmt"
	"math"
)

// Validate checks every precondition the sampler and the estimators rely on.
// All problems are collected; a non-nil result is always ValidationErrors.
func (e *Election) Validate() error {
	var errors ValidationErrors

	if e.Candidates < 1 {
		errors = append(errors, ValidationError{
			Field:   "candidates",
			Message: "at least one candidate is required",
			Value:   fmt.Sprintf("%d", e.Candidates),
		})
	}

	if e.Voters < 1 {
		errors = append(errors, ValidationError{
			Field:   "voters",
			Message: "at least one voter is required",
			Value:   fmt.Sprintf("%d", e.Voters),
		})
	}

	if e.Designated < 1 || int(e.Designated) > e.Candidates {
		errors = append(errors, ValidationError{
			Field:   "designated",
			Message: fmt.Sprintf("designated candidate must be in [1, %d]", e.Candidates),
			Value:   fmt.Sprintf("%d", e.Designated),
		})
	}

	if len(errors) > 0 {
		return errors
	}

	if err := validateVoters(e); err != nil {
		errors = append(errors, err.(ValidationErrors)...)
	}

	for _, bound := range []struct {
		field string
		value float64
	}{
		{"epsilon", e.Epsilon},
		{"delta", e.Delta},
	} {
		if math.IsNaN(bound.value) || bound.value <= 0 || bound.value >= 1 {
			errors = append(errors, ValidationError{
				Field:   bound.field,
				Message: "must be in (0, 1)",
				Value:   fmt.Sprintf("%g", bound.value),
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func validateVoters(e *Election) error {
	var errors ValidationErrors

	if len(e.References) != e.Voters {
		errors = append(errors, ValidationError{
			Field:   "references",
			Message: fmt.Sprintf("expected %d reference rankings", e.Voters),
			Value:   fmt.Sprintf("%d", len(e.References)),
		})
	}

	if len(e.Dispersions) != e.Voters {
		errors = append(errors, ValidationError{
			Field:   "dispersions",
			Message: fmt.Sprintf("expected %d dispersions", e.Voters),
			Value:   fmt.Sprintf("%d", len(e.Dispersions)),
		})
	}

	for i, ref := range e.References {
		if !ref.IsPermutation(e.Candidates) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("references[%d]", i),
				Message: fmt.Sprintf("not a permutation of [1, %d]", e.Candidates),
				Value:   ref.String(),
			})
		}
	}

	for i, sigma := range e.Dispersions {
		if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("dispersions[%d]", i),
				Message: "dispersion must be a positive finite number",
				Value:   fmt.Sprintf("%g", sigma),
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
