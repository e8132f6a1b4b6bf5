package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/estimator"
)

// EstimateRequest is the body of POST /estimates. Zero values fall back to
// the estimator defaults.
type EstimateRequest struct {
	Election  election.Election `json:"election"`
	Method    string            `json:"method,omitempty"` // montecarlo, lll or both
	Samples   int               `json:"samples,omitempty"`
	Seed      *int64            `json:"seed,omitempty"`
	MaxRounds int               `json:"max_rounds,omitempty"`
	Workers   int               `json:"workers,omitempty"`
}

// Handlers contains HTTP request handlers
type Handlers struct {
	config *Config
}

// NewHandlers creates new API handlers
func NewHandlers(config *Config) *Handlers {
	return &Handlers{config: config}
}

// CreateEstimate runs the requested estimators synchronously, bounded by
// the configured estimate timeout
func (h *Handlers) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req EstimateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err, nil)
		return
	}

	e := &req.Election
	if err := e.Validate(); err != nil {
		var verrs election.ValidationErrors
		if errors.As(err, &verrs) {
			WriteValidationErrorResponse(w, "Invalid election", verrs)
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid election", err, nil)
		return
	}

	methods, err := estimator.ParseMethod(req.Method)
	if err != nil {
		WriteValidationErrorResponse(w, "Invalid method", election.ValidationErrors{{
			Field:   "method",
			Message: err.Error(),
			Value:   req.Method,
		}})
		return
	}

	config, verrs := h.estimatorConfig(&req)
	if len(verrs) > 0 {
		WriteValidationErrorResponse(w, "Invalid parameters", verrs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Estimate.Timeout)
	defer cancel()

	logger.Info().
		Int("candidates", e.Candidates).
		Int("voters", e.Voters).
		Int("samples", estimator.Samples(e, config)).
		Int("round_cap", config.RoundCap(e.Voters)).
		Msg("Estimate request received")

	report, err := estimator.Estimate(ctx, e, config, methods...)
	if err == nil {
		WriteSuccessResponse(w, "Estimate completed", report)
		return
	}
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logger.Warn().Msg("Estimate cancelled by client")
		return
	}

	status, message := estimateFailure(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Estimate failed")
	}
	if report == nil {
		WriteErrorResponse(w, status, message, err, nil)
		return
	}
	WriteErrorResponse(w, status, message, err, report)
}

// estimatorConfig turns the request overrides into an estimator config and
// enforces the server limits on samples, rounds and workers
func (h *Handlers) estimatorConfig(req *EstimateRequest) (*estimator.Config, election.ValidationErrors) {
	limits := h.config.Estimate
	config := estimator.NewConfig()
	config.Set("logging.level", limits.LogLevel)
	config.Set("logging.enable_progress", false)

	if req.Seed != nil {
		config.Set("algorithm.random_seed", *req.Seed)
	} else {
		config.Set("algorithm.random_seed", time.Now().UnixNano())
	}
	if req.Workers > 0 {
		config.Set("performance.num_workers", req.Workers)
	}
	if limits.MaxWorkers > 0 && config.NumWorkers() > limits.MaxWorkers {
		config.Set("performance.num_workers", limits.MaxWorkers)
	}
	if req.Samples > 0 {
		config.Set("algorithm.samples", req.Samples)
	}

	var verrs election.ValidationErrors

	switch samples := estimator.Samples(&req.Election, config); {
	case samples < 1:
		verrs = append(verrs, election.ValidationError{
			Field:   "samples",
			Message: "sample count must be positive",
			Value:   fmt.Sprintf("%d", samples),
		})
	case samples > limits.MaxSamples:
		verrs = append(verrs, election.ValidationError{
			Field:   "samples",
			Message: fmt.Sprintf("sample count exceeds the limit of %d", limits.MaxSamples),
			Value:   fmt.Sprintf("%d", samples),
		})
	}

	switch {
	case req.MaxRounds < 0:
		verrs = append(verrs, election.ValidationError{
			Field:   "max_rounds",
			Message: "round cap must not be negative",
			Value:   fmt.Sprintf("%d", req.MaxRounds),
		})
	case limits.MaxRounds > 0 && req.MaxRounds > limits.MaxRounds:
		verrs = append(verrs, election.ValidationError{
			Field:   "max_rounds",
			Message: fmt.Sprintf("round cap exceeds the limit of %d", limits.MaxRounds),
			Value:   fmt.Sprintf("%d", req.MaxRounds),
		})
	case req.MaxRounds > 0:
		config.Set("lll.max_rounds", req.MaxRounds)
	case limits.MaxRounds > 0 && config.RoundCap(req.Election.Voters) > limits.MaxRounds:
		config.Set("lll.max_rounds", limits.MaxRounds)
	}

	return config, verrs
}

// HealthCheck returns server health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	WriteSuccessResponse(w, "Service is healthy", health)
}

// ListMethods lists available estimators
func (h *Handlers) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods := []map[string]interface{}{
		{
			"name":        estimator.MonteCarloMethod,
			"description": "Fraction of sampled vote sets in which the designated candidate wins",
		},
		{
			"name":        estimator.LLLMethod,
			"description": "Mean reciprocal round count of Moser-Tardos resampling runs",
			"parameters": []map[string]interface{}{
				{"name": "max_rounds", "type": "integer", "default": "100 x voters", "description": "Round cap per run"},
			},
		},
	}
	WriteSuccessResponse(w, "Methods retrieved successfully", methods)
}
