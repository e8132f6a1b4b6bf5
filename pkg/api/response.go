package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/election"
	"github.com/gilchrisn/mallows-winner-estimator/pkg/estimator"
)

// APIResponse is the envelope of every JSON response. RequestID echoes the
// X-Request-ID header so clients can quote it from a body alone.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// WriteSuccessResponse writes a 200 envelope
func WriteSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	writeJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteErrorResponse writes an error envelope. data may carry a partial
// result.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string, err error, data interface{}) {
	response := APIResponse{
		Message: message,
		Data:    data,
	}
	if err != nil {
		response.Error = err.Error()
	}
	writeJSONResponse(w, statusCode, response)
}

// WriteValidationErrorResponse writes a 400 envelope listing the offending
// fields under data.validation_errors
func WriteValidationErrorResponse(w http.ResponseWriter, message string, verrs election.ValidationErrors) {
	writeJSONResponse(w, http.StatusBadRequest, APIResponse{
		Message: message,
		Data:    map[string]interface{}{"validation_errors": verrs.Fields()},
		Error:   verrs.Error(),
	})
}

// estimateFailure maps an estimator error to its status and message. A
// non-converged run keeps its partial report.
func estimateFailure(err error) (int, string) {
	var verrs election.ValidationErrors
	switch {
	case errors.Is(err, estimator.ErrNotConverged):
		return http.StatusUnprocessableEntity, "Moser-Tardos runs did not converge"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Estimate timed out"
	case errors.As(err, &verrs):
		return http.StatusBadRequest, "Invalid election"
	}
	return http.StatusInternalServerError, "Estimate failed"
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, response APIResponse) {
	response.RequestID = w.Header().Get(requestIDHeader)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Err(err).
			Int("status_code", statusCode).
			Msg("Failed to encode JSON response")
	}
}
