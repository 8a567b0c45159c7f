package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"varejo-backoffice/internal/core"

	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Problems  []string `json:"problems,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps application/core errors onto HTTP status codes:
// missing references are 404, incomplete or invalid input 422, a failed
// persistence call 503 when retryable, and anything unclassified 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *core.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, r, notFound.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}

	var validation *core.ValidationError
	if errors.As(err, &validation) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     "reconciliation incomplete",
			Code:      "VALIDATION_FAILED",
			Problems:  validation.Problems,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}

	var missingParty *core.MissingResponsiblePartyError
	if errors.As(err, &missingParty) {
		writeError(w, r, missingParty.Error(), "RESPONSIBLE_REQUIRED", http.StatusUnprocessableEntity)
		return
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, fe.Namespace()+": failed "+fe.Tag())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     "invalid request",
			Code:      "BAD_REQUEST",
			Problems:  problems,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}

	var persistence *core.PersistenceError
	if errors.As(err, &persistence) {
		if persistence.Retryable {
			writeError(w, r, "save failed, please retry", "PERSISTENCE_RETRYABLE", http.StatusServiceUnavailable)
			return
		}
		writeError(w, r, "save failed", "PERSISTENCE_FAILED", http.StatusInternalServerError)
		return
	}

	writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
}
