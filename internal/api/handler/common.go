package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/validation"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondStandardError writes a standardized JSON error response.
func respondStandardError(w http.ResponseWriter, status int, code, message, field string, details map[string]any) {
	respondJSON(w, status, &domain.StandardErrorResponse{
		Error: domain.StandardError{
			Code:    code,
			Message: message,
			Field:   field,
			Details: details,
		},
	})
}

// respondError writes an error response for malformed request input.
func respondError(w http.ResponseWriter, status int, message string) {
	respondStandardError(w, status, domain.ErrCodeInvalidInput, message, "", nil)
}

// handleError converts domain errors to HTTP errors. Validation errors keep
// their field detail; anything unrecognized is an internal error the caller
// must not assume committed partial state for. Messages are fixed strings so
// wrapped internal error text never reaches clients.
func handleError(w http.ResponseWriter, err error) {
	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		respondValidationErrors(w, validationErrs)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondStandardError(w, http.StatusNotFound, domain.ErrCodeResourceNotFound, "not found", "", nil)
	case errors.Is(err, domain.ErrConflict):
		respondStandardError(w, http.StatusConflict, domain.ErrCodeConflict, "already exists", "", nil)
	case errors.Is(err, domain.ErrCapacityExceeded):
		respondStandardError(w, http.StatusUnprocessableEntity, domain.ErrCodeCapacityExceeded, "day tag limit reached", "", nil)
	case errors.Is(err, domain.ErrInvalidInput):
		respondStandardError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid input", "", nil)
	default:
		respondStandardError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, "internal server error", "", nil)
	}
}

// decodeJSON decodes JSON from request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// respondValidationErrors writes a JSON response for validation errors.
func respondValidationErrors(w http.ResponseWriter, errs validation.ValidationErrors) {
	respondStandardError(w, http.StatusBadRequest, domain.ErrCodeValidationError,
		"validation failed", "", map[string]any{"errors": errs})
}
