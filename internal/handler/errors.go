package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/git21git/travelplanner/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeError maps a service error onto a status code and error body.
// resource names what was being looked up ("trip", "place") for 404 messages.
// Unknown errors are logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		writeErrorBody(w, http.StatusUnprocessableEntity, "invalid_range", unwrapMessage(err))
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", resource+" not found")
	case errors.Is(err, domain.ErrAddressNotFound):
		writeErrorBody(w, http.StatusUnprocessableEntity, "address_not_found", "address could not be located")
	case errors.Is(err, domain.ErrGeocoderUnavailable):
		writeErrorBody(w, http.StatusServiceUnavailable, "geocoder_unavailable", "geocoding service is unavailable, try again later")
	case errors.Is(err, domain.ErrGeocoderConfig):
		s.log.ErrorContext(r.Context(), "geocoder misconfigured", "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "geocoder_misconfigured", "geocoding is not configured")
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, http.StatusConflict, "conflict", resource+" already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
	case errors.As(err, &maxBytes):
		writeErrorBody(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// badRequest answers requests rejected before reaching the service layer
// (malformed body, bad query parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, "bad_request", message)
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.TripService.Create: validation error: title is required" → "title is required"
func unwrapMessage(err error) string {
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
