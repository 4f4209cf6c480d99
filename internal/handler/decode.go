package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// decodeJSON reads a single JSON object from the request body into dst.
// On failure it writes the response and returns false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			s.writeError(w, r, err, "")
		case errors.Is(err, io.EOF):
			badRequest(w, "request body is required")
		default:
			badRequest(w, "malformed request body: "+err.Error())
		}
		return false
	}
	if dec.More() {
		badRequest(w, "request body must contain a single JSON object")
		return false
	}
	return true
}

// pathUUID parses a UUID path parameter. A malformed id cannot name an
// existing resource, so it is answered with 404 like any other unknown id.
func pathUUID(w http.ResponseWriter, r *http.Request, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeErrorBody(w, http.StatusNotFound, "not_found", resource+" not found")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
