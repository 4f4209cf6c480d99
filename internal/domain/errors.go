package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but belongs to someone else.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, field too long).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidRange is returned when a trip's start date falls after its end date.
// It wraps ErrValidation so callers that only care about bad input can match either.
var ErrInvalidRange = fmt.Errorf("%w: start date must not be after end date", ErrValidation)

// ErrForbidden means the resource exists but the caller does not own it.
// It never leaves the service layer: services log it and return ErrNotFound.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a unique constraint would be violated,
// e.g. registering an email that is already taken. Maps to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned for bad login credentials. Maps to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrAddressNotFound is returned when the geocoder answered but found no
// match for the address.
var ErrAddressNotFound = errors.New("address not found")

// ErrGeocoderUnavailable covers every way the geocoder can fail to give an
// answer: transport error, timeout, bad status, unparseable body.
var ErrGeocoderUnavailable = errors.New("geocoding service unavailable")

// ErrGeocoderConfig is returned when the geocoder is missing required
// configuration such as its API key. No request is attempted.
var ErrGeocoderConfig = errors.New("geocoder misconfigured")
