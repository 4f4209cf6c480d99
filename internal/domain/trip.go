// Package domain contains the core data types for the travel planner.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a dated journey owned by exactly one user.
// A trip is the top-level aggregate; places belong to a trip.
type Trip struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TripPatch carries a partial update. Nil fields keep their stored value.
type TripPatch struct {
	Title       *string
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
}

// Apply returns a copy of t with every non-nil field of p written over it.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}
