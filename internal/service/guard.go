package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
)

// Guard is the single place the ownership rule lives: a trip is accessible
// only to its owner, and a place only to the owner of its trip.
// It has no side effects beyond reading the parent trip.
type Guard struct {
	trips repo.TripRepo
}

// NewGuard constructs a Guard that resolves place ownership through trips.
func NewGuard(trips repo.TripRepo) *Guard {
	return &Guard{trips: trips}
}

// AuthorizeTrip returns domain.ErrForbidden unless id owns trip.
func (g *Guard) AuthorizeTrip(id domain.Identity, trip domain.Trip) error {
	if id.UserID == uuid.Nil || trip.UserID != id.UserID {
		return fmt.Errorf("%w: trip %s", domain.ErrForbidden, trip.ID)
	}
	return nil
}

// AuthorizePlace loads the place's trip and applies AuthorizeTrip to it.
// A place whose trip cannot be found is denied, never reported as missing.
// On success the parent trip is returned.
func (g *Guard) AuthorizePlace(ctx context.Context, id domain.Identity, place domain.Place) (domain.Trip, error) {
	trip, err := g.trips.GetByID(ctx, place.TripID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("%w: place %s has no trip", domain.ErrForbidden, place.ID)
	}
	if err != nil {
		return domain.Trip{}, err
	}
	if err := g.AuthorizeTrip(id, trip); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// conceal turns "missing" and "not yours" into the same ErrNotFound so a
// caller cannot discover other users' resources. The real reason is only
// logged. Other errors are wrapped unchanged.
func conceal(ctx context.Context, log *slog.Logger, op string, id domain.Identity, resource uuid.UUID, err error) error {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		log.DebugContext(ctx, "access denied", "op", op, "user_id", id.UserID, "resource_id", resource, "reason", err.Error())
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, domain.ErrNotFound):
		log.DebugContext(ctx, "resource missing", "op", op, "user_id", id.UserID, "resource_id", resource)
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
