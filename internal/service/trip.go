// Package service contains the business logic for the travel planner.
// Services validate inputs, enforce ownership, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	trips repo.TripRepo
	guard *Guard
	log   *slog.Logger
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(trips repo.TripRepo, guard *Guard, log *slog.Logger) *TripService {
	return &TripService{trips: trips, guard: guard, log: log}
}

// Create validates and persists a new trip owned by id.
// Returns domain.ErrInvalidRange if the start date is after the end date;
// nothing is written in that case.
func (s *TripService) Create(ctx context.Context, id domain.Identity, trip domain.Trip) (domain.Trip, error) {
	trip.UserID = id.UserID
	trip.StartDate = dateOnly(trip.StartDate)
	trip.EndDate = dateOnly(trip.EndDate)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "trip created", "trip_id", created.ID, "user_id", id.UserID)
	return created, nil
}

// Get returns one of the caller's trips.
// Returns domain.ErrNotFound for both missing and foreign trips.
func (s *TripService) Get(ctx context.Context, id domain.Identity, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.load(ctx, "service.TripService.Get", id, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// List returns the caller's trips, most recent start date first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, id domain.Identity) ([]domain.Trip, error) {
	trips, err := s.trips.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// ListPaged returns one page of the caller's trips and their total count.
func (s *TripService) ListPaged(ctx context.Context, id domain.Identity, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListByUserPaged(ctx, id.UserID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update applies patch to one of the caller's trips. The merged record is
// validated before anything is written.
func (s *TripService) Update(ctx context.Context, id domain.Identity, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	const op = "service.TripService.Update"

	existing, err := s.load(ctx, op, id, tripID)
	if err != nil {
		return domain.Trip{}, err
	}

	merged := patch.Apply(existing)
	merged.StartDate = dateOnly(merged.StartDate)
	merged.EndDate = dateOnly(merged.EndDate)
	if err := validateTrip(merged); err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.trips.Update(ctx, merged)
	if err != nil {
		return domain.Trip{}, conceal(ctx, s.log, op, id, tripID, err)
	}
	return updated, nil
}

// Delete removes one of the caller's trips together with all its places.
func (s *TripService) Delete(ctx context.Context, id domain.Identity, tripID uuid.UUID) error {
	const op = "service.TripService.Delete"

	if _, err := s.load(ctx, op, id, tripID); err != nil {
		return err
	}
	if err := s.trips.Delete(ctx, id.UserID, tripID); err != nil {
		return conceal(ctx, s.log, op, id, tripID, err)
	}
	s.log.InfoContext(ctx, "trip deleted", "trip_id", tripID, "user_id", id.UserID)
	return nil
}

// load fetches a trip and authorizes it, concealing the reason on failure.
func (s *TripService) load(ctx context.Context, op string, id domain.Identity, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, conceal(ctx, s.log, op, id, tripID, err)
	}
	if err := s.guard.AuthorizeTrip(id, trip); err != nil {
		return domain.Trip{}, conceal(ctx, s.log, op, id, tripID, err)
	}
	return trip, nil
}
