package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
)

// Geocoder resolves an address to coordinates. *geocode.Client satisfies it.
// Implementations return domain.ErrAddressNotFound or
// domain.ErrGeocoderUnavailable on failure.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (domain.Coordinates, error)
}

// PlaceService implements business logic for Place operations.
// Geocoding always happens before any write, and a failed geocode means
// nothing is written.
type PlaceService struct {
	trips  repo.TripRepo
	places repo.PlaceRepo
	guard  *Guard
	geo    Geocoder
	log    *slog.Logger
}

// NewPlaceService constructs a PlaceService.
func NewPlaceService(trips repo.TripRepo, places repo.PlaceRepo, guard *Guard, geo Geocoder, log *slog.Logger) *PlaceService {
	return &PlaceService{trips: trips, places: places, guard: guard, geo: geo, log: log}
}

// Create adds a place to one of the caller's trips. The address is geocoded
// first; ErrAddressNotFound and ErrGeocoderUnavailable are returned as-is
// (wrapped) and no row is inserted.
func (s *PlaceService) Create(ctx context.Context, id domain.Identity, tripID uuid.UUID, place domain.Place) (domain.Place, error) {
	const op = "service.PlaceService.Create"

	if err := validatePlace(place); err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Place{}, conceal(ctx, s.log, op, id, tripID, err)
	}
	if err := s.guard.AuthorizeTrip(id, trip); err != nil {
		return domain.Place{}, conceal(ctx, s.log, op, id, tripID, err)
	}

	coords, err := s.geo.Resolve(ctx, place.Address)
	if err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}

	place.TripID = tripID
	place.Lat, place.Lng = coords.Lat, coords.Lng
	created, err := s.places.Create(ctx, id.UserID, place)
	if err != nil {
		return domain.Place{}, conceal(ctx, s.log, op, id, tripID, err)
	}
	s.log.InfoContext(ctx, "place created", "place_id", created.ID, "trip_id", tripID)
	return created, nil
}

// Get returns one of the caller's places.
func (s *PlaceService) Get(ctx context.Context, id domain.Identity, placeID uuid.UUID) (domain.Place, error) {
	return s.load(ctx, "service.PlaceService.Get", id, placeID)
}

// ListFor returns the places of one of the caller's trips in insertion order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PlaceService) ListFor(ctx context.Context, id domain.Identity, tripID uuid.UUID) ([]domain.Place, error) {
	const op = "service.PlaceService.ListFor"

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, conceal(ctx, s.log, op, id, tripID, err)
	}
	if err := s.guard.AuthorizeTrip(id, trip); err != nil {
		return nil, conceal(ctx, s.log, op, id, tripID, err)
	}

	places, err := s.places.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if places == nil {
		return []domain.Place{}, nil
	}
	return places, nil
}

// Update applies patch to one of the caller's places. Only an address that
// differs byte-for-byte from the stored one is re-geocoded; if that geocode
// fails the whole update is rejected and no field changes.
// When the address is unchanged the stored address and coordinates are not
// rewritten at all.
func (s *PlaceService) Update(ctx context.Context, id domain.Identity, placeID uuid.UUID, patch domain.PlacePatch) (domain.Place, error) {
	const op = "service.PlaceService.Update"

	existing, err := s.load(ctx, op, id, placeID)
	if err != nil {
		return domain.Place{}, err
	}

	merged := existing
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Notes != nil {
		merged.Notes = *patch.Notes
	}
	if patch.Address != nil {
		merged.Address = *patch.Address
	}
	if err := validatePlace(merged); err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}

	if !patch.AddressChanged(existing.Address) {
		updated, err := s.places.UpdateDetails(ctx, id.UserID, merged)
		if err != nil {
			return domain.Place{}, conceal(ctx, s.log, op, id, placeID, err)
		}
		return updated, nil
	}

	coords, err := s.geo.Resolve(ctx, merged.Address)
	if err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}
	merged.Lat, merged.Lng = coords.Lat, coords.Lng

	updated, err := s.places.UpdateLocated(ctx, id.UserID, merged)
	if err != nil {
		return domain.Place{}, conceal(ctx, s.log, op, id, placeID, err)
	}
	s.log.InfoContext(ctx, "place relocated", "place_id", placeID, "lat", updated.Lat, "lng", updated.Lng)
	return updated, nil
}

// Delete removes one of the caller's places.
func (s *PlaceService) Delete(ctx context.Context, id domain.Identity, placeID uuid.UUID) error {
	const op = "service.PlaceService.Delete"

	if _, err := s.load(ctx, op, id, placeID); err != nil {
		return err
	}
	if err := s.places.Delete(ctx, id.UserID, placeID); err != nil {
		return conceal(ctx, s.log, op, id, placeID, err)
	}
	return nil
}

func (s *PlaceService) load(ctx context.Context, op string, id domain.Identity, placeID uuid.UUID) (domain.Place, error) {
	place, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		return domain.Place{}, conceal(ctx, s.log, op, id, placeID, err)
	}
	if _, err := s.guard.AuthorizePlace(ctx, id, place); err != nil {
		return domain.Place{}, conceal(ctx, s.log, op, id, placeID, err)
	}
	return place, nil
}
