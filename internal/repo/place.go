package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/git21git/travelplanner/internal/domain"
)

// PlaceRepo defines the persistence operations for Places.
// Writes join through trips so a place is only ever written when its trip
// belongs to the given user at the moment the statement runs.
type PlaceRepo interface {
	// Create inserts a place under a trip owned by userID.
	// Returns domain.ErrNotFound if the trip is gone or not owned by userID.
	Create(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error)

	// GetByID retrieves a place by primary key regardless of owner.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error)

	// ListByTrip returns the trip's places in insertion order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error)

	// UpdateDetails writes name and notes only. Address and coordinates are
	// left exactly as stored.
	UpdateDetails(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error)

	// UpdateLocated writes name, notes, address, lat and lng in one statement.
	UpdateLocated(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error)

	// Delete removes a place whose trip is owned by userID.
	Delete(ctx context.Context, userID, placeID uuid.UUID) error
}

// pgPlaceRepo is the Postgres implementation of PlaceRepo.
type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

const placeColumns = `p.id, p.trip_id, p.name, p.address, p.lat, p.lng, p.notes, p.created_at, p.updated_at`

// Create inserts a place under a trip owned by userID and returns the
// persisted record. Returns domain.ErrNotFound if the trip is missing or
// belongs to someone else.
func (r *pgPlaceRepo) Create(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error) {
	const q = `
		WITH p AS (
			INSERT INTO places (trip_id, name, address, lat, lng, notes)
			SELECT t.id, @name, @address, @lat, @lng, @notes
			FROM trips t
			WHERE t.id = @trip_id AND t.user_id = @user_id
			RETURNING *
		)
		SELECT ` + placeColumns + ` FROM p`

	args := pgx.NamedArgs{
		"trip_id": place.TripID,
		"user_id": userID,
		"name":    place.Name,
		"address": place.Address,
		"lat":     place.Lat,
		"lng":     place.Lng,
		"notes":   place.Notes,
	}

	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

// GetByID retrieves a place by primary key regardless of owner.
func (r *pgPlaceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	const q = `SELECT ` + placeColumns + ` FROM places p WHERE p.id = @id`

	result, err := scanPlace(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTrip returns the trip's places in insertion order.
func (r *pgPlaceRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places p
		WHERE p.trip_id = @trip_id
		ORDER BY p.position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlaceRepo.ListByTrip: scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByTrip: rows: %w", err)
	}
	return places, nil
}

// UpdateDetails overwrites name and notes and leaves address, lat and lng
// as stored.
func (r *pgPlaceRepo) UpdateDetails(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error) {
	const q = `
		UPDATE places p
		SET name       = @name,
		    notes      = @notes,
		    updated_at = now()
		FROM trips t
		WHERE p.id = @id AND p.trip_id = t.id AND t.user_id = @user_id
		RETURNING ` + placeColumns

	args := pgx.NamedArgs{
		"id":      place.ID,
		"user_id": userID,
		"name":    place.Name,
		"notes":   place.Notes,
	}

	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.UpdateDetails: %w", mapPgError(err))
	}
	return result, nil
}

// UpdateLocated overwrites every mutable field, writing address and
// coordinates in the same statement.
func (r *pgPlaceRepo) UpdateLocated(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error) {
	const q = `
		UPDATE places p
		SET name       = @name,
		    notes      = @notes,
		    address    = @address,
		    lat        = @lat,
		    lng        = @lng,
		    updated_at = now()
		FROM trips t
		WHERE p.id = @id AND p.trip_id = t.id AND t.user_id = @user_id
		RETURNING ` + placeColumns

	args := pgx.NamedArgs{
		"id":      place.ID,
		"user_id": userID,
		"name":    place.Name,
		"notes":   place.Notes,
		"address": place.Address,
		"lat":     place.Lat,
		"lng":     place.Lng,
	}

	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.UpdateLocated: %w", mapPgError(err))
	}
	return result, nil
}

// Delete removes one place. Returns domain.ErrNotFound if no such place
// exists under a trip owned by userID.
func (r *pgPlaceRepo) Delete(ctx context.Context, userID, placeID uuid.UUID) error {
	const q = `
		DELETE FROM places p
		USING trips t
		WHERE p.id = @id AND p.trip_id = t.id AND t.user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": placeID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanPlace maps a single database row into a domain.Place.
func scanPlace(s scanner) (domain.Place, error) {
	var (
		p      domain.Place
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &p.Name, &p.Address, &p.Lat, &p.Lng, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.TripID = uuid.UUID(tripID.Bytes)
	return p, nil
}
