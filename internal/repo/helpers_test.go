package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
	"github.com/git21git/travelplanner/testutil"
)

// newTestTx is shorthand for a rolled-back transaction per test.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

// seedUser inserts a user with a unique email and returns it.
func seedUser(t *testing.T, tx pgx.Tx) domain.User {
	t.Helper()
	u, err := repo.NewUserRepo(tx).Create(context.Background(), domain.User{
		Username:     "traveller",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "$2a$04$hash",
	})
	require.NoError(t, err, "seed user")
	return u
}

func tripFixture(userID uuid.UUID) domain.Trip {
	return domain.Trip{
		UserID:      userID,
		Title:       "Paris Trip",
		StartDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Description: "Spring in Paris",
	}
}

func seedTrip(t *testing.T, tx pgx.Tx, userID uuid.UUID) domain.Trip {
	t.Helper()
	trip, err := repo.NewTripRepo(tx).Create(context.Background(), tripFixture(userID))
	require.NoError(t, err, "seed trip")
	return trip
}

func placeFixture(tripID uuid.UUID) domain.Place {
	return domain.Place{
		TripID:  tripID,
		Name:    "Louvre",
		Address: "Rue de Rivoli, Paris",
		Lat:     48.86,
		Lng:     2.33,
		Notes:   "Mona Lisa",
	}
}
