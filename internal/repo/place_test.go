package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
)

func TestPlaceRepo_Create(t *testing.T) {
	tx := newTestTx(t)
	user := seedUser(t, tx)
	trip := seedTrip(t, tx, user.ID)

	input := placeFixture(trip.ID)
	got, err := repo.NewPlaceRepo(tx).Create(context.Background(), user.ID, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, trip.ID, got.TripID)
	assert.Equal(t, input.Address, got.Address)
	assert.InDelta(t, 48.86, got.Lat, 1e-9)
	assert.InDelta(t, 2.33, got.Lng, 1e-9)
}

func TestPlaceRepo_Create_ForeignTripWritesNothing(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	owner := seedUser(t, tx)
	other := seedUser(t, tx)
	trip := seedTrip(t, tx, owner.ID)
	r := repo.NewPlaceRepo(tx)

	_, err := r.Create(ctx, other.ID, placeFixture(trip.ID))
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := r.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPlaceRepo_ListByTrip_InsertionOrder(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	user := seedUser(t, tx)
	trip := seedTrip(t, tx, user.ID)
	r := repo.NewPlaceRepo(tx)

	for _, name := range []string{"Louvre", "Eiffel Tower", "Arc de Triomphe"} {
		p := placeFixture(trip.ID)
		p.Name = name
		_, err := r.Create(ctx, user.ID, p)
		require.NoError(t, err)
	}

	got, err := r.ListByTrip(ctx, trip.ID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Louvre", got[0].Name)
	assert.Equal(t, "Eiffel Tower", got[1].Name)
	assert.Equal(t, "Arc de Triomphe", got[2].Name)
}

func TestPlaceRepo_UpdateDetails_LeavesLocation(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	user := seedUser(t, tx)
	trip := seedTrip(t, tx, user.ID)
	r := repo.NewPlaceRepo(tx)
	p, err := r.Create(ctx, user.ID, placeFixture(trip.ID))
	require.NoError(t, err)

	p.Name = "Musée du Louvre"
	p.Address = "ignored"
	p.Lat, p.Lng = 0, 0
	got, err := r.UpdateDetails(ctx, user.ID, p)

	require.NoError(t, err)
	assert.Equal(t, "Musée du Louvre", got.Name)
	assert.Equal(t, "Rue de Rivoli, Paris", got.Address)
	assert.InDelta(t, 48.86, got.Lat, 1e-9)
}

func TestPlaceRepo_UpdateLocated(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	user := seedUser(t, tx)
	trip := seedTrip(t, tx, user.ID)
	r := repo.NewPlaceRepo(tx)
	p, err := r.Create(ctx, user.ID, placeFixture(trip.ID))
	require.NoError(t, err)

	p.Address = "Champs-Élysées, Paris"
	p.Lat, p.Lng = 48.87, 2.30
	got, err := r.UpdateLocated(ctx, user.ID, p)

	require.NoError(t, err)
	assert.Equal(t, "Champs-Élysées, Paris", got.Address)
	assert.InDelta(t, 48.87, got.Lat, 1e-9)
	assert.InDelta(t, 2.30, got.Lng, 1e-9)
}

func TestPlaceRepo_Update_ForeignOwnerNotFound(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	owner := seedUser(t, tx)
	other := seedUser(t, tx)
	trip := seedTrip(t, tx, owner.ID)
	r := repo.NewPlaceRepo(tx)
	p, err := r.Create(ctx, owner.ID, placeFixture(trip.ID))
	require.NoError(t, err)

	_, err = r.UpdateLocated(ctx, other.ID, p)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.UpdateDetails(ctx, other.ID, p)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, other.ID, p.ID), domain.ErrNotFound)
}

func TestPlaceRepo_Delete(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	user := seedUser(t, tx)
	trip := seedTrip(t, tx, user.ID)
	r := repo.NewPlaceRepo(tx)
	p, err := r.Create(ctx, user.ID, placeFixture(trip.ID))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, user.ID, p.ID))

	_, err = r.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
