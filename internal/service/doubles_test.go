package service_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
	"github.com/git21git/travelplanner/internal/service"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// ---- mock repos ------------------------------------------------------------

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Set only the method fields your test needs.
type mockTripRepo struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByUser      func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	listByUserPaged func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete          func(ctx context.Context, userID, tripID uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockTripRepo) ListByUserPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByUserPaged(ctx, userID, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	return m.delete(ctx, userID, tripID)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockPlaceRepo is a hand-written test double for repo.PlaceRepo.
type mockPlaceRepo struct {
	create        func(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Place, error)
	listByTrip    func(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error)
	updateDetails func(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error)
	updateLocated func(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error)
	delete        func(ctx context.Context, userID, placeID uuid.UUID) error
}

func (m *mockPlaceRepo) Create(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error) {
	return m.create(ctx, userID, place)
}
func (m *mockPlaceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlaceRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockPlaceRepo) UpdateDetails(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error) {
	return m.updateDetails(ctx, userID, place)
}
func (m *mockPlaceRepo) UpdateLocated(ctx context.Context, userID uuid.UUID, place domain.Place) (domain.Place, error) {
	return m.updateLocated(ctx, userID, place)
}
func (m *mockPlaceRepo) Delete(ctx context.Context, userID, placeID uuid.UUID) error {
	return m.delete(ctx, userID, placeID)
}

var _ repo.PlaceRepo = (*mockPlaceRepo)(nil)

// mockUserRepo is a hand-written test double for repo.UserRepo.
type mockUserRepo struct {
	create     func(ctx context.Context, user domain.User) (domain.User, error)
	getByEmail func(ctx context.Context, email string) (domain.User, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.create(ctx, user)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// ---- fake geocoder ---------------------------------------------------------

// fakeGeocoder answers from a fixed table and counts calls. err, when set,
// is returned for every call. Safe for concurrent use.
type fakeGeocoder struct {
	table map[string]domain.Coordinates
	err   error
	calls atomic.Int32
}

func (f *fakeGeocoder) Resolve(_ context.Context, address string) (domain.Coordinates, error) {
	f.calls.Add(1)
	if f.err != nil {
		return domain.Coordinates{}, f.err
	}
	c, ok := f.table[address]
	if !ok {
		return domain.Coordinates{}, domain.ErrAddressNotFound
	}
	return c, nil
}

var _ service.Geocoder = (*fakeGeocoder)(nil)

func parisGeocoder() *fakeGeocoder {
	return &fakeGeocoder{table: map[string]domain.Coordinates{
		"Rue de Rivoli, Paris":  {Lat: 48.86, Lng: 2.33},
		"Champs-Élysées, Paris": {Lat: 48.87, Lng: 2.30},
	}}
}

// ---- in-memory store -------------------------------------------------------

// memStore is an in-memory stand-in for Postgres with the same ownership
// scoping as the real repos. One mutex makes every method atomic, mirroring
// single-statement writes and the transactional trip delete.
type memStore struct {
	mu     sync.Mutex
	trips  map[uuid.UUID]domain.Trip
	places map[uuid.UUID]domain.Place
	order  []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{trips: map[uuid.UUID]domain.Trip{}, places: map[uuid.UUID]domain.Place{}}
}

func (s *memStore) tripRepo() repo.TripRepo   { return memTrips{s} }
func (s *memStore) placeRepo() repo.PlaceRepo { return memPlaces{s} }

func (s *memStore) placeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.places)
}

type memTrips struct{ s *memStore }

func (r memTrips) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	r.s.trips[t.ID] = t
	return t, nil
}

func (r memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (r memTrips) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Trip
	for _, t := range r.s.trips {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r memTrips) ListByUserPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	all, _ := r.ListByUser(ctx, userID)
	lo := min(p.Offset(), len(all))
	hi := min(lo+p.Limit, len(all))
	return all[lo:hi], int64(len(all)), nil
}

func (r memTrips) Update(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.trips[t.ID]
	if !ok || cur.UserID != t.UserID {
		return domain.Trip{}, domain.ErrNotFound
	}
	t.CreatedAt, t.UpdatedAt = cur.CreatedAt, time.Now()
	r.s.trips[t.ID] = t
	return t, nil
}

func (r memTrips) Delete(_ context.Context, userID, tripID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trips[tripID]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	kept := r.s.order[:0]
	for _, id := range r.s.order {
		if r.s.places[id].TripID == tripID {
			delete(r.s.places, id)
			continue
		}
		kept = append(kept, id)
	}
	r.s.order = kept
	delete(r.s.trips, tripID)
	return nil
}

type memPlaces struct{ s *memStore }

// ownedLocked reports whether userID owns trip tripID. Caller holds mu.
func (r memPlaces) ownedLocked(userID, tripID uuid.UUID) bool {
	t, ok := r.s.trips[tripID]
	return ok && t.UserID == userID
}

func (r memPlaces) Create(_ context.Context, userID uuid.UUID, p domain.Place) (domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.ownedLocked(userID, p.TripID) {
		return domain.Place{}, domain.ErrNotFound
	}
	p.ID = uuid.New()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	r.s.places[p.ID] = p
	r.s.order = append(r.s.order, p.ID)
	return p, nil
}

func (r memPlaces) GetByID(_ context.Context, id uuid.UUID) (domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.places[id]
	if !ok {
		return domain.Place{}, domain.ErrNotFound
	}
	return p, nil
}

func (r memPlaces) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Place
	for _, id := range r.s.order {
		if p := r.s.places[id]; p.TripID == tripID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPlaces) update(userID uuid.UUID, in domain.Place, located bool) (domain.Place, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.places[in.ID]
	if !ok || !r.ownedLocked(userID, cur.TripID) {
		return domain.Place{}, domain.ErrNotFound
	}
	cur.Name, cur.Notes = in.Name, in.Notes
	if located {
		cur.Address, cur.Lat, cur.Lng = in.Address, in.Lat, in.Lng
	}
	cur.UpdatedAt = time.Now()
	r.s.places[cur.ID] = cur
	return cur, nil
}

func (r memPlaces) UpdateDetails(_ context.Context, userID uuid.UUID, p domain.Place) (domain.Place, error) {
	return r.update(userID, p, false)
}

func (r memPlaces) UpdateLocated(_ context.Context, userID uuid.UUID, p domain.Place) (domain.Place, error) {
	return r.update(userID, p, true)
}

func (r memPlaces) Delete(_ context.Context, userID, placeID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.places[placeID]
	if !ok || !r.ownedLocked(userID, cur.TripID) {
		return domain.ErrNotFound
	}
	delete(r.s.places, placeID)
	for i, id := range r.s.order {
		if id == placeID {
			r.s.order = append(r.s.order[:i], r.s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ---- fixtures --------------------------------------------------------------

func newIdentity() domain.Identity {
	return domain.Identity{UserID: uuid.New()}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parisTrip() domain.Trip {
	return domain.Trip{
		Title:     "Paris Trip",
		StartDate: date(2024, 5, 1),
		EndDate:   date(2024, 5, 10),
	}
}

func louvre() domain.Place {
	return domain.Place{Name: "Louvre", Address: "Rue de Rivoli, Paris"}
}

// services bundles services wired to one memStore.
type services struct {
	store  *memStore
	geo    *fakeGeocoder
	trips  *service.TripService
	places *service.PlaceService
	export *service.ExportService
}

func newServices(geo *fakeGeocoder) services {
	st := newMemStore()
	guard := service.NewGuard(st.tripRepo())
	return services{
		store:  st,
		geo:    geo,
		trips:  service.NewTripService(st.tripRepo(), guard, discardLog),
		places: service.NewPlaceService(st.tripRepo(), st.placeRepo(), guard, geo, discardLog),
		export: service.NewExportService(st.tripRepo(), st.placeRepo()),
	}
}

func ptr[T any](v T) *T { return &v }
