package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/handler"
	"github.com/git21git/travelplanner/internal/service"
)

const goodToken = "good-token"

// callerID is the identity every authenticated test request carries.
var callerID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubTokens accepts goodToken only.
type stubTokens struct{}

func (stubTokens) Validate(tok string) (uuid.UUID, error) {
	if tok == goodToken {
		return callerID, nil
	}
	return uuid.Nil, errors.New("bad token")
}

// ---- mocks -----------------------------------------------------------------
// Set only the method fields your test needs.

type mockAuthServicer struct {
	register func(ctx context.Context, username, email, password string) (domain.User, error)
	login    func(ctx context.Context, email, password string) (service.Session, error)
	me       func(ctx context.Context, id domain.Identity) (domain.User, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	return m.register(ctx, username, email, password)
}
func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (service.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) Me(ctx context.Context, id domain.Identity) (domain.User, error) {
	return m.me(ctx, id)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

type mockTripServicer struct {
	create    func(ctx context.Context, id domain.Identity, trip domain.Trip) (domain.Trip, error)
	get       func(ctx context.Context, id domain.Identity, tripID uuid.UUID) (domain.Trip, error)
	list      func(ctx context.Context, id domain.Identity) ([]domain.Trip, error)
	listPaged func(ctx context.Context, id domain.Identity, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update    func(ctx context.Context, id domain.Identity, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	delete    func(ctx context.Context, id domain.Identity, tripID uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, id domain.Identity, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, id, t)
}
func (m *mockTripServicer) Get(ctx context.Context, id domain.Identity, tripID uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, id, tripID)
}
func (m *mockTripServicer) List(ctx context.Context, id domain.Identity) ([]domain.Trip, error) {
	return m.list(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, id domain.Identity, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, id, p)
}
func (m *mockTripServicer) Update(ctx context.Context, id domain.Identity, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, id, tripID, patch)
}
func (m *mockTripServicer) Delete(ctx context.Context, id domain.Identity, tripID uuid.UUID) error {
	return m.delete(ctx, id, tripID)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockPlaceServicer struct {
	create  func(ctx context.Context, id domain.Identity, tripID uuid.UUID, place domain.Place) (domain.Place, error)
	get     func(ctx context.Context, id domain.Identity, placeID uuid.UUID) (domain.Place, error)
	listFor func(ctx context.Context, id domain.Identity, tripID uuid.UUID) ([]domain.Place, error)
	update  func(ctx context.Context, id domain.Identity, placeID uuid.UUID, patch domain.PlacePatch) (domain.Place, error)
	delete  func(ctx context.Context, id domain.Identity, placeID uuid.UUID) error
}

func (m *mockPlaceServicer) Create(ctx context.Context, id domain.Identity, tripID uuid.UUID, p domain.Place) (domain.Place, error) {
	return m.create(ctx, id, tripID, p)
}
func (m *mockPlaceServicer) Get(ctx context.Context, id domain.Identity, placeID uuid.UUID) (domain.Place, error) {
	return m.get(ctx, id, placeID)
}
func (m *mockPlaceServicer) ListFor(ctx context.Context, id domain.Identity, tripID uuid.UUID) ([]domain.Place, error) {
	return m.listFor(ctx, id, tripID)
}
func (m *mockPlaceServicer) Update(ctx context.Context, id domain.Identity, placeID uuid.UUID, patch domain.PlacePatch) (domain.Place, error) {
	return m.update(ctx, id, placeID, patch)
}
func (m *mockPlaceServicer) Delete(ctx context.Context, id domain.Identity, placeID uuid.UUID) error {
	return m.delete(ctx, id, placeID)
}

var _ handler.PlaceServicer = (*mockPlaceServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context, id domain.Identity) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, id domain.Identity) ([]domain.ExportRow, error) {
	return m.export(ctx, id)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given deps into the full router,
// mirroring how main.go wires it in production.
func newHTTPHandler(d handler.Deps) http.Handler {
	d.Log = discardLog
	return handler.NewRouter(handler.NewServer(d), handler.RouterConfig{
		Tokens:       stubTokens{},
		MaxBodyBytes: 1 << 20,
		Log:          discardLog,
	})
}

// do sends an authenticated request and returns the recorder.
func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, target, body)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	return serve(h, req)
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}


// serve runs req through h without adding credentials.
func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
