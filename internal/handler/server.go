// Package handler implements the HTTP API of the travel planner on a chi router.
// All handlers are methods on Server. Methods are split into resource files
// (trip.go, place.go, ...) but share the Server struct and its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/auth"
	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/service"
)

// AuthServicer is the account surface the auth handlers depend on.
type AuthServicer interface {
	Register(ctx context.Context, username, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Me(ctx context.Context, id domain.Identity) (domain.User, error)
}

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, id domain.Identity, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, id domain.Identity, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, id domain.Identity) ([]domain.Trip, error)
	ListPaged(ctx context.Context, id domain.Identity, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, id domain.Identity, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, id domain.Identity, tripID uuid.UUID) error
}

// PlaceServicer defines the place operations the handlers depend on.
type PlaceServicer interface {
	Create(ctx context.Context, id domain.Identity, tripID uuid.UUID, place domain.Place) (domain.Place, error)
	Get(ctx context.Context, id domain.Identity, placeID uuid.UUID) (domain.Place, error)
	ListFor(ctx context.Context, id domain.Identity, tripID uuid.UUID) ([]domain.Place, error)
	Update(ctx context.Context, id domain.Identity, placeID uuid.UUID, patch domain.PlacePatch) (domain.Place, error)
	Delete(ctx context.Context, id domain.Identity, placeID uuid.UUID) error
}

// ExportServicer produces the flat export for GET /export.
type ExportServicer interface {
	Export(ctx context.Context, id domain.Identity) ([]domain.ExportRow, error)
}

// Pinger reports whether the database is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the Server's collaborators. Nil services are allowed in tests
// that never reach them.
type Deps struct {
	Auth   AuthServicer
	Trips  TripServicer
	Places PlaceServicer
	Export ExportServicer
	DB     Pinger

	// OpenAPI is served verbatim at /openapi.yaml.
	OpenAPI []byte
	// SecureCookies marks the session cookie Secure (set behind TLS).
	SecureCookies bool
	Log           *slog.Logger
}

// Server holds every dependency the HTTP handlers need.
type Server struct {
	auth          AuthServicer
	trips         TripServicer
	places        PlaceServicer
	export        ExportServicer
	db            Pinger
	openAPI       []byte
	secureCookies bool
	log           *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		auth:          d.Auth,
		trips:         d.Trips,
		places:        d.Places,
		export:        d.Export,
		db:            d.DB,
		openAPI:       d.OpenAPI,
		secureCookies: d.SecureCookies,
		log:           log,
	}
}

// identity returns the caller stored by auth.RequireAuth. It writes a 401 and
// reports false when the route was mounted without that middleware.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return id, ok
}
