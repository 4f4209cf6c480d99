package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/git21git/travelplanner/internal/domain"
)

// TripResponse is the JSON representation of a trip.
type TripResponse struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Title       string             `json:"title"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Description *string            `json:"description,omitempty"`
}

// UpdateTripRequest is the body of PATCH /trips/{tripId}. Absent fields keep
// their stored value.
type UpdateTripRequest struct {
	Title       *string             `json:"title,omitempty"`
	StartDate   *openapi_types.Date `json:"start_date,omitempty"`
	EndDate     *openapi_types.Date `json:"end_date,omitempty"`
	Description *string             `json:"description,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripListResponse is the body of GET /trips. Pagination is present only
// when the client asked for a page.
type TripListResponse struct {
	Data       []TripResponse `json:"data"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	var body CreateTripRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}

	trip := domain.Trip{
		Title:       body.Title,
		StartDate:   body.StartDate.Time,
		EndDate:     body.EndDate.Time,
		Description: derefString(body.Description),
	}
	created, err := s.trips.Create(r.Context(), id, trip)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// With ?page= or ?limit= it returns one page (defaults: page=1, limit=20, max=100);
// without them it returns every trip.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if page == nil && limit == nil {
		trips, err := s.trips.List(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err, "trip")
			return
		}
		writeJSON(w, http.StatusOK, TripListResponse{Data: tripsToResponse(trips)})
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.ListPaged(r.Context(), id, params)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, TripListResponse{
		Data: tripsToResponse(trips),
		Pagination: &Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripId", "trip")
	if !ok {
		return
	}

	trip, err := s.trips.Get(r.Context(), id, tripID)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PATCH /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripId", "trip")
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}

	patch := domain.TripPatch{
		Title:       body.Title,
		StartDate:   dateTime(body.StartDate),
		EndDate:     dateTime(body.EndDate),
		Description: body.Description,
	}
	updated, err := s.trips.Update(r.Context(), id, tripID, patch)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripId}. Places of the trip go with it.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripId", "trip")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id, tripID); err != nil {
		s.writeError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func tripToResponse(t domain.Trip) TripResponse {
	return TripResponse{
		ID:          t.ID,
		Title:       t.Title,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tripsToResponse(trips []domain.Trip) []TripResponse {
	out := make([]TripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	return out
}

func dateTime(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
