package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
)

// PlaceResponse is the JSON representation of a place.
type PlaceResponse struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePlaceRequest is the body of POST /trips/{tripId}/places.
// Coordinates are never accepted from the client; they come from geocoding.
type CreatePlaceRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Notes   *string `json:"notes,omitempty"`
}

// UpdatePlaceRequest is the body of PATCH /places/{placeId}.
type UpdatePlaceRequest struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// PlaceListResponse is the body of GET /trips/{tripId}/places.
type PlaceListResponse struct {
	Data []PlaceResponse `json:"data"`
}

// CreatePlace handles POST /trips/{tripId}/places.
func (s *Server) CreatePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripId", "trip")
	if !ok {
		return
	}
	var body CreatePlaceRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}

	place := domain.Place{
		Name:    body.Name,
		Address: body.Address,
		Notes:   derefString(body.Notes),
	}
	created, err := s.places.Create(r.Context(), id, tripID, place)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, placeToResponse(created))
}

// ListPlaces handles GET /trips/{tripId}/places. Places come in the order
// they were added.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripId", "trip")
	if !ok {
		return
	}

	places, err := s.places.ListFor(r.Context(), id, tripID)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}
	data := make([]PlaceResponse, len(places))
	for i, p := range places {
		data[i] = placeToResponse(p)
	}
	writeJSON(w, http.StatusOK, PlaceListResponse{Data: data})
}

// GetPlace handles GET /places/{placeId}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	placeID, ok := pathUUID(w, r, "placeId", "place")
	if !ok {
		return
	}

	place, err := s.places.Get(r.Context(), id, placeID)
	if err != nil {
		s.writeError(w, r, err, "place")
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(place))
}

// UpdatePlace handles PATCH /places/{placeId}. Changing the address
// re-geocodes; a failed lookup leaves the place untouched.
func (s *Server) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	placeID, ok := pathUUID(w, r, "placeId", "place")
	if !ok {
		return
	}
	var body UpdatePlaceRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}

	patch := domain.PlacePatch{Name: body.Name, Address: body.Address, Notes: body.Notes}
	updated, err := s.places.Update(r.Context(), id, placeID, patch)
	if err != nil {
		s.writeError(w, r, err, "place")
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(updated))
}

// DeletePlace handles DELETE /places/{placeId}.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	placeID, ok := pathUUID(w, r, "placeId", "place")
	if !ok {
		return
	}

	if err := s.places.Delete(r.Context(), id, placeID); err != nil {
		s.writeError(w, r, err, "place")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func placeToResponse(p domain.Place) PlaceResponse {
	return PlaceResponse{
		ID:        p.ID,
		TripID:    p.TripID,
		Name:      p.Name,
		Address:   p.Address,
		Lat:       p.Lat,
		Lng:       p.Lng,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
