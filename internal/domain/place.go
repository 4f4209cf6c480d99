package domain

import (
	"time"

	"github.com/google/uuid"
)

// Coordinates is a resolved geographic point in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Place is a named stop inside a trip. Its owner is the owner of its trip;
// there is no user column on a place.
//
// Address, Lat and Lng always describe the same location: they are written
// together or not at all.
type Place struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	Name      string
	Address   string
	Lat       float64
	Lng       float64
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Coordinates returns the stored point of the place.
func (p Place) Coordinates() Coordinates {
	return Coordinates{Lat: p.Lat, Lng: p.Lng}
}

// PlacePatch carries a partial update. Nil fields keep their stored value.
type PlacePatch struct {
	Name    *string
	Address *string
	Notes   *string
}

// AddressChanged reports whether the patch carries an address that differs
// byte-for-byte from current.
func (p PlacePatch) AddressChanged(current string) bool {
	return p.Address != nil && *p.Address != current
}
