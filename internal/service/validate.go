package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/git21git/travelplanner/internal/domain"
)

// Field length limits, in characters.
const (
	maxTripTitle       = 200
	maxTripDescription = 500
	maxPlaceName       = 200
	maxPlaceAddress    = 300
	maxPlaceNotes      = 500
	minUsername        = 2
	maxUsername        = 80
	maxEmail           = 120
	minPassword        = 6
	maxPasswordBytes   = 72 // bcrypt input limit
)

func required(field, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return maxLen(field, value, limit)
}

func maxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%w: %s must be at most %d characters", domain.ErrValidation, field, limit)
	}
	return nil
}

// validateTrip enforces business rules common to both Create and Update.
// On update it runs against the merged record, so a patch that only moves
// one date is still checked against the stored other date.
func validateTrip(t domain.Trip) error {
	if err := required("title", t.Title, maxTripTitle); err != nil {
		return err
	}
	if err := maxLen("description", t.Description, maxTripDescription); err != nil {
		return err
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if t.StartDate.After(t.EndDate) {
		return domain.ErrInvalidRange
	}
	return nil
}

func validatePlace(p domain.Place) error {
	if err := required("name", p.Name, maxPlaceName); err != nil {
		return err
	}
	if err := required("address", p.Address, maxPlaceAddress); err != nil {
		return err
	}
	return maxLen("notes", p.Notes, maxPlaceNotes)
}

// dateOnly drops the clock part so trips compare and store as calendar days.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
