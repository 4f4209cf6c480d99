package service

import (
	"context"
	"fmt"

	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/repo"
)

const exportDateLayout = "2006-01-02"

// ExportService assembles a flat export of the caller's trips and places.
type ExportService struct {
	trips  repo.TripRepo
	places repo.PlaceRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, places repo.PlaceRepo) *ExportService {
	return &ExportService{trips: trips, places: places}
}

// Export returns one row per place across the caller's trips, trips in list
// order and places in insertion order. Trips with no places contribute one
// row with empty place fields.
func (s *ExportService) Export(ctx context.Context, id domain.Identity) ([]domain.ExportRow, error) {
	trips, err := s.trips.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(trips))
	for _, trip := range trips {
		base := domain.ExportRow{
			TripID:        trip.ID.String(),
			TripTitle:     trip.Title,
			TripStartDate: trip.StartDate.Format(exportDateLayout),
			TripEndDate:   trip.EndDate.Format(exportDateLayout),
		}

		places, err := s.places.ListByTrip(ctx, trip.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: places of %s: %w", trip.ID, err)
		}
		if len(places) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, p := range places {
			row := base
			row.HasPlace = true
			row.PlaceName = p.Name
			row.PlaceAddress = p.Address
			row.Lat = p.Lat
			row.Lng = p.Lng
			row.PlaceNotes = p.Notes
			rows = append(rows, row)
		}
	}
	return rows, nil
}
