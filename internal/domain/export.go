package domain

// ExportRow is a single row in a user's full-data export.
// It is a flat, denormalized view: one row per place, with trip fields
// repeated for every place on that trip. Trips with no places yield one row
// with zero values for all place fields and HasPlace false.
type ExportRow struct {
	TripID        string
	TripTitle     string
	TripStartDate string // "2006-01-02"
	TripEndDate   string // "2006-01-02"

	HasPlace     bool
	PlaceName    string
	PlaceAddress string
	Lat          float64
	Lng          float64
	PlaceNotes   string
}
