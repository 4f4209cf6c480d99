package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "trip_start_date", "trip_end_date",
	"place_name", "place_address", "lat", "lng", "place_notes",
}

// ExportRow is one JSON export row. Place fields are omitted for trips
// without places.
type ExportRow struct {
	TripID        uuid.UUID `json:"trip_id"`
	TripTitle     string    `json:"trip_title"`
	TripStartDate string    `json:"trip_start_date"`
	TripEndDate   string    `json:"trip_end_date"`
	PlaceName     *string   `json:"place_name,omitempty"`
	PlaceAddress  *string   `json:"place_address,omitempty"`
	Lat           *float64  `json:"lat,omitempty"`
	Lng           *float64  `json:"lng,omitempty"`
	PlaceNotes    *string   `json:"place_notes,omitempty"`
}

// GetExport handles GET /export.
// It returns a flat table of the caller's trips and places.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "export")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, exportRowToResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV buffers the whole export so a late encoding error can never
// follow a 200 status line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // writes to a bytes.Buffer cannot fail
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="travelplanner-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func exportRowToResponse(r domain.ExportRow) ExportRow {
	tripID, _ := uuid.Parse(r.TripID)
	row := ExportRow{
		TripID:        tripID,
		TripTitle:     r.TripTitle,
		TripStartDate: r.TripStartDate,
		TripEndDate:   r.TripEndDate,
	}
	if r.HasPlace {
		row.PlaceName = &r.PlaceName
		row.PlaceAddress = &r.PlaceAddress
		row.Lat = &r.Lat
		row.Lng = &r.Lng
		row.PlaceNotes = &r.PlaceNotes
	}
	return row
}

// exportRowToCSVRecord encodes a row as a flat string slice. Coordinates are
// blank for trips without places.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	var lat, lng string
	if r.HasPlace {
		lat = strconv.FormatFloat(r.Lat, 'f', -1, 64)
		lng = strconv.FormatFloat(r.Lng, 'f', -1, 64)
	}
	return []string{
		r.TripID,
		r.TripTitle,
		r.TripStartDate,
		r.TripEndDate,
		r.PlaceName,
		r.PlaceAddress,
		lat,
		lng,
		r.PlaceNotes,
	}
}
