// Package loader reads the four boundary tables of SPEC_FULL.md §3.1
// (stops, routes, stop-times, station metadata) from CSV and populates
// either a
// storage.Writer (for a cached index source) or a timetable.Builder
// directly (for one-shot CSV use). It mirrors the teacher's
// parse.ParseStatic orchestration: one Parse* function per table,
// gocsv-unmarshaled rows, cross-table references validated as they're
// read, pkg/errors wrapping at every row-level failure.
package loader

import (
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"raptor.dev/transit/model"
	"raptor.dev/transit/storage"
	"raptor.dev/transit/timetable"
)

// StopCSV is one row of the stop table.
type StopCSV struct {
	Code               string `csv:"stop_code"`
	Name               string `csv:"stop_name"`
	MinTransferMinutes int    `csv:"min_transfer_minutes"`
}

// RouteCSV is one row of the route table. RunningDays is a 7-character
// '0'/'1' string, index 0 = Sunday (model.ParseRunningDays).
type RouteCSV struct {
	ID          string  `csv:"route_id"`
	Name        string  `csv:"route_name"`
	RunningDays string  `csv:"running_days"`
	Comfort     float64 `csv:"comfort"`
	FarePerKm   float64 `csv:"fare_per_km"`
}

// StopTimeCSV is one row of the stop-time table. ArrivalMinute and
// DepartureMinute are empty strings when absent, matching GTFS's
// optional-field convention.
type StopTimeCSV struct {
	RouteID         string `csv:"route_id"`
	StopCode        string `csv:"stop_code"`
	Position        int    `csv:"position"`
	ArrivalMinute   string `csv:"arrival_minute"`
	DepartureMinute string `csv:"departure_minute"`
	DayOffset       int    `csv:"day_offset"`
}

// StationMetadataCSV is one row of the station metadata table.
type StationMetadataCSV struct {
	StopCode           string `csv:"stop_code"`
	MinTransferMinutes int    `csv:"min_transfer_minutes"`
}

// ParseStops reads the stop table. Returns an error on an empty or
// repeated stop_code.
func ParseStops(data io.Reader) ([]model.StopRecord, error) {
	rows := []*StopCSV{}
	if err := gocsv.Unmarshal(bom.NewReader(data), &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling stops csv")
	}

	seen := map[string]bool{}
	out := make([]model.StopRecord, 0, len(rows))
	for i, row := range rows {
		if row.Code == "" {
			return nil, errors.Errorf("stops row %d: empty stop_code", i+1)
		}
		if seen[row.Code] {
			return nil, errors.Errorf("stops row %d: repeated stop_code %q", i+1, row.Code)
		}
		seen[row.Code] = true

		minTransfer := row.MinTransferMinutes
		if minTransfer == 0 {
			minTransfer = model.DefaultMinTransferMinutes
		}

		out = append(out, model.StopRecord{
			Code:               row.Code,
			Name:               row.Name,
			MinTransferMinutes: minTransfer,
		})
	}
	return out, nil
}

// ParseRoutes reads the route table. Returns an error on an empty or
// repeated route_id, or a malformed running_days mask.
func ParseRoutes(data io.Reader) ([]model.RouteRecord, error) {
	rows := []*RouteCSV{}
	if err := gocsv.Unmarshal(bom.NewReader(data), &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling routes csv")
	}

	seen := map[string]bool{}
	out := make([]model.RouteRecord, 0, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			return nil, errors.Errorf("routes row %d: empty route_id", i+1)
		}
		if seen[row.ID] {
			return nil, errors.Errorf("routes row %d: repeated route_id %q", i+1, row.ID)
		}
		seen[row.ID] = true

		mask, err := model.ParseRunningDays(row.RunningDays)
		if err != nil {
			return nil, errors.Wrapf(err, "routes row %d", i+1)
		}

		farePerKm := row.FarePerKm
		if farePerKm == 0 {
			farePerKm = model.DefaultFarePerKm
		}

		out = append(out, model.RouteRecord{
			ID:          row.ID,
			Name:        row.Name,
			RunningDays: mask,
			Comfort:     row.Comfort,
			FarePerKm:   farePerKm,
		})
	}
	return out, nil
}

// ParseStopTimes reads the stop-time table, validating that every
// route_id and stop_code was already seen in the route/stop tables.
func ParseStopTimes(data io.Reader, routeIDs, stopCodes map[string]bool) ([]model.StopTimeRecord, error) {
	rows := []*StopTimeCSV{}
	if err := gocsv.Unmarshal(bom.NewReader(data), &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling stop_times csv")
	}

	out := make([]model.StopTimeRecord, 0, len(rows))
	for i, row := range rows {
		if !routeIDs[row.RouteID] {
			return nil, errors.Errorf("stop_times row %d: unknown route_id %q", i+1, row.RouteID)
		}
		if !stopCodes[row.StopCode] {
			return nil, errors.Errorf("stop_times row %d: unknown stop_code %q", i+1, row.StopCode)
		}

		arrival, err := parseOptionalMinute(row.ArrivalMinute)
		if err != nil {
			return nil, errors.Wrapf(err, "stop_times row %d: arrival_minute", i+1)
		}
		departure, err := parseOptionalMinute(row.DepartureMinute)
		if err != nil {
			return nil, errors.Wrapf(err, "stop_times row %d: departure_minute", i+1)
		}

		out = append(out, model.StopTimeRecord{
			RouteID:   row.RouteID,
			StopCode:  row.StopCode,
			Position:  row.Position,
			Arrival:   arrival,
			Departure: departure,
			DayOffset: row.DayOffset,
		})
	}
	return out, nil
}

// ParseStationMetadata reads the station metadata table.
func ParseStationMetadata(data io.Reader) ([]model.StationMetadata, error) {
	rows := []*StationMetadataCSV{}
	if err := gocsv.Unmarshal(bom.NewReader(data), &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling station_metadata csv")
	}

	out := make([]model.StationMetadata, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.StationMetadata{
			StopCode:           row.StopCode,
			MinTransferMinutes: row.MinTransferMinutes,
		})
	}
	return out, nil
}

func parseOptionalMinute(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	var minute int
	if _, err := fmt.Sscanf(s, "%d", &minute); err != nil {
		return nil, fmt.Errorf("invalid minute %q", s)
	}
	return &minute, nil
}

// Tables bundles the four CSV sources one LoadCSV call reads from.
// StationMetadata is optional; pass nil to skip it.
type Tables struct {
	Stops           io.Reader
	Routes          io.Reader
	StopTimes       io.Reader
	StationMetadata io.Reader
}

// LoadCSV parses t directly into a fresh timetable.Builder, for the
// CLI's --csv-dir mode: no storage.Store cache sits in between.
func LoadCSV(t Tables) (*timetable.Builder, error) {
	stops, err := ParseStops(t.Stops)
	if err != nil {
		return nil, err
	}
	routes, err := ParseRoutes(t.Routes)
	if err != nil {
		return nil, err
	}

	routeIDs, stopCodes := map[string]bool{}, map[string]bool{}
	for _, r := range routes {
		routeIDs[r.ID] = true
	}
	for _, s := range stops {
		stopCodes[s.Code] = true
	}

	stopTimes, err := ParseStopTimes(t.StopTimes, routeIDs, stopCodes)
	if err != nil {
		return nil, err
	}

	var metadata []model.StationMetadata
	if t.StationMetadata != nil {
		metadata, err = ParseStationMetadata(t.StationMetadata)
		if err != nil {
			return nil, err
		}
	}

	return buildFromRecords(stops, routes, stopTimes, metadata)
}

// LoadFromStore reads every boundary table back out of an
// already-populated storage.Store (the --sqlite-path / --postgres-dsn
// CLI modes) and assembles a timetable.Builder from it.
func LoadFromStore(s storage.Store) (*timetable.Builder, error) {
	r, err := s.Reader()
	if err != nil {
		return nil, errors.Wrap(err, "opening store reader")
	}

	stops, err := r.Stops()
	if err != nil {
		return nil, errors.Wrap(err, "reading stops")
	}
	routes, err := r.Routes()
	if err != nil {
		return nil, errors.Wrap(err, "reading routes")
	}
	stopTimes, err := r.StopTimes()
	if err != nil {
		return nil, errors.Wrap(err, "reading stop_times")
	}
	metadata, err := r.StationMetadata()
	if err != nil {
		return nil, errors.Wrap(err, "reading station_metadata")
	}

	return buildFromRecords(stops, routes, stopTimes, metadata)
}

// WriteToStore parses t and writes every row into s, for populating a
// cache ahead of time instead of loading CSV on every process start.
func WriteToStore(s storage.Store, t Tables) error {
	stops, err := ParseStops(t.Stops)
	if err != nil {
		return err
	}
	routes, err := ParseRoutes(t.Routes)
	if err != nil {
		return err
	}

	routeIDs, stopCodes := map[string]bool{}, map[string]bool{}
	for _, r := range routes {
		routeIDs[r.ID] = true
	}
	for _, st := range stops {
		stopCodes[st.Code] = true
	}

	stopTimes, err := ParseStopTimes(t.StopTimes, routeIDs, stopCodes)
	if err != nil {
		return err
	}

	var metadata []model.StationMetadata
	if t.StationMetadata != nil {
		metadata, err = ParseStationMetadata(t.StationMetadata)
		if err != nil {
			return err
		}
	}

	w, err := s.Writer()
	if err != nil {
		return errors.Wrap(err, "opening store writer")
	}
	defer w.Close()

	for _, rec := range stops {
		if err := w.WriteStop(rec); err != nil {
			return errors.Wrapf(err, "writing stop %q", rec.Code)
		}
	}
	for _, rec := range routes {
		if err := w.WriteRoute(rec); err != nil {
			return errors.Wrapf(err, "writing route %q", rec.ID)
		}
	}
	for _, rec := range metadata {
		if err := w.WriteStationMetadata(rec); err != nil {
			return errors.Wrapf(err, "writing station metadata %q", rec.StopCode)
		}
	}

	if err := w.BeginStopTimes(); err != nil {
		return err
	}
	for _, rec := range stopTimes {
		if err := w.WriteStopTime(rec); err != nil {
			return errors.Wrapf(err, "writing stop_time %s@%d", rec.RouteID, rec.Position)
		}
	}
	return w.EndStopTimes()
}

// buildFromRecords compacts boundary records into a timetable.Builder:
// stops first (so station metadata can override MinTransferMinutes),
// then routes, then stop-times in route/position order.
func buildFromRecords(stops []model.StopRecord, routes []model.RouteRecord, stopTimes []model.StopTimeRecord, metadata []model.StationMetadata) (*timetable.Builder, error) {
	minTransferOverride := map[string]int{}
	for _, m := range metadata {
		minTransferOverride[m.StopCode] = m.MinTransferMinutes
	}

	b := timetable.NewBuilder()
	for _, rec := range stops {
		minTransfer := rec.MinTransferMinutes
		if override, ok := minTransferOverride[rec.Code]; ok {
			minTransfer = override
		}
		if _, err := b.AddStop(rec.Code, rec.Name, minTransfer); err != nil {
			return nil, err
		}
	}

	routeID := map[string]model.RouteID{}
	for _, rec := range routes {
		routeID[rec.ID] = b.AddRoute(rec.Name, rec.RunningDays, rec.Comfort, rec.FarePerKm)
	}

	byRoute := map[string][]model.StopTimeRecord{}
	for _, rec := range stopTimes {
		byRoute[rec.RouteID] = append(byRoute[rec.RouteID], rec)
	}

	for _, rec := range routes {
		rID := routeID[rec.ID]
		sts := byRoute[rec.ID]
		sort.Slice(sts, func(i, j int) bool { return sts[i].Position < sts[j].Position })

		for _, st := range sts {
			stop, ok := b.StopByCode(st.StopCode)
			if !ok {
				return nil, errors.Errorf("stop_times: unknown stop_code %q for route %q", st.StopCode, rec.ID)
			}
			if err := b.AddStopTime(rID, stop, st.Position, st.Arrival, st.Departure, st.DayOffset); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}
