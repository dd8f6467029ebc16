package model

// The boundary record shapes, one per pre-materialized table in
// SPEC_FULL.md §3.1 / §6: textual, serialization-friendly, produced by
// an upstream ingestion pipeline and consumed by the loader package to
// populate a timetable.Builder. StopRouteRecord and RoutePositionRecord
// from §6's six-table list are intentionally not given separate Go
// shapes here: both are fully derivable from StopTimeRecord (which
// already carries route, stop and position), so the loader builds the
// stop→routes index and route pattern directly off the stop-time
// table instead of ingesting two redundant ones.

// StopRecord is one row of the stop table: code to {id, name}. The
// dense StopID is assigned by timetable.Builder.AddStop, not carried
// here.
type StopRecord struct {
	Code               string
	Name               string
	MinTransferMinutes int
}

// RouteRecord is one row of the route table: route-id to {display
// name, running-days bitmask, optional comfort, optional fare/km}. ID
// is the upstream textual route identifier; RunningDays is indexed
// with 0 = Sunday.
type RouteRecord struct {
	ID          string
	Name        string
	RunningDays [7]bool
	Comfort     float64
	FarePerKm   float64
}

// StopTimeRecord is one row of the stop-time table: a flat
// {route-id, stop-id, position, arrival, departure, day-offset} tuple.
// Arrival and Departure are nil when the upstream feed has no value
// for that field at this position.
type StopTimeRecord struct {
	RouteID   string
	StopCode  string
	Position  int
	Arrival   *int
	Departure *int
	DayOffset int
}

// StationMetadata is one row of the station metadata table: a stop's
// minimum transfer time plus whatever descriptive fields an upstream
// feed attaches (unused by the core beyond MinTransferMinutes, kept
// for forward compatibility with richer metadata sources).
type StationMetadata struct {
	StopCode           string
	MinTransferMinutes int
	Descriptive        map[string]string
}
