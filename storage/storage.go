// Package storage holds the four boundary tables of SPEC_FULL.md §3.1
// between ingestion and index construction (backs C1 in SPEC_FULL.md).
// A Store is write-once, by the loader package, then read-once, by
// loader.LoadFromStore; it is never consulted per-query, which keeps
// C1's amortized O(1) contract and preserves spec.md §5's "no
// persistent storage" constraint on the query engine itself — any
// persistence here lives strictly in the caching layer in front of
// index construction.
package storage

import "raptor.dev/transit/model"

// Writer accepts the boundary records in any order for stops and
// routes, but stop-times must arrive in increasing position order per
// route. BeginStopTimes/EndStopTimes bracket a bulk load the same way
// the teacher's storage.FeedWriter brackets stop_times.txt, so a
// transactional backend can batch instead of committing per row.
type Writer interface {
	WriteStop(rec model.StopRecord) error
	WriteRoute(rec model.RouteRecord) error
	WriteStationMetadata(rec model.StationMetadata) error
	BeginStopTimes() error
	WriteStopTime(rec model.StopTimeRecord) error
	EndStopTimes() error
	Close() error
}

// Reader retrieves everything a Writer accepted, for
// loader.LoadFromStore to assemble into a timetable.Builder.
type Reader interface {
	Stops() ([]model.StopRecord, error)
	Routes() ([]model.RouteRecord, error)
	StopTimes() ([]model.StopTimeRecord, error)
	StationMetadata() ([]model.StationMetadata, error)
}

// Store opens Writer and Reader halves onto the same underlying
// table set.
type Store interface {
	Writer() (Writer, error)
	Reader() (Reader, error)
	Close() error
}
