package storage

import "raptor.dev/transit/model"

// MemoryStore is the default Store: a direct, process-local
// collection of slices, grounded on the teacher's storage.MemoryStorage
// (map-of-slices, no serialization). Writer and Reader share the same
// backing slices, so a Reader call after writing observes everything
// written so far.
type MemoryStore struct {
	stops     []model.StopRecord
	routes    []model.RouteRecord
	stopTimes []model.StopTimeRecord
	metadata  []model.StationMetadata
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Writer() (Writer, error) { return &memoryWriter{m}, nil }
func (m *MemoryStore) Reader() (Reader, error) { return &memoryReader{m}, nil }
func (m *MemoryStore) Close() error            { return nil }

type memoryWriter struct{ m *MemoryStore }

func (w *memoryWriter) WriteStop(rec model.StopRecord) error {
	w.m.stops = append(w.m.stops, rec)
	return nil
}

func (w *memoryWriter) WriteRoute(rec model.RouteRecord) error {
	w.m.routes = append(w.m.routes, rec)
	return nil
}

func (w *memoryWriter) WriteStationMetadata(rec model.StationMetadata) error {
	w.m.metadata = append(w.m.metadata, rec)
	return nil
}

func (w *memoryWriter) BeginStopTimes() error { return nil }
func (w *memoryWriter) EndStopTimes() error   { return nil }

func (w *memoryWriter) WriteStopTime(rec model.StopTimeRecord) error {
	w.m.stopTimes = append(w.m.stopTimes, rec)
	return nil
}

func (w *memoryWriter) Close() error { return nil }

type memoryReader struct{ m *MemoryStore }

func (r *memoryReader) Stops() ([]model.StopRecord, error) { return r.m.stops, nil }
func (r *memoryReader) Routes() ([]model.RouteRecord, error) { return r.m.routes, nil }
func (r *memoryReader) StopTimes() ([]model.StopTimeRecord, error) { return r.m.stopTimes, nil }
func (r *memoryReader) StationMetadata() ([]model.StationMetadata, error) { return r.m.metadata, nil }
