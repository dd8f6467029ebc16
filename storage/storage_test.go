package storage_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptor.dev/transit/model"
	"raptor.dev/transit/storage"
)

// builder constructs a fresh, empty Store; the same test bodies run
// against every backend, mirroring the teacher's StorageBuilder
// pattern in storage_test.go.
type builder func() (storage.Store, error)

func TestStore(t *testing.T) {
	for _, test := range []struct {
		Name string
		Test func(t *testing.T, b builder)
	}{
		{"InitiallyEmpty", testInitiallyEmpty},
		{"WriteAndReadStops", testWriteAndReadStops},
		{"WriteAndReadRoutes", testWriteAndReadRoutes},
		{"WriteAndReadStopTimesPreservesOrder", testWriteAndReadStopTimesPreservesOrder},
		{"WriteAndReadStationMetadata", testWriteAndReadStationMetadata},
		{"StopTimeOptionalFields", testStopTimeOptionalFields},
	} {
		t.Run(fmt.Sprintf("%s Memory", test.Name), func(t *testing.T) {
			test.Test(t, func() (storage.Store, error) {
				return storage.NewMemoryStore(), nil
			})
		})

		t.Run(fmt.Sprintf("%s SQLite", test.Name), func(t *testing.T) {
			test.Test(t, func() (storage.Store, error) {
				return storage.NewSQLiteStore()
			})
		})

		if connStr := os.Getenv("RAPTOR_TEST_POSTGRES_DSN"); connStr != "" {
			t.Run(fmt.Sprintf("%s Postgres", test.Name), func(t *testing.T) {
				test.Test(t, func() (storage.Store, error) {
					return storage.NewPostgresStore(connStr, true)
				})
			})
		}
	}
}

func testInitiallyEmpty(t *testing.T, b builder) {
	s, err := b()
	require.NoError(t, err)
	defer s.Close()

	r, err := s.Reader()
	require.NoError(t, err)

	stops, err := r.Stops()
	require.NoError(t, err)
	assert.Empty(t, stops)
}

func testWriteAndReadStops(t *testing.T, b builder) {
	s, err := b()
	require.NoError(t, err)
	defer s.Close()

	w, err := s.Writer()
	require.NoError(t, err)
	require.NoError(t, w.WriteStop(model.StopRecord{Code: "A", Name: "Alpha", MinTransferMinutes: 30}))
	require.NoError(t, w.WriteStop(model.StopRecord{Code: "B", Name: "Bravo", MinTransferMinutes: 45}))

	r, err := s.Reader()
	require.NoError(t, err)
	stops, err := r.Stops()
	require.NoError(t, err)
	require.Len(t, stops, 2)

	byCode := map[string]model.StopRecord{}
	for _, rec := range stops {
		byCode[rec.Code] = rec
	}
	assert.Equal(t, "Alpha", byCode["A"].Name)
	assert.Equal(t, 45, byCode["B"].MinTransferMinutes)
}

func testWriteAndReadRoutes(t *testing.T, b builder) {
	s, err := b()
	require.NoError(t, err)
	defer s.Close()

	w, err := s.Writer()
	require.NoError(t, err)

	days := [7]bool{false, true, false, true, false, true, false}
	require.NoError(t, w.WriteRoute(model.RouteRecord{ID: "R1", Name: "Red Line", RunningDays: days, Comfort: 7, FarePerKm: 0.4}))

	r, err := s.Reader()
	require.NoError(t, err)
	routes, err := r.Routes()
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "R1", routes[0].ID)
	assert.Equal(t, days, routes[0].RunningDays)
	assert.Equal(t, 7.0, routes[0].Comfort)
	assert.Equal(t, 0.4, routes[0].FarePerKm)
}

func testWriteAndReadStopTimesPreservesOrder(t *testing.T, b builder) {
	s, err := b()
	require.NoError(t, err)
	defer s.Close()

	w, err := s.Writer()
	require.NoError(t, err)

	require.NoError(t, w.BeginStopTimes())
	require.NoError(t, w.WriteStopTime(model.StopTimeRecord{RouteID: "R1", StopCode: "A", Position: 0, Departure: model.Minute(600)}))
	require.NoError(t, w.WriteStopTime(model.StopTimeRecord{RouteID: "R1", StopCode: "B", Position: 1, Arrival: model.Minute(660), Departure: model.Minute(665)}))
	require.NoError(t, w.WriteStopTime(model.StopTimeRecord{RouteID: "R1", StopCode: "C", Position: 2, Arrival: model.Minute(720)}))
	require.NoError(t, w.EndStopTimes())

	r, err := s.Reader()
	require.NoError(t, err)
	sts, err := r.StopTimes()
	require.NoError(t, err)
	require.Len(t, sts, 3)

	for i, st := range sts {
		assert.Equal(t, i, st.Position)
	}
}

func testWriteAndReadStationMetadata(t *testing.T, b builder) {
	s, err := b()
	require.NoError(t, err)
	defer s.Close()

	w, err := s.Writer()
	require.NoError(t, err)
	require.NoError(t, w.WriteStationMetadata(model.StationMetadata{
		StopCode:           "A",
		MinTransferMinutes: 20,
		Descriptive:        map[string]string{"platform": "2"},
	}))

	r, err := s.Reader()
	require.NoError(t, err)
	meta, err := r.StationMetadata()
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.Equal(t, 20, meta[0].MinTransferMinutes)
	assert.Equal(t, "2", meta[0].Descriptive["platform"])
}

func testStopTimeOptionalFields(t *testing.T, b builder) {
	s, err := b()
	require.NoError(t, err)
	defer s.Close()

	w, err := s.Writer()
	require.NoError(t, err)
	require.NoError(t, w.BeginStopTimes())
	require.NoError(t, w.WriteStopTime(model.StopTimeRecord{RouteID: "R1", StopCode: "A", Position: 0, Departure: model.Minute(600)}))
	require.NoError(t, w.EndStopTimes())

	r, err := s.Reader()
	require.NoError(t, err)
	sts, err := r.StopTimes()
	require.NoError(t, err)
	require.Len(t, sts, 1)
	assert.Nil(t, sts[0].Arrival)
	require.NotNil(t, sts[0].Departure)
	assert.Equal(t, 600, *sts[0].Departure)
}
