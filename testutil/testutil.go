// Package testutil holds fixture helpers shared across this module's
// tests, in the same literal-table spirit as the teacher's
// BuildStatic/BuildZip: describe a scenario as plain Go literals and
// get back a built timetable.Index.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"raptor.dev/transit/model"
	"raptor.dev/transit/timetable"
)

// EveryDay is the running-days mask for a route with no calendar
// restriction.
func EveryDay() [7]bool {
	return [7]bool{true, true, true, true, true, true, true}
}

// StopSpec describes one fixture stop.
type StopSpec struct {
	Code               string
	Name               string
	MinTransferMinutes int
}

// StopTimeSpec describes one stop-time within a RouteSpec's pattern,
// in pattern order; Position is assigned by its index in StopTimes.
type StopTimeSpec struct {
	Stop      string
	Arrival   *int
	Departure *int
	DayOffset int
}

// RouteSpec describes one fixture route and its stopping pattern.
type RouteSpec struct {
	Name        string
	RunningDays [7]bool
	Comfort     float64
	FarePerKm   float64
	StopTimes   []StopTimeSpec
}

// BuildIndex assembles stops and routes into a built timetable.Index,
// the way each end-to-end scenario in spec.md §8 is described: stops
// first, then route patterns referencing them by code.
func BuildIndex(t testing.TB, stops []StopSpec, routes []RouteSpec) *timetable.Index {
	t.Helper()

	b := timetable.NewBuilder()
	for _, s := range stops {
		minTransfer := s.MinTransferMinutes
		if minTransfer == 0 {
			minTransfer = model.DefaultMinTransferMinutes
		}
		_, err := b.AddStop(s.Code, s.Name, minTransfer)
		require.NoError(t, err)
	}

	for _, r := range routes {
		rID := b.AddRoute(r.Name, r.RunningDays, r.Comfort, r.FarePerKm)
		for p, st := range r.StopTimes {
			stopID, ok := b.StopByCode(st.Stop)
			require.True(t, ok, "unknown stop code %q in route %q", st.Stop, r.Name)
			require.NoError(t, b.AddStopTime(rID, stopID, p, st.Arrival, st.Departure, st.DayOffset))
		}
	}

	idx, err := b.Build()
	require.NoError(t, err)
	return idx
}
