// Package timetable is the immutable, pre-built index the RAPTOR
// engine queries (C1 in SPEC_FULL.md). It is built once by a Builder
// (filled by the loader package from CSV or a storage.Store, or
// directly in tests), and is safe for
// concurrent read access for the lifetime of the query process: it is
// never mutated after Build returns.
package timetable

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"raptor.dev/transit/model"
)

// RouteStop pairs a route with the position a given stop occupies in
// its pattern, the shape RoutesAt returns.
type RouteStop struct {
	Route    model.RouteID
	Position int
}

// Index answers the read-only queries C4 (raptor.Search) needs, all
// amortized O(1): route patterns, stop-time lookups, the stop→routes
// map, running-day masks, per-stop minimum transfer times, and
// per-route comfort/fare metadata. Stop and route codes are resolved
// to dense IDs once, at the boundary; internal lookups never touch a
// string.
type Index struct {
	stops      []model.Stop
	stopByCode map[string]model.StopID

	routes []model.Route
	// stopTimes[r][p] is the stop-time at position p of route r.
	stopTimes [][]model.StopTime
	// positionOf[r][s] is the position of stop s in route r's
	// pattern, when s is served by r.
	positionOf []map[model.StopID]int
	// routesAt[s] lists every (route, position) touching stop s.
	routesAt [][]RouteStop
}

// NumStops returns the size of the dense stop-id space.
func (idx *Index) NumStops() int { return len(idx.stops) }

// NumRoutes returns the size of the dense route-id space.
func (idx *Index) NumRoutes() int { return len(idx.routes) }

// StopByCode resolves a stop's textual code (compared
// case-insensitively by the caller, per SPEC_FULL.md §6) to its dense
// ID. ok is false when the code is unknown.
func (idx *Index) StopByCode(code string) (stop model.StopID, ok bool) {
	id, found := idx.stopByCode[code]
	return id, found
}

// Stop returns the Stop record for a dense ID.
func (idx *Index) Stop(s model.StopID) model.Stop {
	return idx.stops[s]
}

// RoutePattern returns the ordered stop list of a route.
func (idx *Index) RoutePattern(r model.RouteID) ([]model.StopID, error) {
	if r < 0 || int(r) >= len(idx.routes) {
		return nil, errors.Wrapf(model.ErrIndex, "route %d out of range", r)
	}
	return idx.routes[r].Stops, nil
}

// PositionInRoute returns the position of stop s within route r's
// pattern, or ok=false if r does not serve s.
func (idx *Index) PositionInRoute(r model.RouteID, s model.StopID) (position int, ok bool) {
	if r < 0 || int(r) >= len(idx.positionOf) {
		return 0, false
	}
	p, found := idx.positionOf[r][s]
	return p, found
}

// StopTime returns the stop-time record at a (route, position), or
// ok=false if out of range.
func (idx *Index) StopTime(r model.RouteID, position int) (st model.StopTime, ok bool) {
	if r < 0 || int(r) >= len(idx.stopTimes) {
		return model.StopTime{}, false
	}
	sts := idx.stopTimes[r]
	if position < 0 || position >= len(sts) {
		return model.StopTime{}, false
	}
	return sts[position], true
}

// RoutesAt returns every (route, position) pair touching stop s.
func (idx *Index) RoutesAt(s model.StopID) []RouteStop {
	if s < 0 || int(s) >= len(idx.routesAt) {
		return nil
	}
	return idx.routesAt[s]
}

// RunningDays returns route r's 7-bit running-day mask, index 0 =
// Sunday.
func (idx *Index) RunningDays(r model.RouteID) [7]bool {
	return idx.routes[r].RunningDays
}

// MinTransfer returns stop s's minimum transfer time in minutes.
func (idx *Index) MinTransfer(s model.StopID) int {
	return idx.stops[s].MinTransferMinutes
}

// ComfortOf returns route r's fixed comfort score.
func (idx *Index) ComfortOf(r model.RouteID) float64 {
	return idx.routes[r].Comfort
}

// FarePerKm returns route r's fare-per-kilometer metadata, used by
// the itinerary reconstructor's fare placeholder.
func (idx *Index) FarePerKm(r model.RouteID) float64 {
	return idx.routes[r].FarePerKm
}

// RouteName returns route r's display name.
func (idx *Index) RouteName(r model.RouteID) string {
	return idx.routes[r].Name
}

func (idx *Index) stopOutOfRange(s model.StopID) error {
	return errors.Wrapf(model.ErrIndex, "stop %d out of range [0, %d)", s, len(idx.stops))
}

// validate checks the invariants SPEC_FULL.md §3 requires of a built
// index: dense stop-id space, a stop appearing at most once per route
// pattern, and stop-times strictly increasing in position and
// non-decreasing in absolute minute when both are present.
func (idx *Index) validate() error {
	for s := range idx.stops {
		if idx.stops[s].ID != model.StopID(s) {
			return errors.Wrapf(model.ErrIndex, "stop id %d is not dense at index %d", idx.stops[s].ID, s)
		}
	}

	for r := range idx.routes {
		seen := map[model.StopID]bool{}
		for _, s := range idx.routes[r].Stops {
			if s < 0 || int(s) >= len(idx.stops) {
				return idx.stopOutOfRange(s)
			}
			if seen[s] {
				return errors.Wrapf(model.ErrIndex, "route %d visits stop %d more than once", r, s)
			}
			seen[s] = true
		}

		sts := idx.stopTimes[r]
		lastAbs := -1 << 62
		for p, st := range sts {
			if st.Position != p {
				return errors.Wrapf(model.ErrIndex, "route %d stop-time at slot %d has position %d", r, p, st.Position)
			}
			if st.Arrival != nil && st.Departure != nil && *st.Arrival > *st.Departure {
				return errors.Wrapf(model.ErrIndex, "route %d position %d: arrival after departure", r, p)
			}
			if st.Arrival != nil {
				abs := model.AbsMinute(*st.Arrival, st.DayOffset)
				if abs < lastAbs {
					return errors.Wrapf(model.ErrIndex, "route %d position %d: arrival decreases along pattern", r, p)
				}
				lastAbs = abs
			}
			if st.Departure != nil {
				abs := model.AbsMinute(*st.Departure, st.DayOffset)
				if abs < lastAbs {
					return errors.Wrapf(model.ErrIndex, "route %d position %d: departure decreases along pattern", r, p)
				}
				lastAbs = abs
			}
		}
	}

	return nil
}

func (idx *Index) build() {
	idx.positionOf = make([]map[model.StopID]int, len(idx.routes))
	idx.routesAt = make([][]RouteStop, len(idx.stops))

	for r, route := range idx.routes {
		idx.positionOf[r] = make(map[model.StopID]int, len(route.Stops))
		for p, s := range route.Stops {
			idx.positionOf[r][s] = p
			idx.routesAt[s] = append(idx.routesAt[s], RouteStop{Route: model.RouteID(r), Position: p})
		}
	}

	for s := range idx.routesAt {
		sort.Slice(idx.routesAt[s], func(i, j int) bool {
			return idx.routesAt[s][i].Route < idx.routesAt[s][j].Route
		})
	}
}

func (idx *Index) String() string {
	return fmt.Sprintf("Index{stops=%d, routes=%d}", len(idx.stops), len(idx.routes))
}
