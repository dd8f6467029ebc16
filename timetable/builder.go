package timetable

import (
	"github.com/pkg/errors"

	"raptor.dev/transit/model"
)

// Builder accumulates the boundary tables of SPEC_FULL.md §3.1
// (via the loader package, or directly in tests) and compacts them
// into a dense-integer Index. It is the write-side counterpart to
// Index, in the same spirit as the teacher's storage.FeedWriter:
// records are added incrementally, in any order for stops and routes,
// but stop-times must be added in increasing position order per
// route.
type Builder struct {
	stops      []model.Stop
	stopByCode map[string]model.StopID

	routes    []model.Route
	stopTimes [][]model.StopTime
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		stopByCode: map[string]model.StopID{},
	}
}

// AddStop registers a stop, assigning it the next dense StopID in
// insertion order. minTransferMinutes should already carry the
// DefaultMinTransferMinutes fallback if absent from station metadata.
func (b *Builder) AddStop(code, name string, minTransferMinutes int) (model.StopID, error) {
	if code == "" {
		return model.NoStop, errors.Wrap(model.ErrIndex, "stop has empty code")
	}
	if _, exists := b.stopByCode[code]; exists {
		return model.NoStop, errors.Wrapf(model.ErrIndex, "duplicate stop code %q", code)
	}

	id := model.StopID(len(b.stops))
	b.stops = append(b.stops, model.Stop{
		ID:                 id,
		Code:               code,
		Name:               name,
		MinTransferMinutes: minTransferMinutes,
	})
	b.stopByCode[code] = id
	return id, nil
}

// StopByCode returns a previously added stop's dense ID.
func (b *Builder) StopByCode(code string) (model.StopID, bool) {
	id, ok := b.stopByCode[code]
	return id, ok
}

// AddRoute registers a route, assigning it the next dense RouteID in
// insertion order. Its stop pattern is filled in by AddStopTime.
// comfort should be in [0, 10]; farePerKm falls back to
// model.DefaultFarePerKm when the caller has no fare metadata.
func (b *Builder) AddRoute(name string, runningDays [7]bool, comfort, farePerKm float64) model.RouteID {
	id := model.RouteID(len(b.routes))
	b.routes = append(b.routes, model.Route{
		ID:          id,
		Name:        name,
		RunningDays: runningDays,
		Comfort:     comfort,
		FarePerKm:   farePerKm,
	})
	b.stopTimes = append(b.stopTimes, nil)
	return id
}

// AddStopTime appends one stop-time to route r's pattern. Calls for a
// given route must be made in increasing position order; position
// must equal the number of stop-times already added for r.
func (b *Builder) AddStopTime(r model.RouteID, stop model.StopID, position int, arrival, departure *int, dayOffset int) error {
	if r < 0 || int(r) >= len(b.routes) {
		return errors.Wrapf(model.ErrIndex, "unknown route %d", r)
	}
	if stop < 0 || int(stop) >= len(b.stops) {
		return errors.Wrapf(model.ErrIndex, "unknown stop %d", stop)
	}
	if position != len(b.stopTimes[r]) {
		return errors.Wrapf(model.ErrIndex, "route %d: stop-time for position %d added out of order (expected %d)", r, position, len(b.stopTimes[r]))
	}

	b.stopTimes[r] = append(b.stopTimes[r], model.StopTime{
		Route:     r,
		Stop:      stop,
		Position:  position,
		Arrival:   arrival,
		Departure: departure,
		DayOffset: dayOffset,
	})
	b.routes[r].Stops = append(b.routes[r].Stops, stop)

	return nil
}

// Build validates all accumulated records against SPEC_FULL.md §3's
// invariants and returns the immutable Index, or a wrapped
// model.ErrIndex on the first violation found.
func (b *Builder) Build() (*Index, error) {
	idx := &Index{
		stops:      b.stops,
		stopByCode: b.stopByCode,
		routes:     b.routes,
		stopTimes:  b.stopTimes,
	}

	if err := idx.validate(); err != nil {
		return nil, err
	}

	idx.build()

	return idx, nil
}
