// Package transit is the public façade (the new component sitting in
// front of C1-C5 in SPEC_FULL.md §4.6): it validates a journey
// request's arguments, resolves stop codes, drives the RAPTOR search,
// and reconstructs itineraries, returning exactly the error taxonomy
// of spec.md §7.
package transit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"raptor.dev/transit/calendar"
	"raptor.dev/transit/itinerary"
	"raptor.dev/transit/model"
	"raptor.dev/transit/raptor"
	"raptor.dev/transit/timetable"
)

const maxAllowedTransfers = 10

// Request is the one entry point's argument bundle:
// search_journeys(source_code, dest_code, service_date,
// earliest_dep_hhmm, max_transfers) from spec.md §6.
type Request struct {
	SourceCode      string
	DestCode        string
	ServiceDate     string
	EarliestDepHHMM string
	MaxTransfers    int
}

// Engine wraps a built timetable.Index and exposes SearchJourneys, the
// core's sole entry point. An Engine is safe for concurrent use by
// multiple goroutines once constructed, per SPEC_FULL.md §5: the index
// it wraps is immutable, and every search gets its own query-scoped
// label.Store.
type Engine struct {
	idx        *timetable.Index
	codeLookup map[string]model.StopID
}

// NewEngine builds a case-insensitive stop-code lookup once, rather
// than on every request, and wraps idx for querying.
func NewEngine(idx *timetable.Index) *Engine {
	lookup := make(map[string]model.StopID, idx.NumStops())
	for s := 0; s < idx.NumStops(); s++ {
		stop := idx.Stop(model.StopID(s))
		lookup[strings.ToUpper(stop.Code)] = stop.ID
	}
	return &Engine{idx: idx, codeLookup: lookup}
}

// SearchJourneys validates req per spec.md §6's argument contracts,
// runs the RAPTOR search, and reconstructs every terminal label at the
// destination into an Itinerary. Ctx is checked for cancellation
// between RAPTOR rounds (model.ErrCancelled) but not during
// reconstruction, which performs no blocking work.
func (e *Engine) SearchJourneys(ctx context.Context, req Request) ([]itinerary.Itinerary, error) {
	source, err := e.resolveStop(req.SourceCode)
	if err != nil {
		return nil, err
	}
	dest, err := e.resolveStop(req.DestCode)
	if err != nil {
		return nil, err
	}

	weekday, err := calendar.WeekdayIndex(req.ServiceDate)
	if err != nil {
		return nil, err
	}

	depMinute, err := parseHHMM(req.EarliestDepHHMM)
	if err != nil {
		return nil, err
	}

	if req.MaxTransfers < 0 || req.MaxTransfers > maxAllowedTransfers {
		return nil, fmt.Errorf("%w: max_transfers %d outside [0, %d]", model.ErrInvalidInput, req.MaxTransfers, maxAllowedTransfers)
	}

	store, err := raptor.Search(ctx, e.idx, source, depMinute, weekday, req.MaxTransfers)
	if err != nil {
		return nil, err
	}

	frontier := store.Frontier(dest)
	if len(frontier) == 0 {
		return nil, model.ErrNoRoutes
	}

	itineraries := make([]itinerary.Itinerary, 0, len(frontier))
	for _, terminal := range frontier {
		it, err := itinerary.Reconstruct(e.idx, terminal)
		if err != nil {
			// One bad reconstruction must not abort the others,
			// per spec.md §7.
			continue
		}
		if len(it.Segments) == 0 {
			continue
		}
		itineraries = append(itineraries, *it)
	}

	if len(itineraries) == 0 {
		return nil, model.ErrNoRoutes
	}

	return itineraries, nil
}

func (e *Engine) resolveStop(code string) (model.StopID, error) {
	if code == "" {
		return model.NoStop, fmt.Errorf("%w: empty stop code", model.ErrUnknownStop)
	}
	stop, ok := e.codeLookup[strings.ToUpper(code)]
	if !ok {
		return model.NoStop, fmt.Errorf("%w: %q", model.ErrUnknownStop, code)
	}
	return stop, nil
}

// parseHHMM converts a 24-hour "HH:MM" string to minutes in [0, 1440).
func parseHHMM(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q: want HH:MM", model.ErrInvalidTime, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q: invalid hour", model.ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q: invalid minute", model.ErrInvalidTime, s)
	}

	return hour*60 + minute, nil
}
