// Package calendar reduces a set of candidate routes to those running
// on a given service date. The running-day bitmask on a route and the
// weekday index computed here share one convention: index 0 is
// Sunday, index 6 is Saturday — identical to Go's time.Weekday, so
// this package does not need a hand-rolled ISO-weekday conversion.
package calendar

import (
	"fmt"
	"time"

	"raptor.dev/transit/model"
)

const dateLayout = "2006-01-02"

// WeekdayIndex parses a YYYY-MM-DD service date and returns its
// weekday index in [0, 6], 0 = Sunday. Returns model.ErrInvalidDate
// wrapped with detail if date is malformed.
func WeekdayIndex(date string) (int, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", model.ErrInvalidDate, date, err)
	}
	return int(t.Weekday()), nil
}

// Running filters routes to those whose RunningDays bit is set at
// date's weekday index. The result preserves the input order.
func Running(routes []model.Route, date string) ([]model.Route, error) {
	weekday, err := WeekdayIndex(date)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Route, 0, len(routes))
	for _, r := range routes {
		if r.RunningDays[weekday] {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// RunningIDs is like Running but takes and returns dense RouteIDs,
// which is the shape raptor.Search actually needs: it never holds a
// full model.Route slice, only an index to ask "does route r run on
// weekday w".
func RunningIDs(weekday int, candidates []model.RouteID, runningDays func(model.RouteID) [7]bool) []model.RouteID {
	filtered := make([]model.RouteID, 0, len(candidates))
	for _, r := range candidates {
		if runningDays(r)[weekday] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
