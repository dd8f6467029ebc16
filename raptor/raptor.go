// Package raptor implements the round-layered relaxation engine (C4 in
// SPEC_FULL.md): boarding, route scanning, and marking, driven by the
// timetable index (C1), the calendar filter (C2), and the label store
// (C3).
package raptor

import (
	"context"

	"raptor.dev/transit/label"
	"raptor.dev/transit/model"
	"raptor.dev/transit/timetable"
)

// Search runs one query: round k = 0 boards only the source label at
// source, subsequent rounds board every label produced by the previous
// round. weekday is the precomputed calendar index (0 = Sunday) a
// route must serve to be considered; maxTransfers bounds the number of
// transfer rounds (rounds 0..maxTransfers run, inclusive). The search
// terminates early if a round inserts no new labels. Returns
// model.ErrCancelled if ctx is done between rounds.
//
// Search relaxes the whole reachable graph rather than stopping at a
// destination: destination never prunes, so the caller reads off
// store.Frontier(dest) once Search returns.
func Search(ctx context.Context, idx *timetable.Index, source model.StopID, departureMinute, weekday, maxTransfers int) (*label.Store, error) {
	store := label.NewStore()
	store.Seed(source, departureMinute)

	marked := []model.StopID{source}

	for k := 0; k <= maxTransfers; k++ {
		select {
		case <-ctx.Done():
			return nil, model.ErrCancelled
		default:
		}

		next := newMarkSet()

		for _, s := range marked {
			for _, l := range store.Frontier(s) {
				if !boardableAt(l, k) {
					continue
				}
				for _, rs := range idx.RoutesAt(s) {
					if !idx.RunningDays(rs.Route)[weekday] {
						continue
					}
					relax(idx, store, rs.Route, rs.Position, s, l, k, next)
				}
			}
		}

		if next.empty() {
			break
		}
		marked = next.stops
	}

	return store, nil
}

// boardableAt reports whether a label at round k is eligible to board
// a new route in that round: round 0 only relaxes the source label,
// later rounds only relax labels carried forward from round k-1.
func boardableAt(l *label.Label, k int) bool {
	if k == 0 {
		return l.IsSource()
	}
	return l.Transfers == k-1
}

// relax boards route r at position boardPos using label l at stop s,
// then extends forward to every later position with a defined
// arrival, inserting a candidate label at each. Newly-inserted stops
// are added to next so they're scanned in the following round.
func relax(idx *timetable.Index, store *label.Store, r model.RouteID, boardPos int, s model.StopID, l *label.Label, k int, next *markSet) {
	boardTime, ok := idx.StopTime(r, boardPos)
	if !ok || boardTime.Departure == nil {
		return
	}

	absDeparture := model.AbsMinute(*boardTime.Departure, boardTime.DayOffset)
	required := l.Arrival
	if !l.IsSource() {
		required += idx.MinTransfer(s)
	}
	if absDeparture < required {
		return
	}

	pattern, err := idx.RoutePattern(r)
	if err != nil {
		return
	}

	transfers := l.Transfers
	if k > 0 {
		transfers = l.Transfers + 1
	}

	for p := boardPos + 1; p < len(pattern); p++ {
		st, ok := idx.StopTime(r, p)
		if !ok || st.Arrival == nil {
			continue
		}

		alight := pattern[p]
		candidate := &label.Label{
			Arrival:     model.AbsMinute(*st.Arrival, st.DayOffset),
			Transfers:   transfers,
			Comfort:     idx.ComfortOf(r),
			Predecessor: l,
			ViaRoute:    r,
			BoardStop:   s,
			AlightStop:  alight,
		}

		if store.Insert(alight, candidate) {
			next.add(alight)
		}
	}
}

// markSet is an insertion-ordered set of stops, keeping round-to-round
// iteration deterministic rather than relying on Go's randomized map
// order.
type markSet struct {
	stops []model.StopID
	seen  map[model.StopID]bool
}

func newMarkSet() *markSet {
	return &markSet{seen: map[model.StopID]bool{}}
}

func (m *markSet) add(s model.StopID) {
	if m.seen[s] {
		return
	}
	m.seen[s] = true
	m.stops = append(m.stops, s)
}

func (m *markSet) empty() bool { return len(m.stops) == 0 }
