// Package label implements the per-stop Pareto frontier (C3 in
// SPEC_FULL.md): the Label algebra, dominance, and the Store that
// keeps each stop's non-dominated labels as the RAPTOR rounds relax
// forward.
package label

import "raptor.dev/transit/model"

// Label is one Pareto-optimal state at a stop: the currency the
// RAPTOR rounds pass forward. Labels are created append-only; once
// pushed into a Store they must never be mutated. Predecessor is nil
// iff this is the source label for a query.
type Label struct {
	Arrival     int
	Transfers   int
	Comfort     float64
	Predecessor *Label
	ViaRoute    model.RouteID
	BoardStop   model.StopID
	AlightStop  model.StopID
}

// IsSource reports whether l is the seed label of a search (no
// predecessor, no route used to reach it).
func (l *Label) IsSource() bool {
	return l.Predecessor == nil
}

// Dominates reports whether l dominates other: no worse in arrival,
// transfers, and comfort, and strictly better in at least one. Equal
// triples do not dominate each other, and a label never dominates
// itself.
func (l *Label) Dominates(other *Label) bool {
	if l == other {
		return false
	}

	arrivalOK := l.Arrival <= other.Arrival
	transfersOK := l.Transfers <= other.Transfers
	comfortOK := l.Comfort >= other.Comfort
	if !(arrivalOK && transfersOK && comfortOK) {
		return false
	}

	return l.Arrival < other.Arrival ||
		l.Transfers < other.Transfers ||
		l.Comfort > other.Comfort
}
