package label

import "raptor.dev/transit/model"

// Store holds, per stop, the Pareto frontier over (arrival, transfers,
// -comfort), and owns every Label created during one query. A query's
// entire label graph — frontiers plus the labels they once held that
// were since dominated but still anchor a surviving descendant's
// Predecessor chain — lives only in a Store; Store is not safe for
// concurrent use, which matches SPEC_FULL.md §5: a query runs in one
// logical thread.
//
// Per the arena strategy recommended in spec.md §9, all is the
// query's arena: the seed and every Label that Insert accepts are
// appended here so none are collected while a descendant still
// references it as Predecessor, and the whole arena (and everything it
// anchors) is simply dropped when the query returns. Candidates that
// Insert rejects are never recorded.
type Store struct {
	frontier map[model.StopID][]*Label
	all      []*Label
}

// NewStore returns an empty, query-scoped Store.
func NewStore() *Store {
	return &Store{
		frontier: map[model.StopID][]*Label{},
	}
}

// Seed inserts the single source label at sourceStop: arrival =
// departureMinute, transfers = 0, comfort = 0, no predecessor.
func (s *Store) Seed(sourceStop model.StopID, departureMinute int) *Label {
	source := &Label{
		Arrival:    departureMinute,
		Transfers:  0,
		Comfort:    0,
		BoardStop:  model.NoStop,
		ViaRoute:   model.NoRoute,
		AlightStop: sourceStop,
	}
	s.all = append(s.all, source)
	s.frontier[sourceStop] = []*Label{source}
	return source
}

// Insert attempts to add candidate to stop's frontier, per the
// dominance rule in SPEC_FULL.md §4.3: if any existing label
// dominates candidate, it is discarded; otherwise every existing
// label candidate dominates is removed, and candidate is appended.
// Returns true iff candidate was inserted.
func (s *Store) Insert(stop model.StopID, candidate *Label) bool {
	existing := s.frontier[stop]
	for _, l := range existing {
		if l.Dominates(candidate) {
			return false
		}
	}

	kept := existing[:0:0]
	for _, l := range existing {
		if !candidate.Dominates(l) {
			kept = append(kept, l)
		}
	}
	kept = append(kept, candidate)
	s.frontier[stop] = kept
	s.all = append(s.all, candidate)

	return true
}

// Frontier returns an immutable snapshot of stop's current
// non-dominated labels. The returned slice must not be mutated by the
// caller; it may alias the Store's internal state.
func (s *Store) Frontier(stop model.StopID) []*Label {
	return s.frontier[stop]
}

// Len returns the total number of labels this Store has recorded (the
// seed plus every accepted insertion), including those since dominated
// — useful for tests asserting on arena growth.
func (s *Store) Len() int {
	return len(s.all)
}
