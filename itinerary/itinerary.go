// Package itinerary implements the predecessor-chain walk that turns
// one terminal label into a materialized journey (C5 in
// SPEC_FULL.md): segment extraction, transfer-buffer annotation, and
// the deterministic duration/distance/fare placeholders.
package itinerary

import (
	"github.com/pkg/errors"

	"raptor.dev/transit/label"
	"raptor.dev/transit/model"
	"raptor.dev/transit/timetable"
)

// Segment is one scheduled ride: board Route at BoardStop, alight at
// AlightStop. Departure and Arrival are absolute minutes and may be
// nil when the underlying stop-time is legitimately absent (a route
// endpoint); reconstruction never synthesizes a missing time.
// TransferBuffer and TransferOK are nil/false on the first segment,
// which has no preceding leg to transfer from.
type Segment struct {
	Route          model.RouteID
	BoardStop      model.StopID
	AlightStop     model.StopID
	Departure      *int
	Arrival        *int
	Duration       int
	Distance       float64
	Fare           float64
	Comfort        float64
	TransferBuffer *int
	TransferOK     bool
}

// Itinerary is the materialized output of reconstruction: a
// chronological segment list plus totals. Comfort here is the mean
// across segments, a reporting metric distinct from label.Label.Comfort
// (which drives dominance and reflects only the final leg) — see
// SPEC_FULL.md §9's note on the comfort-aggregation asymmetry.
type Itinerary struct {
	Segments  []Segment
	TotalTime int
	Transfers int
	Comfort   float64
	TotalFare float64
}

// Reconstruct walks terminal's predecessor chain back to the source
// label and builds the chronological segment list plus totals. A
// terminal label that is itself the source label (no journey was
// ever taken) produces an empty-segment Itinerary; it is the caller's
// responsibility to drop those, per SPEC_FULL.md §7.
func Reconstruct(idx *timetable.Index, terminal *label.Label) (*Itinerary, error) {
	var segments []Segment
	for l := terminal; !l.IsSource(); l = l.Predecessor {
		seg, err := buildSegment(idx, l)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	annotateTransfers(idx, segments)

	return totals(segments), nil
}

func buildSegment(idx *timetable.Index, l *label.Label) (Segment, error) {
	boardPos, ok := idx.PositionInRoute(l.ViaRoute, l.BoardStop)
	if !ok {
		return Segment{}, errors.Wrapf(model.ErrIndex, "route %d does not serve board stop %d", l.ViaRoute, l.BoardStop)
	}
	alightPos, ok := idx.PositionInRoute(l.ViaRoute, l.AlightStop)
	if !ok {
		return Segment{}, errors.Wrapf(model.ErrIndex, "route %d does not serve alight stop %d", l.ViaRoute, l.AlightStop)
	}

	boardTime, ok := idx.StopTime(l.ViaRoute, boardPos)
	if !ok {
		return Segment{}, errors.Wrapf(model.ErrIndex, "route %d has no stop-time at position %d", l.ViaRoute, boardPos)
	}
	alightTime, ok := idx.StopTime(l.ViaRoute, alightPos)
	if !ok {
		return Segment{}, errors.Wrapf(model.ErrIndex, "route %d has no stop-time at position %d", l.ViaRoute, alightPos)
	}

	var departure, arrival *int
	if boardTime.Departure != nil {
		d := model.AbsMinute(*boardTime.Departure, boardTime.DayOffset)
		departure = &d
	}
	if alightTime.Arrival != nil {
		a := model.AbsMinute(*alightTime.Arrival, alightTime.DayOffset)
		arrival = &a
	}

	duration := 0
	if departure != nil && arrival != nil {
		duration = *arrival - *departure
	}

	distance := float64(abs(alightPos-boardPos)) * model.KmPerPosition
	farePerKm := idx.FarePerKm(l.ViaRoute)
	if farePerKm <= 0 {
		farePerKm = model.DefaultFarePerKm
	}

	return Segment{
		Route:      l.ViaRoute,
		BoardStop:  l.BoardStop,
		AlightStop: l.AlightStop,
		Departure:  departure,
		Arrival:    arrival,
		Duration:   duration,
		Distance:   distance,
		Fare:       distance * farePerKm,
		Comfort:    idx.ComfortOf(l.ViaRoute),
	}, nil
}

// annotateTransfers fills in the buffer between consecutive segments:
// the time between the previous segment's arrival and this one's
// departure, compared against the boarding stop's minimum transfer
// time. The first segment has nothing to transfer from.
func annotateTransfers(idx *timetable.Index, segments []Segment) {
	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		if prev.Arrival == nil || segments[i].Departure == nil {
			continue
		}
		buffer := *segments[i].Departure - *prev.Arrival
		segments[i].TransferBuffer = &buffer
		segments[i].TransferOK = buffer >= idx.MinTransfer(segments[i].BoardStop)
	}
}

func totals(segments []Segment) *Itinerary {
	it := &Itinerary{Segments: segments}
	if len(segments) == 0 {
		return it
	}

	it.Transfers = len(segments) - 1

	first, last := segments[0], segments[len(segments)-1]
	if first.Departure != nil && last.Arrival != nil {
		it.TotalTime = *last.Arrival - *first.Departure
	}

	var comfortSum float64
	for _, s := range segments {
		comfortSum += s.Comfort
		it.TotalFare += s.Fare
	}
	it.Comfort = comfortSum / float64(len(segments))

	return it
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
