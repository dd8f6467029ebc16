package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptor.dev/transit/label"
	"raptor.dev/transit/model"
	"raptor.dev/transit/timetable"
)

func everyDay() [7]bool {
	return [7]bool{true, true, true, true, true, true, true}
}

func TestReconstructDirectRoute(t *testing.T) {
	b := timetable.NewBuilder()
	a, _ := b.AddStop("A", "Alpha", 30)
	bStop, _ := b.AddStop("B", "Bravo", 30)
	c, _ := b.AddStop("C", "Charlie", 30)

	r := b.AddRoute("R1", everyDay(), 7, 0.5)
	require.NoError(t, b.AddStopTime(r, a, 0, nil, model.Minute(600), 0))
	require.NoError(t, b.AddStopTime(r, bStop, 1, model.Minute(660), model.Minute(665), 0))
	require.NoError(t, b.AddStopTime(r, c, 2, model.Minute(720), nil, 0))

	idx, err := b.Build()
	require.NoError(t, err)

	source := &label.Label{Arrival: 540, BoardStop: model.NoStop, ViaRoute: model.NoRoute, AlightStop: a}
	terminal := &label.Label{
		Arrival:     720,
		Transfers:   0,
		Comfort:     7,
		Predecessor: source,
		ViaRoute:    r,
		BoardStop:   a,
		AlightStop:  c,
	}

	it, err := Reconstruct(idx, terminal)
	require.NoError(t, err)
	require.Len(t, it.Segments, 1)

	seg := it.Segments[0]
	assert.Equal(t, a, seg.BoardStop)
	assert.Equal(t, c, seg.AlightStop)
	require.NotNil(t, seg.Departure)
	require.NotNil(t, seg.Arrival)
	assert.Equal(t, 600, *seg.Departure)
	assert.Equal(t, 720, *seg.Arrival)
	assert.Equal(t, 120, seg.Duration)

	assert.Equal(t, 0, it.Transfers)
	assert.Equal(t, 120, it.TotalTime)
	assert.Equal(t, 7.0, it.Comfort)
	assert.InDelta(t, 2*model.KmPerPosition*0.5, it.TotalFare, 0.001)
}

func TestReconstructTwoSegmentsRoundTrip(t *testing.T) {
	b := timetable.NewBuilder()
	a, _ := b.AddStop("A", "Alpha", 30)
	bStop, _ := b.AddStop("B", "Bravo", 30)
	c, _ := b.AddStop("C", "Charlie", 30)

	r1 := b.AddRoute("R1", everyDay(), 5, 0.5)
	require.NoError(t, b.AddStopTime(r1, a, 0, nil, model.Minute(500), 0))
	require.NoError(t, b.AddStopTime(r1, bStop, 1, model.Minute(560), nil, 0))

	r2 := b.AddRoute("R2", everyDay(), 5, 0.5)
	require.NoError(t, b.AddStopTime(r2, bStop, 0, nil, model.Minute(600), 0))
	require.NoError(t, b.AddStopTime(r2, c, 1, model.Minute(700), nil, 0))

	idx, err := b.Build()
	require.NoError(t, err)

	source := &label.Label{Arrival: 400, BoardStop: model.NoStop, ViaRoute: model.NoRoute, AlightStop: a}
	firstLeg := &label.Label{
		Arrival:     560,
		Transfers:   0,
		Comfort:     5,
		Predecessor: source,
		ViaRoute:    r1,
		BoardStop:   a,
		AlightStop:  bStop,
	}
	terminal := &label.Label{
		Arrival:     700,
		Transfers:   1,
		Comfort:     5,
		Predecessor: firstLeg,
		ViaRoute:    r2,
		BoardStop:   bStop,
		AlightStop:  c,
	}

	it, err := Reconstruct(idx, terminal)
	require.NoError(t, err)
	require.Len(t, it.Segments, 2)

	assert.Equal(t, a, it.Segments[0].BoardStop)
	assert.Equal(t, c, it.Segments[len(it.Segments)-1].AlightStop)
	require.NotNil(t, it.Segments[len(it.Segments)-1].Arrival)
	assert.Equal(t, terminal.Arrival, *it.Segments[len(it.Segments)-1].Arrival)

	assert.Equal(t, 1, it.Transfers)
	assert.Equal(t, 200, it.TotalTime)

	buf := it.Segments[1].TransferBuffer
	require.NotNil(t, buf)
	assert.Equal(t, 40, *buf)
	assert.True(t, it.Segments[1].TransferOK)
}

func TestReconstructTransferBufferInsufficient(t *testing.T) {
	b := timetable.NewBuilder()
	a, _ := b.AddStop("A", "Alpha", 30)
	bStop, _ := b.AddStop("B", "Bravo", 30)
	c, _ := b.AddStop("C", "Charlie", 30)

	r1 := b.AddRoute("R1", everyDay(), 5, 0.5)
	require.NoError(t, b.AddStopTime(r1, a, 0, nil, model.Minute(500), 0))
	require.NoError(t, b.AddStopTime(r1, bStop, 1, model.Minute(560), nil, 0))

	r2 := b.AddRoute("R2", everyDay(), 5, 0.5)
	require.NoError(t, b.AddStopTime(r2, bStop, 0, nil, model.Minute(580), 0))
	require.NoError(t, b.AddStopTime(r2, c, 1, model.Minute(700), nil, 0))

	idx, err := b.Build()
	require.NoError(t, err)

	source := &label.Label{Arrival: 400, BoardStop: model.NoStop, ViaRoute: model.NoRoute, AlightStop: a}
	firstLeg := &label.Label{Arrival: 560, Predecessor: source, ViaRoute: r1, BoardStop: a, AlightStop: bStop}
	terminal := &label.Label{Arrival: 700, Transfers: 1, Predecessor: firstLeg, ViaRoute: r2, BoardStop: bStop, AlightStop: c}

	it, err := Reconstruct(idx, terminal)
	require.NoError(t, err)

	buf := it.Segments[1].TransferBuffer
	require.NotNil(t, buf)
	assert.Equal(t, 20, *buf)
	assert.False(t, it.Segments[1].TransferOK)
}

func TestReconstructSourceTerminalIsEmpty(t *testing.T) {
	b := timetable.NewBuilder()
	a, _ := b.AddStop("A", "Alpha", 30)
	idx, err := b.Build()
	require.NoError(t, err)

	source := &label.Label{Arrival: 540, BoardStop: model.NoStop, ViaRoute: model.NoRoute, AlightStop: a}

	it, err := Reconstruct(idx, source)
	require.NoError(t, err)
	assert.Empty(t, it.Segments)
}
