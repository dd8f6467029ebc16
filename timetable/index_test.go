package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptor.dev/transit/model"
)

func everyDay() [7]bool {
	return [7]bool{true, true, true, true, true, true, true}
}

// buildLinear builds a single-route A->B->C index, mirroring
// SPEC_FULL.md §8 scenario 1.
func buildLinear(t *testing.T) (*Index, model.StopID, model.StopID, model.StopID, model.RouteID) {
	t.Helper()
	b := NewBuilder()

	a, err := b.AddStop("A", "Alpha", 30)
	require.NoError(t, err)
	c, err := b.AddStop("B", "Bravo", 30)
	require.NoError(t, err)
	e, err := b.AddStop("C", "Charlie", 30)
	require.NoError(t, err)

	r := b.AddRoute("R1", everyDay(), 5, 0.5)

	require.NoError(t, b.AddStopTime(r, a, 0, nil, model.Minute(600), 0))
	require.NoError(t, b.AddStopTime(r, c, 1, model.Minute(660), model.Minute(665), 0))
	require.NoError(t, b.AddStopTime(r, e, 2, model.Minute(720), nil, 0))

	idx, err := b.Build()
	require.NoError(t, err)

	return idx, a, c, e, r
}

func TestIndexAccessors(t *testing.T) {
	idx, a, bStop, c, r := buildLinear(t)

	pattern, err := idx.RoutePattern(r)
	require.NoError(t, err)
	assert.Equal(t, []model.StopID{a, bStop, c}, pattern)

	pos, ok := idx.PositionInRoute(r, bStop)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = idx.PositionInRoute(r, model.StopID(99))
	assert.False(t, ok)

	st, ok := idx.StopTime(r, 1)
	require.True(t, ok)
	assert.Equal(t, 660, *st.Arrival)
	assert.Equal(t, 665, *st.Departure)

	routesAtA := idx.RoutesAt(a)
	require.Len(t, routesAtA, 1)
	assert.Equal(t, r, routesAtA[0].Route)
	assert.Equal(t, 0, routesAtA[0].Position)

	assert.Equal(t, everyDay(), idx.RunningDays(r))
	assert.Equal(t, 30, idx.MinTransfer(a))
	assert.Equal(t, 5.0, idx.ComfortOf(r))
	assert.Equal(t, 0.5, idx.FarePerKm(r))

	id, found := idx.StopByCode("B")
	require.True(t, found)
	assert.Equal(t, bStop, id)

	_, found = idx.StopByCode("nope")
	assert.False(t, found)
}

func TestBuilderRejectsDuplicateStopCode(t *testing.T) {
	b := NewBuilder()
	_, err := b.AddStop("A", "Alpha", 30)
	require.NoError(t, err)
	_, err = b.AddStop("A", "Alpha Again", 30)
	assert.ErrorIs(t, err, model.ErrIndex)
}

func TestBuilderRejectsOutOfOrderStopTime(t *testing.T) {
	b := NewBuilder()
	a, err := b.AddStop("A", "Alpha", 30)
	require.NoError(t, err)
	bStop, err := b.AddStop("B", "Bravo", 30)
	require.NoError(t, err)

	r := b.AddRoute("R1", everyDay(), 0, 0.5)
	err = b.AddStopTime(r, bStop, 1, model.Minute(10), nil, 0)
	assert.ErrorIs(t, err, model.ErrIndex)

	require.NoError(t, b.AddStopTime(r, a, 0, nil, model.Minute(5), 0))
}

func TestBuilderRejectsRepeatedStopInPattern(t *testing.T) {
	b := NewBuilder()
	a, err := b.AddStop("A", "Alpha", 30)
	require.NoError(t, err)

	r := b.AddRoute("R1", everyDay(), 0, 0.5)
	require.NoError(t, b.AddStopTime(r, a, 0, nil, model.Minute(5), 0))
	require.NoError(t, b.AddStopTime(r, a, 1, model.Minute(10), nil, 0))

	_, err = b.Build()
	assert.ErrorIs(t, err, model.ErrIndex)
}

func TestBuilderRejectsDecreasingTimes(t *testing.T) {
	b := NewBuilder()
	a, err := b.AddStop("A", "Alpha", 30)
	require.NoError(t, err)
	bStop, err := b.AddStop("B", "Bravo", 30)
	require.NoError(t, err)

	r := b.AddRoute("R1", everyDay(), 0, 0.5)
	require.NoError(t, b.AddStopTime(r, a, 0, nil, model.Minute(600), 0))
	require.NoError(t, b.AddStopTime(r, bStop, 1, model.Minute(500), nil, 0))

	_, err = b.Build()
	assert.ErrorIs(t, err, model.ErrIndex)
}
