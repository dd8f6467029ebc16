package label

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"raptor.dev/transit/model"
)

func TestDominatesIsStrict(t *testing.T) {
	l := &Label{Arrival: 100, Transfers: 1, Comfort: 5}
	assert.False(t, l.Dominates(l), "a label must not dominate itself")

	same := &Label{Arrival: 100, Transfers: 1, Comfort: 5}
	assert.False(t, l.Dominates(same), "equal triples must not dominate each other")
	assert.False(t, same.Dominates(l))
}

func TestDominatesTransitivity(t *testing.T) {
	l1 := &Label{Arrival: 90, Transfers: 0, Comfort: 8}
	l2 := &Label{Arrival: 95, Transfers: 0, Comfort: 7}
	l3 := &Label{Arrival: 100, Transfers: 1, Comfort: 6}

	assert.True(t, l1.Dominates(l2))
	assert.True(t, l2.Dominates(l3))
	assert.True(t, l1.Dominates(l3))
}

func TestDominatesRequiresStrictImprovement(t *testing.T) {
	better := &Label{Arrival: 90, Transfers: 1, Comfort: 5}
	worseArrival := &Label{Arrival: 100, Transfers: 1, Comfort: 5}
	assert.True(t, better.Dominates(worseArrival))

	tradeoff := &Label{Arrival: 90, Transfers: 2, Comfort: 9}
	assert.False(t, better.Dominates(tradeoff), "better must not dominate a tradeoff it's worse in comfort against")
	assert.False(t, tradeoff.Dominates(better))
}

func TestStoreSeed(t *testing.T) {
	s := NewStore()
	source := s.Seed(model.StopID(0), 480)

	front := s.Frontier(0)
	if assert.Len(t, front, 1) {
		assert.Same(t, source, front[0])
		assert.True(t, front[0].IsSource())
		assert.Equal(t, 480, front[0].Arrival)
		assert.Equal(t, 0, front[0].Transfers)
		assert.Equal(t, 0.0, front[0].Comfort)
	}
}

func TestStoreInsertRejectsDominated(t *testing.T) {
	s := NewStore()
	stop := model.StopID(1)

	fast := &Label{Arrival: 600, Transfers: 0, Comfort: 3}
	require := assert.New(t)
	require.True(s.Insert(stop, fast))

	slower := &Label{Arrival: 650, Transfers: 0, Comfort: 2}
	require.False(s.Insert(stop, slower), "slower-and-less-comfortable must be rejected")
	require.Len(s.Frontier(stop), 1)
}

func TestStoreInsertRemovesDominated(t *testing.T) {
	s := NewStore()
	stop := model.StopID(1)

	first := &Label{Arrival: 650, Transfers: 1, Comfort: 2}
	s.Insert(stop, first)

	better := &Label{Arrival: 600, Transfers: 0, Comfort: 5}
	ok := s.Insert(stop, better)
	assert.True(t, ok)

	front := s.Frontier(stop)
	if assert.Len(t, front, 1) {
		assert.Same(t, better, front[0])
	}
}

func TestStoreFrontierIsAntichain(t *testing.T) {
	s := NewStore()
	stop := model.StopID(2)

	candidates := []*Label{
		{Arrival: 600, Transfers: 0, Comfort: 3},
		{Arrival: 650, Transfers: 0, Comfort: 9},
		{Arrival: 620, Transfers: 1, Comfort: 9},
		{Arrival: 605, Transfers: 0, Comfort: 4},
	}
	for _, c := range candidates {
		s.Insert(stop, c)
	}

	front := s.Frontier(stop)
	for i, li := range front {
		for j, lj := range front {
			if i == j {
				continue
			}
			assert.False(t, li.Dominates(lj), "frontier must be an antichain")
		}
	}
}

func TestStorePreservesPareto(t *testing.T) {
	// Mirrors SPEC_FULL.md scenario 5: fast-but-uncomfortable vs
	// slow-but-comfortable, neither dominates the other.
	s := NewStore()
	stop := model.StopID(3)

	fast := &Label{Arrival: 650, Transfers: 0, Comfort: 3}
	slow := &Label{Arrival: 700, Transfers: 0, Comfort: 9}

	assert.True(t, s.Insert(stop, fast))
	assert.True(t, s.Insert(stop, slow))

	assert.Len(t, s.Frontier(stop), 2)
}
