package grid

import (
	"testing"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/stretchr/testify/require"
)

func TestIndexClampsToBounds(t *testing.T) {
	g := New(4, 100)
	require.Equal(t, 0, g.Index([2]float64{-5, -5}))
	require.Equal(t, g.NumCells()-1, g.Index([2]float64{1000, 1000}))
}

func TestPlaceAndRemove(t *testing.T) {
	g := New(4, 100)
	idx := g.Index([2]float64{10, 10})
	g.Place(agent.AgentID(7), [2]float64{10, 10})
	require.Contains(t, g.Cell(idx), agent.AgentID(7))
	require.True(t, g.Remove(idx, agent.AgentID(7)))
	require.Empty(t, g.Cell(idx))
}

func TestNeighborhoodCoversThreeByThree(t *testing.T) {
	g := New(3, 90)
	// place one agent in every cell of a 3x3 grid
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pos := [2]float64{float64(x)*30 + 1, float64(y)*30 + 1}
			g.Place(agent.AgentID(y*3+x), pos)
		}
	}
	center := 1*3 + 1 // middle cell
	seen := map[agent.AgentID]bool{}
	g.Neighborhood(center, func(id agent.AgentID) { seen[id] = true })
	require.Len(t, seen, 9)
}

func TestCornerNeighborhoodSmaller(t *testing.T) {
	g := New(3, 90)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pos := [2]float64{float64(x)*30 + 1, float64(y)*30 + 1}
			g.Place(agent.AgentID(y*3+x), pos)
		}
	}
	seen := map[agent.AgentID]bool{}
	g.Neighborhood(0, func(id agent.AgentID) { seen[id] = true })
	require.Len(t, seen, 4)
}

func TestCopyIsIndependent(t *testing.T) {
	g := New(2, 10)
	g.Place(agent.AgentID(1), [2]float64{1, 1})
	cp := g.Copy()
	cp.Place(agent.AgentID(2), [2]float64{1, 1})
	require.Len(t, g.Cell(g.Index([2]float64{1, 1})), 1)
	require.Len(t, cp.Cell(cp.Index([2]float64{1, 1})), 2)
}
