package residence

import (
	"math/rand/v2"
	"testing"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/kentwait/epidemigo/internal/grid"
	"github.com/stretchr/testify/require"
)

func TestHospitalStepRecovers(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()
	ag := arena.Get(0)
	ag.Health = agent.Symptomatic
	ag.Infection = &agent.Infection{DaysSinceInfection: 10, FatalDays: 20, RecovDays: 10}

	h := NewHospital()
	h.Add(0)
	rng := rand.New(rand.NewPCG(1, 1))

	var got HospitalStepResult
	h.Step(rng, arena, func(id agent.AgentID, result HospitalStepResult) { got = result })
	require.Equal(t, HospitalRecovered, got)
	require.Equal(t, agent.Recovered, ag.Health)
}

func TestHospitalStepDies(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()
	ag := arena.Get(0)
	ag.Health = agent.Symptomatic
	ag.Infection = &agent.Infection{DaysSinceInfection: 20, FatalDays: 10, RecovDays: 30}

	h := NewHospital()
	h.Add(0)
	rng := rand.New(rand.NewPCG(1, 1))

	var got HospitalStepResult
	h.Step(rng, arena, func(id agent.AgentID, result HospitalStepResult) { got = result })
	require.Equal(t, HospitalDied, got)
	require.Equal(t, agent.Died, ag.Health)
}

func TestWarpArrivesAndTransfersToField(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()
	ag := arena.Get(0)
	ag.Location = agent.LocWarp
	ag.Body.Position = [2]float64{0, 0}

	g := grid.New(4, 100)
	w := NewWarp(1) // instantaneous arrival
	w.Add(0, Param{Mode: ModeBack, Goal: [2]float64{50, 50}})

	arrivals := w.Step(g, arena)
	require.Len(t, arrivals, 1)
	require.Equal(t, agent.LocField, ag.Location)
	require.Equal(t, [2]float64{50, 50}, ag.Body.Position)
	require.Equal(t, 0, w.Len())

	require.Equal(t, g.Index(ag.Body.Position), ag.CellIndex)
	require.Contains(t, g.Cell(ag.CellIndex), ag.ID, "arriving agent must be reachable via the grid, per the Field invariant")
}

func TestWarpGradualInterpolationDoesNotArriveImmediately(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()
	ag := arena.Get(0)
	ag.Body.Position = [2]float64{0, 0}

	g := grid.New(4, 100)
	w := NewWarp(0.1)
	w.Add(0, Param{Mode: ModeBack, Goal: [2]float64{100, 0}})

	arrivals := w.Step(g, arena)
	require.Empty(t, arrivals)
	require.Equal(t, 1, w.Len())
	require.InDelta(t, 10.0, ag.Body.Position[0], 1e-9)
}

func TestCemeteryAddAndClear(t *testing.T) {
	c := NewCemetery()
	c.Add(1)
	c.Add(2)
	require.Equal(t, 2, c.Len())
	c.Clear()
	require.Equal(t, 0, c.Len())
}
