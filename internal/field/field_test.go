package field

import (
	"math/rand/v2"
	"testing"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/kentwait/epidemigo/internal/contact"
	"github.com/kentwait/epidemigo/internal/grid"
	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/stretchr/testify/require"
)

func baseParams() (simparams.WorldParams, simparams.RuntimeParams) {
	wp := simparams.WorldParams{
		PopulationSize:  10,
		WorldSideLength: 100,
		MeshResolution:  5,
		StepsPerDay:     10,
		IncubationLow:   2, IncubationHigh: 6, IncubationMode: 4,
		FatalityLow: 10, FatalityHigh: 20, FatalityMode: 14,
		RecoveryLow: 8, RecoveryHigh: 16, RecoveryMode: 10,
	}
	rp := simparams.RuntimeParams{
		ContagionDelay:       1,
		ContagionPeak:        5,
		InfectionProbability: 1,
		InfectionDistance:    5,
		DistancingStrength:   0.1,
		DistancingObedience:  0.5,
	}
	return wp, rp
}

func TestStepConservesPopulation(t *testing.T) {
	wp, rp := baseParams()
	arena := agent.NewArena(wp.PopulationSize)
	arena.Reset()
	g := grid.New(wp.MeshResolution, wp.WorldSideLength)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < arena.Len(); i++ {
		ag := arena.Get(agent.AgentID(i))
		ag.Location = agent.LocField
		ag.Body.Position = [2]float64{rng.Float64() * wp.WorldSideLength, rng.Float64() * wp.WorldSideLength}
		ag.Body.Mass = 1
		ag.Obedience = 1
		ag.Mobility = 1
		g.Place(ag.ID, ag.Body.Position)
		ag.CellIndex = g.Index(ag.Body.Position)
	}
	arena.Get(0).Health = agent.Asymptomatic
	arena.Get(0).Infection = &agent.Infection{Reproductivity: 1}

	contacts := contact.NewBuffer()
	gatherings := NewGatherings()
	before := arena.CountByHealth()
	var totalBefore int
	for _, c := range before {
		totalBefore += c
	}

	_, _ = Step(rng, arena, g, contacts, gatherings, wp, rp, 1)

	after := arena.CountByHealth()
	var totalAfter int
	for _, c := range after {
		totalAfter += c
	}
	require.Equal(t, totalBefore, totalAfter)
}

func TestStepKeepsFieldAgentsInTheirCell(t *testing.T) {
	wp, rp := baseParams()
	arena := agent.NewArena(wp.PopulationSize)
	arena.Reset()
	g := grid.New(wp.MeshResolution, wp.WorldSideLength)
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < arena.Len(); i++ {
		ag := arena.Get(agent.AgentID(i))
		ag.Location = agent.LocField
		ag.Body.Mass = 1
		ag.Obedience = 1
		ag.Mobility = 1
		ag.Body.Position = [2]float64{rng.Float64() * wp.WorldSideLength, rng.Float64() * wp.WorldSideLength}
		g.Place(ag.ID, ag.Body.Position)
		ag.CellIndex = g.Index(ag.Body.Position)
	}
	contacts := contact.NewBuffer()
	gatherings := NewGatherings()
	for step := int64(1); step <= 5; step++ {
		Step(rng, arena, g, contacts, gatherings, wp, rp, step)
	}
	for i := 0; i < arena.Len(); i++ {
		ag := arena.Get(agent.AgentID(i))
		if ag.Location != agent.LocField {
			continue
		}
		require.Equal(t, g.Index(ag.Body.Position), ag.CellIndex)
		require.Contains(t, g.Cell(ag.CellIndex), ag.ID)
	}
}

func TestContagionCurvePeaksThenDecays(t *testing.T) {
	_, rp := baseParams()
	decayRate := 1.0 / (rp.ContagionPeak + 1)
	atPeak := contagionCurve(rp, rp.ContagionPeak, decayRate)
	longAfter := contagionCurve(rp, rp.ContagionPeak+30, decayRate)
	require.Greater(t, atPeak, longAfter)
}

func TestSymptomaticDeathTransitionsToCemeteryWarp(t *testing.T) {
	wp, _ := baseParams()
	arena := agent.NewArena(1)
	arena.Reset()
	ag := arena.Get(0)
	ag.Health = agent.Symptomatic
	ag.Infection = &agent.Infection{DaysSinceInfection: 100, FatalDays: 1, RecovDays: 1000}

	rng := rand.New(rand.NewPCG(5, 6))
	_, transition := advanceHealth(rng, ag, wp, 1)
	require.NotNil(t, transition)
	require.Equal(t, agent.Died, ag.Health)
}
