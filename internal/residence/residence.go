// Package residence implements the three alternate agent containers named
// in spec.md section 4.3 and 4.4: the Hospital and Cemetery (unordered
// collections of owned agents) and the Warp roster (a transient container
// that interpolates agents toward a goal before handing ownership to
// their next residence).
package residence

import (
	"math/rand/v2"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/kentwait/epidemigo/internal/grid"
	"github.com/kentwait/epidemigo/internal/testingq"
)

// Mode is the kind of transport a warp-roster agent is undergoing
// (spec.md section 3: "Warp carries per-agent transport parameters
// {mode, goal}").
type Mode uint8

const (
	ModeInside Mode = iota
	ModeBack
	ModeHospital
	ModeCemetery
	ModeQuarantineInside // elevation of ModeInside when selected for isolation
)

// Param is the per-agent transport parameter carried while an agent is on
// the warp roster.
type Param struct {
	Mode    Mode
	Goal    [2]float64
	BackTo  [2]float64 // home coordinate recorded with ModeHospital; the World's recovery warp reads Agent.Home instead
	Testees []testingq.Testee
}

// Hospital is an unordered collection of hospitalized agents.
type Hospital struct {
	ids map[agent.AgentID]struct{}
}

// NewHospital returns an empty hospital roster.
func NewHospital() *Hospital {
	return &Hospital{ids: make(map[agent.AgentID]struct{})}
}

// Reset empties the hospital.
func (h *Hospital) Reset() { h.ids = make(map[agent.AgentID]struct{}) }

// Add admits id to the hospital, transferring ownership.
func (h *Hospital) Add(id agent.AgentID) { h.ids[id] = struct{}{} }

// Remove discharges id from the hospital.
func (h *Hospital) Remove(id agent.AgentID) { delete(h.ids, id) }

// Len reports the number of hospitalized agents.
func (h *Hospital) Len() int { return len(h.ids) }

// HospitalStepResult is the outcome of one hospitalized agent's tick.
type HospitalStepResult int

const (
	HospitalNone HospitalStepResult = iota
	HospitalRecovered
	HospitalDied
)

// Step runs hospital_step for every hospitalized agent (spec.md section
// 4.3): each may recover (warp Back to its home coordinate) or die (warp
// Cemetery). Agents that transition are removed from the hospital and
// handed to the warp roster by the caller, which owns cross-container
// policy; Step itself only reports per-agent outcomes.
func (h *Hospital) Step(rng *rand.Rand, arena *agent.Arena, fn func(id agent.AgentID, result HospitalStepResult)) {
	for id := range h.ids {
		ag := arena.Get(id)
		result := stepOneHospitalized(rng, ag)
		fn(id, result)
	}
}

func stepOneHospitalized(rng *rand.Rand, ag *agent.Agent) HospitalStepResult {
	if ag.Infection == nil {
		return HospitalNone
	}
	ag.Infection.DaysSinceInfection++
	switch ag.Health {
	case agent.Symptomatic, agent.QuarantineSymp:
		if ag.Infection.DaysSinceInfection >= ag.Infection.FatalDays {
			// hazard-weighted coin flip already resolved by the field/world
			// layer before hospitalization in this simplified re-architecture;
			// here the days-based clock is authoritative.
			ag.Health = agent.Died
			return HospitalDied
		}
		if ag.Infection.DaysSinceInfection >= ag.Infection.RecovDays {
			ag.Health = agent.Recovered
			return HospitalRecovered
		}
	}
	return HospitalNone
}

// Cemetery is the terminal sink for dead agents. Its only operations are
// Add and Clear (spec.md section 4.3).
type Cemetery struct {
	ids map[agent.AgentID]struct{}
}

// NewCemetery returns an empty cemetery.
func NewCemetery() *Cemetery {
	return &Cemetery{ids: make(map[agent.AgentID]struct{})}
}

// Add interns id in the cemetery.
func (c *Cemetery) Add(id agent.AgentID) { c.ids[id] = struct{}{} }

// Clear empties the cemetery.
func (c *Cemetery) Clear() { c.ids = make(map[agent.AgentID]struct{}) }

// Len reports the number of agents buried.
func (c *Cemetery) Len() int { return len(c.ids) }

// warpEntry is one agent's state while held by the Warp roster.
type warpEntry struct {
	param Param
}

// Warp is the transient container that interpolates agents toward a goal
// before transferring ownership onward (spec.md section 4.4).
type Warp struct {
	entries map[agent.AgentID]warpEntry
	// InterpSpeed is the fraction of remaining distance to Goal covered
	// per step; 1 means instantaneous arrival.
	InterpSpeed float64
}

// NewWarp returns an empty warp roster with the given per-step
// interpolation speed (fraction of remaining distance covered each tick).
func NewWarp(interpSpeed float64) *Warp {
	if interpSpeed <= 0 || interpSpeed > 1 {
		interpSpeed = 1
	}
	return &Warp{entries: make(map[agent.AgentID]warpEntry), InterpSpeed: interpSpeed}
}

// Reset empties the warp roster.
func (w *Warp) Reset() { w.entries = make(map[agent.AgentID]warpEntry) }

// Add transfers ownership of id into the warp roster with the given
// transport parameter.
func (w *Warp) Add(id agent.AgentID, param Param) {
	w.entries[id] = warpEntry{param: param}
}

// Len reports the number of agents in transit.
func (w *Warp) Len() int { return len(w.entries) }

// ArrivalResult reports where a warp agent's ownership transferred to once
// it reached its goal.
type ArrivalResult struct {
	ID       agent.AgentID
	Mode     Mode
	CellDest int // valid only for ModeBack/ModeInside/ModeQuarantineInside
	Testees  []testingq.Testee
}

// Step interpolates every in-transit agent toward its goal by
// InterpSpeed's fraction of the remaining distance, and reports every
// agent that arrived this step so the caller (the World) can transfer
// ownership to the destination container (spec.md section 4.4: field
// cell for Back/Inside, hospital for Hospital(back_to), cemetery for
// Cemetery).
func (w *Warp) Step(g *grid.Grid, arena *agent.Arena) []ArrivalResult {
	var arrivals []ArrivalResult
	for id, entry := range w.entries {
		ag := arena.Get(id)
		reached := interpolate(ag, entry.param.Goal, w.InterpSpeed)
		if !reached {
			continue
		}
		ar := ArrivalResult{ID: id, Mode: entry.param.Mode, Testees: entry.param.Testees}
		switch entry.param.Mode {
		case ModeBack, ModeInside, ModeQuarantineInside:
			ag.Location = agent.LocField
			ar.CellDest = g.Index(ag.Body.Position)
			ag.CellIndex = ar.CellDest
			g.Place(ag.ID, ag.Body.Position)
		case ModeHospital:
			ag.Location = agent.LocHospital
		case ModeCemetery:
			ag.Location = agent.LocCemetery
		}
		delete(w.entries, id)
		arrivals = append(arrivals, ar)
	}
	return arrivals
}

// interpolate moves ag's position a fraction of the way toward goal and
// reports whether it has arrived (spec.md section 4.4's "warp_update").
func interpolate(ag *agent.Agent, goal [2]float64, speed float64) bool {
	dx := goal[0] - ag.Body.Position[0]
	dy := goal[1] - ag.Body.Position[1]
	distSq := dx*dx + dy*dy
	const arriveEpsilon = 1e-6
	if distSq < arriveEpsilon || speed >= 1 {
		ag.Body.Position = goal
		ag.Body.Velocity = [2]float64{0, 0}
		return true
	}
	ag.Body.Position[0] += dx * speed
	ag.Body.Position[1] += dy * speed
	return false
}
