// Package field implements the per-step physics and infection dynamics
// described in spec.md section 4.1 and 4.2: force accumulation over a
// 3x3 cell neighborhood, symplectic motion integration, the infection
// draw, contact recording, and the hand-off of agents whose update
// requests a location transition to the warp roster.
package field

import (
	"math"
	"math/rand/v2"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/kentwait/epidemigo/internal/contact"
	"github.com/kentwait/epidemigo/internal/grid"
	"github.com/kentwait/epidemigo/internal/residence"
	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/kentwait/epidemigo/internal/xrand"
)

// Friction damps velocity every tick so the symplectic integrator settles
// rather than accumulating unbounded drift.
const Friction = 0.85

// RandomDriftStrength scales the random-walk force contribution.
const RandomDriftStrength = 0.15

// Transition is emitted when an agent's update requests hand-off to the
// warp roster (spec.md section 4.2 step (e)).
type Transition struct {
	ID    agent.AgentID
	Param residence.Param
}

// StatDelta reports health-state transitions for the caller to fold into
// the running census (spec.md section 4.1: "returns any health-state
// delta so the caller can update statistics").
type StatDelta struct {
	From, To agent.Health
	Changed  bool
}

// Step runs one field tick over every agent owned by g, per spec.md
// section 4.2: force accumulation, integration, re-bucketing, infection
// draws with contact recording, and transition emission. Returns every
// StatDelta produced and every Transition requesting warp hand-off.
func Step(
	rng *rand.Rand,
	arena *agent.Arena,
	g *grid.Grid,
	contacts *contact.Buffer,
	gatherings *Gatherings,
	wp simparams.WorldParams,
	rp simparams.RuntimeParams,
	step int64,
) ([]StatDelta, []Transition) {
	var deltas []StatDelta
	var transitions []Transition

	gatherings.spawn(rng, wp, rp)

	numCells := g.NumCells()
	for cellIdx := 0; cellIdx < numCells; cellIdx++ {
		// snapshot: agents may move cells mid-loop as neighbor cells are
		// processed, so iterate a copy of the current cell's membership.
		members := append([]agent.AgentID(nil), g.Cell(cellIdx)...)
		for _, id := range members {
			ag := arena.Get(id)
			if ag.Location != agent.LocField {
				continue // already transitioned out earlier this step
			}
			accumulateForce(rng, ag, arena, g, cellIdx, gatherings, rp)
		}
	}

	gatherings.advance()

	for cellIdx := 0; cellIdx < numCells; cellIdx++ {
		members := append([]agent.AgentID(nil), g.Cell(cellIdx)...)
		for _, id := range members {
			ag := arena.Get(id)
			if ag.Location != agent.LocField {
				continue
			}
			integrate(ag, wp)
			rebucket(g, ag, cellIdx)
		}
	}

	for cellIdx := 0; cellIdx < numCells; cellIdx++ {
		drawInfections(rng, arena, g, contacts, cellIdx, rp, step)
	}

	for i := 0; i < arena.Len(); i++ {
		ag := arena.Get(agent.AgentID(i))
		if ag.Location != agent.LocField {
			continue
		}
		delta, transition := advanceHealth(rng, ag, wp, step)
		if delta.Changed {
			deltas = append(deltas, delta)
		}
		if transition != nil {
			g.Remove(ag.CellIndex, ag.ID)
			ag.CellIndex = -1
			ag.Location = agent.LocWarp
			transitions = append(transitions, Transition{ID: ag.ID, Param: *transition})
		}
	}

	return deltas, transitions
}

// accumulateForce sums distancing, gathering attraction, and random drift
// contributions from the 3x3 neighborhood (spec.md section 4.2 step (a)).
// Gathering attraction comes from the discrete events gatherings tracks,
// not from nearby agents directly (original_source/src/gathering.rs).
func accumulateForce(rng *rand.Rand, ag *agent.Agent, arena *agent.Arena, g *grid.Grid, cellIdx int, gatherings *Gatherings, rp simparams.RuntimeParams) {
	ag.Body.Force = [2]float64{0, 0}
	g.Neighborhood(cellIdx, func(otherID agent.AgentID) {
		if otherID == ag.ID {
			return
		}
		other := arena.Get(otherID)
		dx := ag.Body.Position[0] - other.Body.Position[0]
		dy := ag.Body.Position[1] - other.Body.Position[1]
		distSq := dx*dx + dy*dy
		if distSq < 1e-9 {
			return
		}
		dist := sqrt(distSq)
		if dist < rp.InfectionDistance*3 {
			// distancing: repel, scaled by configured obedience and this
			// agent's own correlated obedience factor (mean ~1 population-wide)
			strength := rp.DistancingStrength * rp.DistancingObedience * ag.Obedience / distSq
			ag.Body.Force[0] += (dx / dist) * strength
			ag.Body.Force[1] += (dy / dist) * strength
		}
	})

	gatherForce := gatherings.forceOn(ag.Body.Position)
	ag.Body.Force[0] += gatherForce[0]
	ag.Body.Force[1] += gatherForce[1]

	// random drift: configured mobility frequency and this agent's own
	// correlated mobility factor (mean ~1 population-wide) scale it
	driftScale := RandomDriftStrength * (1 + rp.MobilityFrequency) * ag.Mobility
	ag.Body.Force[0] += (rng.Float64()*2 - 1) * driftScale
	ag.Body.Force[1] += (rng.Float64()*2 - 1) * driftScale
}

func integrate(ag *agent.Agent, wp simparams.WorldParams) {
	mass := ag.Body.Mass
	if mass <= 0 {
		mass = 1
	}
	ag.Body.Velocity[0] = (ag.Body.Velocity[0] + ag.Body.Force[0]/mass) * Friction
	ag.Body.Velocity[1] = (ag.Body.Velocity[1] + ag.Body.Force[1]/mass) * Friction
	ag.Body.Position[0] += ag.Body.Velocity[0]
	ag.Body.Position[1] += ag.Body.Velocity[1]

	if ag.Body.Position[0] < 0 {
		ag.Body.Position[0] = 0
		ag.Body.Velocity[0] = 0
	}
	if ag.Body.Position[0] > wp.WorldSideLength {
		ag.Body.Position[0] = wp.WorldSideLength
		ag.Body.Velocity[0] = 0
	}
	if ag.Body.Position[1] < 0 {
		ag.Body.Position[1] = 0
		ag.Body.Velocity[1] = 0
	}
	if ag.Body.Position[1] > wp.WorldSideLength {
		ag.Body.Position[1] = wp.WorldSideLength
		ag.Body.Velocity[1] = 0
	}
}

// rebucket moves ag to the cell matching its new position if that cell
// changed (spec.md section 4.2 step (c)).
func rebucket(g *grid.Grid, ag *agent.Agent, oldCellIdx int) {
	newIdx := g.Index(ag.Body.Position)
	if newIdx == oldCellIdx {
		return
	}
	g.Remove(oldCellIdx, ag.ID)
	g.Place(ag.ID, ag.Body.Position)
	ag.CellIndex = newIdx
}

// drawInfections performs the infection draw for every (infectious,
// susceptible) neighbor pair within range in cellIdx's 3x3 block, and
// records a contact entry on both sides on success (spec.md section 4.2
// step (d)).
func drawInfections(rng *rand.Rand, arena *agent.Arena, g *grid.Grid, contacts *contact.Buffer, cellIdx int, rp simparams.RuntimeParams, step int64) {
	cell := g.Cell(cellIdx)
	for _, id := range cell {
		ag := arena.Get(id)
		if ag.Health != agent.Susceptible {
			continue
		}
		infectedBy := agent.AgentID(0)
		infected := false
		g.Neighborhood(cellIdx, func(otherID agent.AgentID) {
			if infected || otherID == id {
				return
			}
			other := arena.Get(otherID)
			if !other.IsInfectious() {
				return
			}
			dx := ag.Body.Position[0] - other.Body.Position[0]
			dy := ag.Body.Position[1] - other.Body.Position[1]
			dist := sqrt(dx*dx + dy*dy)
			if dist >= rp.InfectionDistance {
				return
			}
			prob := rp.InfectionProbability * contagionCurve(rp, other.Infection.DaysSinceInfection, other.Infection.DecayRate)
			if rng.Float64() < prob {
				infected = true
				infectedBy = otherID
				contacts.Append(arena.Handle(id), arena.Handle(otherID), step)
				contacts.Append(arena.Handle(otherID), arena.Handle(id), step)
			}
		})
		if infected {
			ag.Health = agent.Asymptomatic
			ag.Infection = &agent.Infection{
				Variant:            arena.Get(infectedBy).Infection.Variant,
				Reproductivity:     arena.Get(infectedBy).Infection.Reproductivity,
				DaysSinceInfection: 0,
				DecayRate:          SampleDecayRate(rng, rp),
			}
		}
	}
}

// SampleDecayRate draws this infection's own post-peak contagion decay
// rate, exponentially distributed around the population mean
// 1/(contag_peak+1) (spec.md section 4.1's f()), so individual cases decay
// at slightly different rates instead of following one fixed curve.
func SampleDecayRate(rng *rand.Rand, rp simparams.RuntimeParams) float64 {
	meanRate := 1.0 / (rp.ContagionPeak + 1)
	if meanRate <= 0 {
		return 0
	}
	return xrand.ExponentialTail(rng, 1/meanRate)
}

// contagionCurve implements f(d, contag_delay, contag_peak,
// days_since_infection): a ramp over contag_delay days, a peak at
// contag_peak, and an exponential decay afterward at the infection's own
// decayRate (spec.md section 4.1).
func contagionCurve(rp simparams.RuntimeParams, daysSinceInfection, decayRate float64) float64 {
	d := daysSinceInfection
	switch {
	case d < rp.ContagionDelay:
		if rp.ContagionDelay == 0 {
			return 1
		}
		return d / rp.ContagionDelay
	case d < rp.ContagionPeak:
		return 1
	default:
		return clamp01(math.Exp(-decayRate * (d - rp.ContagionPeak)))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// advanceHealth runs the per-agent health-state machine (spec.md section
// 4.1): incubation, symptomatic fatality/recovery race, and any resulting
// location transition request.
func advanceHealth(rng *rand.Rand, ag *agent.Agent, wp simparams.WorldParams, step int64) (StatDelta, *residence.Param) {
	if ag.Infection == nil {
		return StatDelta{}, nil
	}
	ag.Infection.DaysSinceInfection++

	switch ag.Health {
	case agent.Asymptomatic:
		if ag.Infection.IncubationDays == 0 {
			ag.Infection.IncubationDays = xrand.Triangular(rng, wp.IncubationLow, wp.IncubationHigh, wp.IncubationMode)
		}
		if ag.Infection.DaysSinceInfection >= ag.Infection.IncubationDays {
			from := ag.Health
			ag.Health = agent.Symptomatic
			// the agent leaves the field here, so its fatality/recovery
			// clocks are drawn now for the hospital to run against
			ag.Infection.FatalDays = xrand.Triangular(rng, wp.FatalityLow, wp.FatalityHigh, wp.FatalityMode)
			ag.Infection.RecovDays = xrand.Triangular(rng, wp.RecoveryLow, wp.RecoveryHigh, wp.RecoveryMode)
			ag.Home = ag.Body.Position
			param := residence.Param{Mode: residence.ModeHospital, Goal: ag.Body.Position, BackTo: ag.Home}
			return StatDelta{From: from, To: agent.Symptomatic, Changed: true}, &param
		}
	case agent.Symptomatic:
		if ag.Infection.FatalDays == 0 {
			ag.Infection.FatalDays = xrand.Triangular(rng, wp.FatalityLow, wp.FatalityHigh, wp.FatalityMode)
		}
		if ag.Infection.RecovDays == 0 {
			ag.Infection.RecovDays = xrand.Triangular(rng, wp.RecoveryLow, wp.RecoveryHigh, wp.RecoveryMode)
		}
		if ag.Infection.DaysSinceInfection >= ag.Infection.FatalDays {
			from := ag.Health
			ag.Health = agent.Died
			param := residence.Param{Mode: residence.ModeCemetery, Goal: ag.Body.Position}
			return StatDelta{From: from, To: agent.Died, Changed: true}, &param
		}
		if ag.Infection.DaysSinceInfection >= ag.Infection.RecovDays {
			from := ag.Health
			ag.Health = agent.Recovered
			return StatDelta{From: from, To: agent.Recovered, Changed: true}, nil
		}
	case agent.QuarantineAsym:
		if ag.Infection.IncubationDays == 0 {
			ag.Infection.IncubationDays = xrand.Triangular(rng, wp.IncubationLow, wp.IncubationHigh, wp.IncubationMode)
		}
		if ag.Infection.DaysSinceInfection >= ag.Infection.IncubationDays {
			from := ag.Health
			ag.Health = agent.QuarantineSymp
			return StatDelta{From: from, To: agent.QuarantineSymp, Changed: true}, nil
		}
	case agent.QuarantineSymp:
		if ag.Infection.FatalDays == 0 {
			ag.Infection.FatalDays = xrand.Triangular(rng, wp.FatalityLow, wp.FatalityHigh, wp.FatalityMode)
		}
		if ag.Infection.RecovDays == 0 {
			ag.Infection.RecovDays = xrand.Triangular(rng, wp.RecoveryLow, wp.RecoveryHigh, wp.RecoveryMode)
		}
		if ag.Infection.DaysSinceInfection >= ag.Infection.FatalDays {
			from := ag.Health
			ag.Health = agent.Died
			param := residence.Param{Mode: residence.ModeCemetery, Goal: ag.Body.Position}
			return StatDelta{From: from, To: agent.Died, Changed: true}, &param
		}
		if ag.Infection.DaysSinceInfection >= ag.Infection.RecovDays {
			from := ag.Health
			ag.Health = agent.Recovered
			return StatDelta{From: from, To: agent.Recovered, Changed: true}, nil
		}
	}
	return StatDelta{}, nil
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
