// Package world implements the World type from spec.md section 4.6: it
// owns the field, hospital, cemetery, warp, contacts, test queue, and
// statistics, and exposes a single-threaded step operation plus reset,
// export, and debug. The {Stopped, Started, Ended} state machine itself
// lives one layer up, in internal/supervisor, which is the only caller
// permitted to invoke these methods (spec.md section 5).
package world

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/kentwait/epidemigo/internal/contact"
	"github.com/kentwait/epidemigo/internal/field"
	"github.com/kentwait/epidemigo/internal/grid"
	"github.com/kentwait/epidemigo/internal/residence"
	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/kentwait/epidemigo/internal/stats"
	"github.com/kentwait/epidemigo/internal/store"
	"github.com/kentwait/epidemigo/internal/telemetry"
	"github.com/kentwait/epidemigo/internal/testingq"
	"github.com/kentwait/epidemigo/internal/xrand"
)

// obedienceMobilityRho is the Gaussian-copula correlation between an
// agent's distancing-obedience factor and its mobility factor: agents who
// obey distancing more strongly are modeled as moving around somewhat
// less, so the two are drawn as a single negatively-correlated pair rather
// than independently (spec.md section 3's distancing-obedience and
// mobility-frequency runtime parameters).
const obedienceMobilityRho = -0.4

// World owns every container and the statistics recorder for one
// simulation run.
type World struct {
	id string
	wp simparams.WorldParams
	rp simparams.RuntimeParams

	arena      *agent.Arena
	grid       *grid.Grid
	hospital   *residence.Hospital
	cemetery   *residence.Cemetery
	warp       *residence.Warp
	contacts   *contact.Buffer
	queue      *testingq.Queue
	gatherings *field.Gatherings
	recorder   *stats.Recorder

	rng *rand.Rand

	step   int64
	stopAt int64

	// quarantineGoal is the fixed coordinate a positive-tested agent is
	// warped toward on elevation into ModeQuarantineInside (spec.md section
	// 4.4/4.5); a corner of the field keeps it well clear of the general
	// population without requiring a dedicated quarantine container.
	quarantineGoal [2]float64
}

// New allocates a World for the given immutable world parameters and
// initial runtime parameters, seeded with seed. The world starts in a
// pre-Reset state: callers must call Reset before the first Step.
func New(wp simparams.WorldParams, rp simparams.RuntimeParams, seed uint64) *World {
	return &World{
		wp:             wp,
		rp:             rp,
		arena:          agent.NewArena(wp.PopulationSize),
		grid:           grid.New(wp.MeshResolution, wp.WorldSideLength),
		hospital:       residence.NewHospital(),
		cemetery:       residence.NewCemetery(),
		warp:           residence.NewWarp(0.25),
		contacts:       contact.NewBuffer(),
		queue:          testingq.NewQueue(),
		gatherings:     field.NewGatherings(),
		recorder:       stats.NewRecorder(),
		rng:            rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		quarantineGoal: [2]float64{wp.WorldSideLength * 0.05, wp.WorldSideLength * 0.05},
	}
}

// SetID attaches a world id used only to label emitted metrics; it has no
// bearing on simulation semantics.
func (w *World) SetID(id string) { w.id = id }

// RuntimeParams returns a copy of the current mutable runtime parameters,
// for the scenario DSL's read view (spec.md section 9).
func (w *World) RuntimeParams() simparams.RuntimeParams { return w.rp }

// SetRuntimeParams applies an assignment from the scenario DSL between
// steps (spec.md section 9).
func (w *World) SetRuntimeParams(rp simparams.RuntimeParams) { w.rp = rp }

// StepCount returns w.step, the authoritative tick counter (spec.md section 3:
// "Time stamp is wall-clock and advisory; step is authoritative").
func (w *World) StepCount() int64 { return w.step }

// Reset reinitializes every container from the world parameters and seeds
// InitialInfected Asymptomatic agents, returning the world to a
// pre-simulation, Stopped-ready state (spec.md section 4.6).
func (w *World) Reset() {
	w.arena.Reset()
	w.grid.Reset()
	w.hospital.Reset()
	w.cemetery.Clear()
	w.warp.Reset()
	w.contacts.Reset()
	w.queue.Reset()
	w.gatherings.Reset()
	w.recorder.Reset()
	w.step = 0
	w.rp.Step = 0

	side := w.wp.WorldSideLength
	for i := 0; i < w.arena.Len(); i++ {
		ag := w.arena.Get(agent.AgentID(i))
		ag.Health = agent.Susceptible
		ag.Location = agent.LocField
		ag.Body = agent.Body{
			Position: [2]float64{w.rng.Float64() * side, w.rng.Float64() * side},
			Mass:     1,
		}
		ag.CellIndex = w.grid.Index(ag.Body.Position)
		w.grid.Place(ag.ID, ag.Body.Position)

		obed, mob := xrand.CorrelatedPair(w.rng, obedienceMobilityRho)
		ag.Obedience = obed * 2
		ag.Mobility = mob * 2
	}
	for i := 0; i < w.wp.InitialInfected && i < w.arena.Len(); i++ {
		ag := w.arena.Get(agent.AgentID(i))
		ag.Health = agent.Asymptomatic
		ag.Infection = &agent.Infection{
			Reproductivity:     1,
			DaysSinceInfection: 0,
			DecayRate:          field.SampleDecayRate(w.rng, w.rp),
		}
	}
	w.recordCensus()
}

// Start sets the step at which the run should be considered complete
// (spec.md section 4.7's Start(stop_at) transition; the state-machine
// guard itself lives in internal/supervisor).
func (w *World) Start(stopAt int64) {
	w.stopAt = stopAt
}

// Step advances the simulation by one tick: field physics and infection
// draws, warp transport and arrivals, hospital processes, and the testing
// pipeline (contact drain followed by queue admission). It returns true
// once the run has ended, i.e. step >= stop_at or the infected count has
// reached zero (spec.md section 4.6).
func (w *World) Step() (ended bool) {
	w.step++
	w.rp.Step = w.step

	deltas, transitions := field.Step(w.rng, w.arena, w.grid, w.contacts, w.gatherings, w.wp, w.rp, w.step)
	_ = deltas // folded into the census below via arena.CountByHealth

	for _, t := range transitions {
		w.warp.Add(t.ID, t.Param)
	}

	arrivals := w.warp.Step(w.grid, w.arena)
	for _, ar := range arrivals {
		switch ar.Mode {
		case residence.ModeBack, residence.ModeInside:
			// re-placed into the field grid by Warp.Step; nothing more to do
		case residence.ModeQuarantineInside:
			w.queue.Extend(ar.Testees)
		case residence.ModeHospital:
			w.hospital.Add(ar.ID)
		case residence.ModeCemetery:
			w.cemetery.Add(ar.ID)
		}
	}

	w.hospital.Step(w.rng, w.arena, func(id agent.AgentID, result residence.HospitalStepResult) {
		switch result {
		case residence.HospitalRecovered:
			w.hospital.Remove(id)
			ag := w.arena.Get(id)
			ag.Location = agent.LocWarp
			w.warp.Add(id, residence.Param{Mode: residence.ModeBack, Goal: ag.Home})
		case residence.HospitalDied:
			w.hospital.Remove(id)
			ag := w.arena.Get(id)
			ag.Location = agent.LocWarp
			w.warp.Add(id, residence.Param{Mode: residence.ModeCemetery, Goal: ag.Home})
		}
	})

	testees := w.contacts.DrainTestees(w.arena, w.step, w.wp.StepsPerDay, w.rp.TestIntervalSteps(w.wp.StepsPerDay))
	w.queue.Extend(testees)

	var counts testingq.Counts
	w.queue.Accept(w.rng, w.arena, testingq.AcceptParams{
		Step:             w.step,
		StepsPerDay:      w.wp.StepsPerDay,
		PopulationSize:   w.wp.PopulationSize,
		TestProcessDays:  w.rp.TestProcess,
		TestDelayLimDays: w.rp.TestDelayLimit,
		TestCapacity:     w.rp.TestCapacityFraction,
		TestSensitivity:  w.rp.TestSensitivity,
		TestSpecificity:  w.rp.TestSpecificity,
	}, &counts)
	w.applyTestResults(&counts)
	w.elevateToQuarantine(counts.Elevated)

	census := w.recordCensus()

	ended = (w.stopAt > 0 && w.step >= w.stopAt) || census.InfectedCount() == 0
	return ended
}

// applyTestResults folds one step's test histograms into the recorder and
// emits the matching test-count metrics. The health change of a positive
// result has already been made by testingq's Accept; the physical move is
// elevateToQuarantine's.
func (w *World) applyTestResults(counts *testingq.Counts) {
	w.recorder.TestsByReason[0] += counts.ByReason[0]
	w.recorder.TestsByReason[1] += counts.ByReason[1]
	w.recorder.TestsByReason[2] += counts.ByReason[2]
	w.recorder.TestsPositive += counts.Positive
	w.recorder.TestsNegative += counts.Negative
	w.recorder.TestsCancelled += counts.Cancelled

	if counts.Positive > 0 {
		telemetry.TestsConductedTotal.WithLabelValues(w.id, "positive").Add(float64(counts.Positive))
	}
	if counts.Negative > 0 {
		telemetry.TestsConductedTotal.WithLabelValues(w.id, "negative").Add(float64(counts.Negative))
	}
	if counts.Cancelled > 0 {
		telemetry.TestsConductedTotal.WithLabelValues(w.id, "cancelled").Add(float64(counts.Cancelled))
	}
}

// elevateToQuarantine physically isolates every agent applyTestResults just
// moved into a quarantine health state: it pulls them out of the field
// grid and onto the warp roster bound for quarantineGoal under
// ModeQuarantineInside, draining that agent's own recent contacts into the
// test queue as suspected-exposure testees (spec.md section 4.4: "the warp
// also drains a list of contact-testees into the test queue").
func (w *World) elevateToQuarantine(elevated []agent.Handle) {
	for _, h := range elevated {
		ag := w.arena.Resolve(h)
		if ag == nil || ag.Location != agent.LocField {
			continue
		}
		w.grid.Remove(ag.CellIndex, ag.ID)
		ag.CellIndex = -1
		ag.Location = agent.LocWarp

		testees := w.contacts.DrainOwner(w.arena, ag.ID, w.step, w.wp.StepsPerDay, w.rp.TestIntervalSteps(w.wp.StepsPerDay))
		w.warp.Add(ag.ID, residence.Param{
			Mode:    residence.ModeQuarantineInside,
			Goal:    w.quarantineGoal,
			Testees: testees,
		})
	}
}

func (w *World) recordCensus() stats.Census {
	counts := w.arena.CountByHealth()
	c := stats.FromCounts(w.step, counts)
	w.recorder.Record(c)

	telemetry.AgentsByHealth.WithLabelValues(w.id, "susceptible").Set(float64(c.Susceptible))
	telemetry.AgentsByHealth.WithLabelValues(w.id, "asymptomatic").Set(float64(c.Asymptomatic))
	telemetry.AgentsByHealth.WithLabelValues(w.id, "symptomatic").Set(float64(c.Symptomatic))
	telemetry.AgentsByHealth.WithLabelValues(w.id, "recovered").Set(float64(c.Recovered))
	telemetry.AgentsByHealth.WithLabelValues(w.id, "died").Set(float64(c.Died))
	telemetry.AgentsByHealth.WithLabelValues(w.id, "quarantine_asym").Set(float64(c.QuarantineAsym))
	telemetry.AgentsByHealth.WithLabelValues(w.id, "quarantine_symp").Set(float64(c.QuarantineSymp))

	return c
}

// Export serializes the recorded statistics to path, returning
// FileExportFailed-shaped errors on I/O failure (spec.md section 4.7).
// A ".csv" extension selects the comma-delimited writer; anything else
// is treated as a SQLite database path.
func (w *World) Export(path string) error {
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		err = store.ExportCensusesCSV(path, w.recorder.Censuses)
	} else {
		err = store.ExportCensuses(path, w.recorder.Censuses)
	}
	if err != nil {
		return errors.Wrap(err, "export failed")
	}
	return nil
}

// Delete releases the world's resources. In this arena-based
// re-architecture there is nothing to explicitly free beyond letting the
// World be garbage collected; Delete exists so the supervisor has a
// single, explicit teardown hook to call before it exits its loop.
func (w *World) Delete() {}

// Debug returns a human-readable snapshot of the latest census, for the
// supervisor's Debug request (spec.md section 4.7).
func (w *World) Debug() string {
	c, ok := w.recorder.Last()
	if !ok {
		return "world: no census recorded yet"
	}
	return debugString(w.step, c)
}

func debugString(step int64, c stats.Census) string {
	return "step=" + strconv.FormatInt(step, 10) +
		" S=" + strconv.Itoa(int(c.Susceptible)) +
		" A=" + strconv.Itoa(int(c.Asymptomatic)) +
		" Sym=" + strconv.Itoa(int(c.Symptomatic)) +
		" R=" + strconv.Itoa(int(c.Recovered)) +
		" D=" + strconv.Itoa(int(c.Died)) +
		" QA=" + strconv.Itoa(int(c.QuarantineAsym)) +
		" QS=" + strconv.Itoa(int(c.QuarantineSymp))
}
