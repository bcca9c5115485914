package testingq

import (
	"math"
	"math/rand/v2"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/kentwait/epidemigo/internal/xrand"
)

// AcceptParams bundles the runtime parameters Accept needs each step
// (spec.md section 4.5: tst_proc, tst_dly_lim, tst_capa, tst_sens,
// tst_spec, plus the world's population size and steps-per-day).
type AcceptParams struct {
	Step             int64
	StepsPerDay      int64
	PopulationSize   int
	TestProcessDays  float64 // tst_proc
	TestDelayLimDays float64 // tst_dly_lim
	TestCapacity     float64 // tst_capa, fraction of N tested per day
	TestSensitivity  float64 // tst_sens, in [0,1]
	TestSpecificity  float64 // tst_spec, in [0,1]
}

// Counts accumulates the monotonically increasing reason and result
// histograms required by spec.md section 4.5's invariants.
type Counts struct {
	ByReason       [3]uint64 // indexed by Reason
	Positive       uint64
	Negative       uint64
	Cancelled      uint64
	TestsConducted uint64
	// Elevated lists every agent this step's positive results moved into a
	// quarantine health state, so the caller can warp them out of the field
	// and drain their own contacts into the queue (spec.md section 4.4/4.5).
	Elevated []agent.Handle
}

// Queue is the FIFO of pending Testees. At most one entry per AgentID may
// be present at any time (spec.md section 4.5 "Test uniqueness").
type Queue struct {
	entries []Testee
	queued  map[agent.AgentID]bool
}

// NewQueue returns an empty test queue.
func NewQueue() *Queue {
	return &Queue{queued: make(map[agent.AgentID]bool)}
}

// Len reports the number of testees currently queued.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Reset empties the queue, releasing every reservation. Callers are
// responsible for also clearing Testing.InQueue on affected agents if the
// arena itself isn't being reset wholesale.
func (q *Queue) Reset() {
	q.entries = q.entries[:0]
	q.queued = make(map[agent.AgentID]bool)
}

// Push enqueues a single testee. Returns false without modifying the queue
// if the agent is already queued (test uniqueness).
func (q *Queue) Push(t Testee) bool {
	if q.queued[t.Agent.ID] {
		return false
	}
	q.entries = append(q.entries, t)
	q.queued[t.Agent.ID] = true
	return true
}

// Extend pushes every testee in ts, skipping any already queued.
func (q *Queue) Extend(ts []Testee) {
	for _, t := range ts {
		q.Push(t)
	}
}

// Accept processes the queue for one step, per spec.md section 4.5:
// it pops from the front while the head is due and capacity remains,
// conducts tests for fresh, still-in-field testees, and cancels stale
// ones. Counts is mutated in place so callers can observe running
// histograms across many steps.
func (q *Queue) Accept(rng *rand.Rand, arena *agent.Arena, p AcceptParams, counts *Counts) {
	latest := p.Step - int64(p.TestProcessDays*float64(p.StepsPerDay))
	oldest := latest - int64(p.TestDelayLimDays*float64(p.StepsPerDay))

	capacity := float64(p.PopulationSize) * p.TestCapacity / float64(p.StepsPerDay)
	maxTests := xrand.FractionalRoundUp(rng, capacity)

	for len(q.entries) > 0 && maxTests > 0 {
		head := q.entries[0]
		if head.TimeStamp > latest {
			break
		}
		q.entries = q.entries[1:]
		delete(q.queued, head.Agent.ID)

		ag := arena.Resolve(head.Agent)
		fresh := head.TimeStamp > oldest
		inField := ag != nil && ag.Location == agent.LocField
		if fresh && inField {
			q.conduct(rng, ag, head, p, counts)
			maxTests--
		} else {
			q.cancel(ag, counts)
		}
	}
}

func (q *Queue) conduct(rng *rand.Rand, ag *agent.Agent, t Testee, p AcceptParams, counts *Counts) {
	var positive bool
	if ag.Infection != nil {
		positive = rng.Float64() < 1-math.Pow(1-p.TestSensitivity, ag.Infection.Reproductivity)
	} else {
		positive = rng.Float64() < 1-p.TestSpecificity
	}

	ag.Testing.Reserved = false
	ag.Testing.InQueue = false
	ag.Testing.LastTestStep = p.Step

	counts.ByReason[t.Reason]++
	counts.TestsConducted++
	if positive {
		counts.Positive++
		if notifyPositive(ag) {
			counts.Elevated = append(counts.Elevated, t.Agent)
		}
	} else {
		counts.Negative++
	}
}

// notifyPositive applies the quarantine transition described in spec.md
// section 4.5 ("may move it to QuarantineAsym/Symp next step"): a
// currently-asymptomatic or currently-symptomatic agent is moved into the
// matching quarantine state. It reports whether the agent was elevated, so
// the caller can also physically isolate it via the warp roster.
func notifyPositive(ag *agent.Agent) bool {
	switch ag.Health {
	case agent.Asymptomatic:
		ag.Health = agent.QuarantineAsym
	case agent.Symptomatic:
		ag.Health = agent.QuarantineSymp
	default:
		return false
	}
	return true
}

func (q *Queue) cancel(ag *agent.Agent, counts *Counts) {
	if ag != nil {
		ag.Testing.Reserved = false
		ag.Testing.InQueue = false
	}
	counts.Cancelled++
}
