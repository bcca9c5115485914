// Package stats implements the per-step health-state census and
// infection/histogram records described in spec.md section 4 ("Owns:
// field, hospital, cemetery, warp, contacts, test queue, statistics...")
// and section 6 ("Persisted state: one column per health state with one
// unsigned-32 count per recorded step").
package stats

import "github.com/kentwait/epidemigo/internal/agent"

// Census is one step's health-state counts, stored as the fixed-width
// columns the persistence layer expects (spec.md section 6).
type Census struct {
	Step           int64
	Susceptible    uint32
	Asymptomatic   uint32
	Symptomatic    uint32
	Recovered      uint32
	Died           uint32
	QuarantineAsym uint32
	QuarantineSymp uint32
}

// FromCounts builds a Census from an agent.Arena's CountByHealth output.
func FromCounts(step int64, counts map[agent.Health]int) Census {
	return Census{
		Step:           step,
		Susceptible:    uint32(counts[agent.Susceptible]),
		Asymptomatic:   uint32(counts[agent.Asymptomatic]),
		Symptomatic:    uint32(counts[agent.Symptomatic]),
		Recovered:      uint32(counts[agent.Recovered]),
		Died:           uint32(counts[agent.Died]),
		QuarantineAsym: uint32(counts[agent.QuarantineAsym]),
		QuarantineSymp: uint32(counts[agent.QuarantineSymp]),
	}
}

// Total sums every health-state column; used by the conservation
// invariant in spec.md section 8 (the sum must equal N at every step).
func (c Census) Total() uint32 {
	return c.Susceptible + c.Asymptomatic + c.Symptomatic + c.Recovered +
		c.Died + c.QuarantineAsym + c.QuarantineSymp
}

// InfectedCount is the number of agents currently carrying an active
// infection (used by World.step's end condition: "infected count reached
// zero").
func (c Census) InfectedCount() uint32 {
	return c.Asymptomatic + c.Symptomatic + c.QuarantineAsym + c.QuarantineSymp
}

// Recorder accumulates one Census per recorded step, in step-ascending
// order, plus the testing reason/result histograms from spec.md section
// 4.5.
type Recorder struct {
	Censuses []Census

	TestsByReason  [3]uint64
	TestsPositive  uint64
	TestsNegative  uint64
	TestsCancelled uint64
}

// NewRecorder returns an empty statistics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Reset discards every recorded census and histogram count (called on
// World.reset()).
func (r *Recorder) Reset() {
	r.Censuses = nil
	r.TestsByReason = [3]uint64{}
	r.TestsPositive = 0
	r.TestsNegative = 0
	r.TestsCancelled = 0
}

// Record appends one step's census. Censuses must be appended in
// step-ascending order (spec.md section 6's "Monotonicity" property).
func (r *Recorder) Record(c Census) {
	r.Censuses = append(r.Censuses, c)
}

// Last returns the most recently recorded census and whether one exists.
func (r *Recorder) Last() (Census, bool) {
	if len(r.Censuses) == 0 {
		return Census{}, false
	}
	return r.Censuses[len(r.Censuses)-1], true
}
