// Package agent implements the arena-owned agent record described in
// spec.md section 3 and section 9 (the cyclic-ownership re-architecture
// note): every Agent lives in a single backing Arena indexed by a stable
// AgentID, and containers hold AgentID values rather than shared pointers.
package agent

import "fmt"

// AgentID indexes an Agent inside an Arena. A World reset reuses the same
// ids; Epoch (see Arena) is what invalidates stale references.
type AgentID uint32

// Health is the epidemiological state of an agent.
type Health uint8

const (
	Susceptible Health = iota
	Asymptomatic
	Symptomatic
	Recovered
	Died
	QuarantineAsym
	QuarantineSymp
)

func (h Health) String() string {
	switch h {
	case Susceptible:
		return "Susceptible"
	case Asymptomatic:
		return "Asymptomatic"
	case Symptomatic:
		return "Symptomatic"
	case Recovered:
		return "Recovered"
	case Died:
		return "Died"
	case QuarantineAsym:
		return "QuarantineAsym"
	case QuarantineSymp:
		return "QuarantineSymp"
	default:
		return fmt.Sprintf("Health(%d)", uint8(h))
	}
}

// Terminal reports whether the health state can no longer transition.
func (h Health) Terminal() bool {
	return h == Recovered || h == Died
}

// Location is the container currently owning an agent.
type Location uint8

const (
	LocField Location = iota
	LocHospital
	LocWarp
	LocCemetery
)

func (l Location) String() string {
	switch l {
	case LocField:
		return "Field"
	case LocHospital:
		return "Hospital"
	case LocWarp:
		return "Warp"
	case LocCemetery:
		return "Cemetery"
	default:
		return fmt.Sprintf("Location(%d)", uint8(l))
	}
}

// Body is the physical state integrated each field step.
type Body struct {
	Position [2]float64
	Velocity [2]float64
	Force    [2]float64
	Mass     float64
}

// Infection holds the payload of an active (or formerly active) infection.
// Zero value means "never infected".
type Infection struct {
	Variant            uint32
	Reproductivity     float64
	DaysSinceInfection float64
	IncubationDays     float64
	FatalDays          float64
	RecovDays          float64
	// DecayRate is this infection's own contagion decay rate, drawn once at
	// infection time so the post-peak decay in field.contagionCurve varies
	// per case rather than following one population-wide curve.
	DecayRate float64
}

// Testing tracks the agent's relationship with the testing pipeline.
type Testing struct {
	LastTestStep int64
	Reserved     bool
	InQueue      bool
}

// Agent is the full per-individual record. Field, Hospital, Cemetery, and
// Warp containers hold Agent values by AgentID; CellIndex is meaningful
// only while Location == LocField.
type Agent struct {
	ID        AgentID
	Body      Body
	Health    Health
	Infection *Infection
	Testing   Testing
	Location  Location
	Home      [2]float64 // residence coordinate used by warp-back transitions

	CellIndex int // current field cell, -1 if not in the field

	// Obedience and Mobility are per-agent multipliers (mean ~1 across the
	// population) drawn once at reset from a single correlated pair, so an
	// agent that obeys distancing more also tends to move around less.
	// They scale, rather than replace, the configured
	// RuntimeParams.DistancingObedience / MobilityFrequency means.
	Obedience float64
	Mobility  float64
}

// IsInfectious reports whether the agent can transmit to a susceptible
// neighbor under the infection draw in spec.md section 4.1.
func (a *Agent) IsInfectious() bool {
	return a.Infection != nil && (a.Health == Asymptomatic || a.Health == Symptomatic)
}

// IsReservable reports whether the agent can be newly added to the test
// queue or the contacts drain: not already reserved, not already queued,
// and currently located in the field (spec.md section 4.5).
func (a *Agent) IsReservable(now int64, tstIntervalSteps int64) bool {
	if a.Testing.Reserved || a.Testing.InQueue {
		return false
	}
	if a.Location != LocField {
		return false
	}
	if a.Testing.LastTestStep > 0 && now-a.Testing.LastTestStep < tstIntervalSteps {
		return false
	}
	return true
}
