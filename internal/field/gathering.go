package field

import (
	"math"
	"math/rand/v2"

	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/kentwait/epidemigo/internal/xrand"
)

// gatheringEvent is one discrete, time-limited gathering: a circular
// force field that pulls agents toward its center from outside its radius
// and pushes them apart once inside it, approximating the personal-space
// pressure of a crowd. Grounded on original_source/src/gathering.rs's
// Gathering{size, duration, strength}.
type gatheringEvent struct {
	center    [2]float64
	radius    float64
	strength  float64
	remaining int // steps left before expiry
}

// Gatherings tracks every live gathering event for one World. New events
// arrive via a Poisson process keyed on RuntimeParams.GatheringFrequency;
// each samples its size, duration, and strength around the world's
// configured GatheringSize/GatheringDuration/GatheringStrength means
// (spec.md section 3), replacing the always-on pairwise approximation with
// the discrete event model original_source/src/gathering.rs implements.
type Gatherings struct {
	events []gatheringEvent
}

// NewGatherings returns a Gatherings tracker with no live events.
func NewGatherings() *Gatherings {
	return &Gatherings{}
}

// Reset clears every live gathering, for World.Reset.
func (gs *Gatherings) Reset() {
	gs.events = nil
}

// Len reports the number of currently live gathering events.
func (gs *Gatherings) Len() int {
	return len(gs.events)
}

// spawn draws this step's new gathering events. Grounded on
// original_source/src/gathering.rs's GatheringMap::record_gat, which
// places a freshly-sampled Gathering at a random cell each time the
// Poisson arrival fires.
func (gs *Gatherings) spawn(rng *rand.Rand, wp simparams.WorldParams, rp simparams.RuntimeParams) {
	if rp.GatheringFrequency <= 0 || wp.GatheringSize <= 0 {
		return
	}
	n := xrand.PoissonCount(rp.GatheringFrequency)
	for i := 0; i < n; i++ {
		size := xrand.ModifiedTriangular(rng, wp.GatheringSize*0.5, wp.GatheringSize*1.5, wp.GatheringSize, wp.GatheringSize*0.1)
		duration := xrand.ModifiedTriangular(rng, wp.GatheringDuration*0.5, wp.GatheringDuration*1.5, wp.GatheringDuration, wp.GatheringDuration*0.1)
		strength := xrand.ModifiedTriangular(rng, wp.GatheringStrength*0.5, wp.GatheringStrength*1.5, wp.GatheringStrength, wp.GatheringStrength*0.1)
		gs.events = append(gs.events, gatheringEvent{
			center:    [2]float64{rng.Float64() * wp.WorldSideLength, rng.Float64() * wp.WorldSideLength},
			radius:    size,
			strength:  strength,
			remaining: int(duration) + 1,
		})
	}
}

// advance ages every live event by one step and drops those that expired,
// mirroring original_source/src/gathering.rs's Gathering::step /
// remove_from_map.
func (gs *Gatherings) advance() {
	live := gs.events[:0]
	for _, e := range gs.events {
		e.remaining--
		if e.remaining > 0 {
			live = append(live, e)
		}
	}
	gs.events = live
}

// forceOn returns the net force every live gathering exerts on an agent at
// pos: attraction toward the center from outside the gathering's radius,
// and a short-range repulsion once inside it. Grounded on
// original_source/src/gathering.rs's affect_to_agent.
func (gs *Gatherings) forceOn(pos [2]float64) [2]float64 {
	var f [2]float64
	for _, e := range gs.events {
		dx := e.center[0] - pos[0]
		dy := e.center[1] - pos[1]
		distSq := dx*dx + dy*dy
		if distSq < 1e-9 {
			continue
		}
		dist := math.Sqrt(distSq)
		if dist > e.radius {
			pull := e.strength / distSq
			f[0] += (dx / dist) * pull
			f[1] += (dy / dist) * pull
		} else {
			push := e.strength / (dist + 1e-3)
			f[0] -= (dx / dist) * push
			f[1] -= (dy / dist) * push
		}
	}
	return f
}
