package field

import (
	"math/rand/v2"
	"testing"

	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/stretchr/testify/require"
)

func gatheringParams() (simparams.WorldParams, simparams.RuntimeParams) {
	wp := simparams.WorldParams{
		WorldSideLength:  100,
		GatheringSize:    5,
		GatheringDuration: 10,
		GatheringStrength: 2,
	}
	rp := simparams.RuntimeParams{GatheringFrequency: 5}
	return wp, rp
}

func TestGatheringsSpawnProducesLiveEvents(t *testing.T) {
	wp, rp := gatheringParams()
	gs := NewGatherings()
	rng := rand.New(rand.NewPCG(1, 2))

	gs.spawn(rng, wp, rp)
	require.Greater(t, gs.Len(), 0)
}

func TestGatheringsSpawnNoopWithoutFrequency(t *testing.T) {
	wp, rp := gatheringParams()
	rp.GatheringFrequency = 0
	gs := NewGatherings()
	rng := rand.New(rand.NewPCG(1, 2))

	gs.spawn(rng, wp, rp)
	require.Equal(t, 0, gs.Len())
}

func TestGatheringsAdvanceExpiresAfterDuration(t *testing.T) {
	gs := NewGatherings()
	gs.events = []gatheringEvent{{center: [2]float64{10, 10}, radius: 5, strength: 1, remaining: 2}}

	gs.advance()
	require.Equal(t, 1, gs.Len())
	gs.advance()
	require.Equal(t, 0, gs.Len())
}

func TestGatheringsForceOnPullsFromOutsideRadius(t *testing.T) {
	gs := NewGatherings()
	gs.events = []gatheringEvent{{center: [2]float64{50, 50}, radius: 5, strength: 10}}

	f := gs.forceOn([2]float64{40, 50})
	require.Greater(t, f[0], 0.0, "agent outside the gathering radius should be pulled toward the center")
}

func TestGatheringsForceOnPushesFromInsideRadius(t *testing.T) {
	gs := NewGatherings()
	gs.events = []gatheringEvent{{center: [2]float64{50, 50}, radius: 5, strength: 10}}

	f := gs.forceOn([2]float64{51, 50})
	require.Greater(t, f[0], 0.0, "agent inside the gathering radius, right of center, should be pushed further right")
}
