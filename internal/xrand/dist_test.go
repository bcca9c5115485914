package xrand

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriangularWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		v := Triangular(rng, 2, 14, 5)
		require.GreaterOrEqual(t, v, 2.0)
		require.LessOrEqual(t, v, 14.0)
	}
}

func TestModifiedTriangularWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 1000; i++ {
		v := ModifiedTriangular(rng, 0, 10, 5, 2)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 10.0)
	}
}

func TestExponentialTailNonNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 1000; i++ {
		require.GreaterOrEqual(t, ExponentialTail(rng, 0.5), 0.0)
	}
}

func TestFractionalRoundUpAverages(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	var total int
	const trials = 20000
	for i := 0; i < trials; i++ {
		total += FractionalRoundUp(rng, 2.5)
	}
	avg := float64(total) / float64(trials)
	require.InDelta(t, 2.5, avg, 0.05)
}

func TestPoissonCountZeroForNonPositiveLambda(t *testing.T) {
	require.Equal(t, 0, PoissonCount(0))
	require.Equal(t, 0, PoissonCount(-1))
}

func TestPoissonCountAveragesLambda(t *testing.T) {
	const lambda = 3.0
	const trials = 20000
	var total int
	for i := 0; i < trials; i++ {
		total += PoissonCount(lambda)
	}
	avg := float64(total) / float64(trials)
	require.InDelta(t, lambda, avg, 0.15)
}

func TestCorrelatedPairInUnitSquare(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	for i := 0; i < 1000; i++ {
		x, y := CorrelatedPair(rng, 0.7)
		require.GreaterOrEqual(t, x, 0.0)
		require.LessOrEqual(t, x, 1.0)
		require.GreaterOrEqual(t, y, 0.0)
		require.LessOrEqual(t, y, 1.0)
	}
}
