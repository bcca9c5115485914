// Package xrand provides the sampling primitives used throughout the
// simulation: triangular and modified-triangular day-count draws,
// exponential contagion decay, Poisson event counts, and correlated
// parameter pairs.
package xrand

import (
	"math"
	"math/rand/v2"

	rv "github.com/kentwait/randomvariate"
)

// Triangular draws from a triangular distribution on [low, high] with the
// given mode. Used for incubation/fatality/recovery day counts.
func Triangular(rng *rand.Rand, low, high, mode float64) float64 {
	if low > high {
		low, high = high, low
	}
	if mode < low {
		mode = low
	}
	if mode > high {
		mode = high
	}
	u := rng.Float64()
	fc := (mode - low) / (high - low)
	if u < fc {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}
	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}

// ModifiedTriangular draws from a triangular distribution whose peak is a
// flat "shoulder" of the given half-width around mode, rather than a single
// point. Used for gathering size/duration/strength, where a plateau around
// the mode is a better fit than a sharp peak.
func ModifiedTriangular(rng *rand.Rand, low, high, mode, shoulder float64) float64 {
	loMode := mode - shoulder
	hiMode := mode + shoulder
	if loMode < low {
		loMode = low
	}
	if hiMode > high {
		hiMode = high
	}
	if loMode >= hiMode {
		return Triangular(rng, low, high, mode)
	}
	// Area under the flat shoulder vs the two triangular ramps determines
	// the split point; approximate with area proportional to width since
	// the ramps and the plateau share the same peak height.
	totalWidth := (high - low) + (hiMode - loMode)
	flatShare := (hiMode - loMode) / totalWidth
	u := rng.Float64()
	if u < flatShare {
		return loMode + rng.Float64()*(hiMode-loMode)
	}
	return Triangular(rng, low, high, mode)
}

// ExponentialTail draws a decay-weighted offset used by the contagion
// ramp/decay curve f(d, contag_delay, contag_peak, days_since_infection).
func ExponentialTail(rng *rand.Rand, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return -math.Log(1-rng.Float64()) / rate
}

// PoissonCount draws a Poisson-distributed event count, e.g. the number of
// gathering events spawned in a step given a frequency parameter.
func PoissonCount(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return rv.Poisson(lambda)
}

// FractionalRoundUp implements the probabilistic round-up described in
// spec.md section 4.5: given a real-valued capacity, return floor(capacity)
// and, with probability equal to the fractional remainder, add one.
func FractionalRoundUp(rng *rand.Rand, capacity float64) int {
	whole := math.Floor(capacity)
	frac := capacity - whole
	n := int(whole)
	if frac > 0 && rng.Float64() < frac {
		n++
	}
	return n
}

// CorrelatedPair draws two standard-uniform values with Gaussian-copula
// correlation rho in [-1, 1], used for coupling distancing obedience with
// mobility frequency.
func CorrelatedPair(rng *rand.Rand, rho float64) (float64, float64) {
	if rho > 1 {
		rho = 1
	}
	if rho < -1 {
		rho = -1
	}
	z1 := rng.NormFloat64()
	z2 := rng.NormFloat64()
	x := z1
	y := rho*z1 + math.Sqrt(1-rho*rho)*z2
	return stdNormalCDF(x), stdNormalCDF(y)
}

func stdNormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
