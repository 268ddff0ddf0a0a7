package generator

import (
	"math"
	"math/rand"
)

// Acquisition scores how promising an unevaluated point is given the model's
// posterior mean and variance there. Values are minimized: lower is more
// promising. The objective is assumed to be in minimization form (the
// surrogate negates values when maximizing).
type Acquisition func(mean, variance float64, p AcqParams) float64

// AcqParams carries the knobs shared by the built-in acquisition functions.
type AcqParams struct {
	// Beta weighs exploration in UCB. Typical range 0.5-5.
	Beta float64

	// Xi is the minimum-improvement margin for EI and PI.
	Xi float64

	// Best is the best (lowest) objective observed so far. Maintained by
	// the surrogate generator between calls.
	Best float64

	// Rand drives Thompson sampling.
	Rand *rand.Rand
}

// UCB is the (lower) confidence bound: mean minus Beta standard deviations.
func UCB(mean, variance float64, p AcqParams) float64 {
	return mean - p.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement returns the negated probability that a point beats
// the incumbent by at least Xi.
func ProbabilityOfImprovement(mean, variance float64, p AcqParams) float64 {
	sd := math.Sqrt(variance)
	if sd < 1e-12 {
		if mean < p.Best-p.Xi {
			return -1
		}
		return 0
	}
	z := (p.Best - p.Xi - mean) / sd
	return -normalCDF(z)
}

// ExpectedImprovement returns the negated expected improvement over the
// incumbent.
func ExpectedImprovement(mean, variance float64, p AcqParams) float64 {
	sd := math.Sqrt(variance)
	if sd < 1e-12 {
		if imp := p.Best - p.Xi - mean; imp > 0 {
			return -imp
		}
		return 0
	}
	imp := p.Best - p.Xi - mean
	z := imp / sd
	return -(imp*normalCDF(z) + sd*normalPDF(z))
}

// ThompsonSampling draws one sample from the posterior at the point.
func ThompsonSampling(mean, variance float64, p AcqParams) float64 {
	if p.Rand == nil {
		return mean
	}
	return mean + math.Sqrt(variance)*p.Rand.NormFloat64()
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
